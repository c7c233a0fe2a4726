package extract

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// maxInflated bounds the size of one inflated stream in the raw scan.
const maxInflated = 4 << 20

// DocumentText returns the text of a PDF capped at limit runes. pdfcpu reads
// the page content streams when it can parse the file; otherwise the raw
// bytes are scanned for text-show operators directly.
func DocumentText(body []byte, limit int) string {
	text, err := pdfcpuText(body)
	if err != nil || strings.TrimSpace(text) == "" {
		text = RawPDFText(body)
	}
	return Truncate(text, limit)
}

func pdfcpuText(body []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdfcpu panic: %v", r)
		}
	}()

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(body), model.NewDefaultConfiguration())
	if err != nil {
		return "", fmt.Errorf("pdfcpu read: %w", err)
	}

	var sb strings.Builder
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil || r == nil {
			continue
		}
		data, err := io.ReadAll(r)
		if err != nil || len(data) == 0 {
			continue
		}
		if page := ScanTextOperators(data); page != "" {
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(page)
		}
	}
	return sb.String(), nil
}

// RawPDFText scans every stream of a PDF, inflating FlateDecode ones, for
// text-show operators. It needs no structural parse.
func RawPDFText(body []byte) string {
	var sb strings.Builder
	rest := body
	for {
		i := bytes.Index(rest, []byte("stream"))
		if i < 0 {
			break
		}
		start := i + len("stream")
		if i >= 3 && bytes.Equal(rest[i-3:i], []byte("end")) {
			rest = rest[start:]
			continue
		}
		if start < len(rest) && rest[start] == '\r' {
			start++
		}
		if start < len(rest) && rest[start] == '\n' {
			start++
		}
		end := bytes.Index(rest[start:], []byte("endstream"))
		if end < 0 {
			break
		}
		data := rest[start : start+end]
		rest = rest[start+end+len("endstream"):]

		if inflated, err := inflate(data); err == nil {
			data = inflated
		}
		if t := ScanTextOperators(data); t != "" {
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(t)
		}
	}
	return sb.String()
}

func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	out, err := io.ReadAll(io.LimitReader(zr, maxInflated))
	if err != nil && len(out) == 0 {
		return nil, err
	}
	return out, nil
}

// ScanTextOperators walks a content stream and concatenates the string
// operands of Tj, TJ, ' and ". Td, TD and T* become separators.
func ScanTextOperators(data []byte) string {
	var (
		sb      strings.Builder
		pending []string
		inArray bool
	)
	flush := func(newline bool) {
		if newline && sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		for _, s := range pending {
			sb.WriteString(s)
		}
		pending = pending[:0]
	}

	for i := 0; i < len(data); {
		c := data[i]
		switch {
		case c == '(':
			s, n := readLiteral(data[i:])
			pending = append(pending, s)
			i += n
		case c == '<' && i+1 < len(data) && data[i+1] == '<':
			i += 2
		case c == '<':
			s, n := readHex(data[i:])
			pending = append(pending, s)
			i += n
		case c == '[':
			inArray = true
			i++
		case c == ']':
			inArray = false
			i++
		case c == '%' && !inArray:
			for i < len(data) && data[i] != '\n' && data[i] != '\r' {
				i++
			}
		case c == '\'' || c == '"':
			flush(true)
			i++
		case isOperatorStart(c):
			j := i
			for j < len(data) && isOperatorChar(data[j]) {
				j++
			}
			switch string(data[i:j]) {
			case "Tj", "TJ":
				flush(false)
			case "Td", "TD", "Tm":
				flush(false)
				writeSep(&sb, ' ')
			case "T*", "ET":
				flush(false)
				writeSep(&sb, '\n')
			default:
				if !inArray {
					pending = pending[:0]
				}
			}
			i = j
		default:
			i++
		}
	}
	return cleanPDFText(sb.String())
}

func writeSep(sb *strings.Builder, sep byte) {
	if sb.Len() == 0 {
		return
	}
	s := sb.String()
	if last := s[len(s)-1]; last == ' ' || last == '\n' {
		return
	}
	sb.WriteByte(sep)
}

func isOperatorStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isOperatorChar(c byte) bool {
	return isOperatorStart(c) || c == '*'
}

// readLiteral decodes a (...) string starting at data[0], honouring nested
// parentheses and escapes. It returns the text and the bytes consumed.
func readLiteral(data []byte) (string, int) {
	var sb strings.Builder
	depth := 0
	i := 0
	for ; i < len(data); i++ {
		c := data[i]
		switch {
		case c == '\\' && i+1 < len(data):
			i++
			switch e := data[i]; e {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'b', 'f':
			case '\r', '\n':
			default:
				if e >= '0' && e <= '7' {
					val := int(e - '0')
					for k := 0; k < 2 && i+1 < len(data) && data[i+1] >= '0' && data[i+1] <= '7'; k++ {
						i++
						val = val*8 + int(data[i]-'0')
					}
					sb.WriteByte(byte(val))
				} else {
					sb.WriteByte(e)
				}
			}
		case c == '(':
			if depth > 0 {
				sb.WriteByte(c)
			}
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return sb.String(), i + 1
			}
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String(), i
}

// readHex decodes a <...> hex string starting at data[0]. Only printable
// single-byte text is kept; CID-encoded strings decode to nothing useful.
func readHex(data []byte) (string, int) {
	end := bytes.IndexByte(data, '>')
	if end < 0 {
		return "", len(data)
	}
	var digits []byte
	for _, c := range data[1:end] {
		if unicode.Is(unicode.ASCII_Hex_Digit, rune(c)) {
			digits = append(digits, c)
		}
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	var sb strings.Builder
	for k := 0; k+1 < len(digits); k += 2 {
		b := hexVal(digits[k])<<4 | hexVal(digits[k+1])
		if b >= 0x20 && b < 0x7f {
			sb.WriteByte(b)
		}
	}
	return sb.String(), end + 1
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// cleanPDFText collapses runs of spaces within lines and drops blank lines
// and unprintable runes.
func cleanPDFText(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return ' '
			}
			if !unicode.IsPrint(r) {
				return -1
			}
			return r
		}, line)
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
