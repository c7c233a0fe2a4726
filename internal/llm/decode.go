package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"govjobs/harvester-service/internal/model"
)

// cleanMarkdownJSON removes a ```json fence if the model added one.
func cleanMarkdownJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}

// firstObject returns the first balanced {...} of s, skipping braces inside
// JSON strings.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth, inString, escaped := 0, false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// flexString accepts a JSON string, number or null.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", b)
		}
		*f = flexString(n.String())
	}
	return nil
}

// flexList accepts a list of strings/numbers or a single string.
type flexList []string

func (f *flexList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var items []flexString
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		out := make([]string, 0, len(items))
		for _, it := range items {
			out = append(out, string(it))
		}
		*f = out
		return nil
	}
	var one flexString
	if err := json.Unmarshal(b, &one); err != nil {
		return err
	}
	if one != "" {
		*f = []string{string(one)}
	}
	return nil
}

type wireVacancy struct {
	PostName    flexString `json:"postName"`
	TotalPost   flexString `json:"totalPost"`
	Eligibility flexString `json:"eligibility"`
}

type wireLink struct {
	Label flexString `json:"label"`
	URL   flexString `json:"url"`
}

type wireJob struct {
	Title          flexString    `json:"title"`
	Category       flexString    `json:"category"`
	ShortInfo      flexString    `json:"shortInfo"`
	ImportantDates flexList      `json:"importantDates"`
	ApplicationFee flexList      `json:"applicationFee"`
	AgeLimit       flexList      `json:"ageLimit"`
	VacancyDetails []wireVacancy `json:"vacancyDetails"`
	ImportantLinks []wireLink    `json:"importantLinks"`
	ApplyLink      flexString    `json:"applyLink"`
}

// Decode turns a model reply into a ParsedJob. A reply without a JSON
// object, or whose object has no title, is ErrMalformed.
func Decode(content string) (*model.ParsedJob, error) {
	obj, ok := firstObject(cleanMarkdownJSON(content))
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in %d bytes", ErrMalformed, len(content))
	}
	var w wireJob
	if err := json.Unmarshal([]byte(obj), &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if strings.TrimSpace(string(w.Title)) == "" {
		return nil, fmt.Errorf("%w: missing title", ErrMalformed)
	}

	p := &model.ParsedJob{
		Title:          string(w.Title),
		Category:       string(w.Category),
		ShortInfo:      string(w.ShortInfo),
		ImportantDates: w.ImportantDates,
		ApplicationFee: w.ApplicationFee,
		AgeLimit:       w.AgeLimit,
		ApplyLink:      string(w.ApplyLink),
	}
	for _, v := range w.VacancyDetails {
		p.VacancyDetails = append(p.VacancyDetails, model.VacancyDetail{
			PostName:    string(v.PostName),
			TotalPost:   string(v.TotalPost),
			Eligibility: string(v.Eligibility),
		})
	}
	for _, l := range w.ImportantLinks {
		p.ImportantLinks = append(p.ImportantLinks, model.Link{Label: string(l.Label), URL: string(l.URL)})
	}
	p.Complete()
	return p, nil
}

// quote is used in error messages so a long reply does not flood the log.
func quote(s string) string {
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return strconv.Quote(s)
}
