package extract

import (
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"govjobs/harvester-service/internal/model"
	"govjobs/harvester-service/internal/rank"
)

// MaxLinks bounds the ranked link list kept per page.
const MaxLinks = 40

// Resolve turns href into an absolute http(s) URL without fragment. It
// returns nil for fragment-only, mailto, tel and javascript links.
func Resolve(base *url.URL, href string) *url.URL {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return nil
	}
	u, err := url.Parse(href)
	if err != nil {
		return nil
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u
}

// RankLinks scores every anchor under s and returns them best first.
// Duplicate URLs collapse to their highest score.
func RankLinks(s *goquery.Selection, base *url.URL, rules rank.Rules[rank.LinkCandidate]) []model.RankedLink {
	pageHost := ""
	if base != nil {
		pageHost = base.Hostname()
	}

	best := make(map[string]int)
	var out []model.RankedLink
	s.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		u := Resolve(base, href)
		if u == nil {
			return
		}
		label := strings.Join(strings.Fields(a.Text()), " ")
		if label == "" {
			label, _ = a.Attr("title")
		}
		c := rank.LinkCandidate{URL: u, Label: label, PageHost: pageHost}
		score := rules.Score(c)
		key := u.String()

		if i, ok := best[key]; ok {
			if score > out[i].Score {
				out[i].Score = score
				if label != "" {
					out[i].Label = label
				}
			}
			return
		}
		best[key] = len(out)
		out = append(out, model.RankedLink{URL: key, Label: label, Score: score})
	})

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > MaxLinks {
		out = out[:MaxLinks]
	}
	return out
}
