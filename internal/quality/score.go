package quality

import (
	"strings"
	"unicode/utf8"

	"govjobs/harvester-service/internal/model"
	"govjobs/harvester-service/internal/titles"
)

// Score rates how complete a parsed job is, from 0 to 100. It is stored
// with the record and never used to reject one.
func Score(p model.ParsedJob) int {
	score := 0
	if utf8.RuneCountInString(titles.Display(p.Title)) >= LongTitle {
		score += 20
	}
	if utf8.RuneCountInString(strings.TrimSpace(p.ShortInfo)) >= LongSummary {
		score += 15
	}
	if known(p.ImportantDates) {
		score += 20
	}
	if known(p.ApplicationFee) {
		score += 10
	}
	if known(p.AgeLimit) {
		score += 10
	}
	for _, v := range p.VacancyDetails {
		if v.PostName != "" && v.PostName != model.Unknown {
			score += 10
			break
		}
	}
	if len(p.ImportantLinks) > 0 {
		score += 10
	}
	if ValidLink(p.ApplyLink) {
		score += 5
	}
	return score
}

func known(list []string) bool {
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" && s != model.Unknown {
			return true
		}
	}
	return false
}
