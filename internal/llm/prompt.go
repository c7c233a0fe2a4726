package llm

import (
	"fmt"
	"strings"
)

const systemPrompt = `You extract government job notifications into JSON.

Return exactly one JSON object and nothing else, with these keys:
{
  "title": string,            // specific title: organisation + post/exam + year
  "category": string,         // one of "Latest Jobs", "Results", "Admit Card", "Answer Key", "Syllabus", "Admission"
  "shortInfo": string,        // two or three factual sentences
  "importantDates": [string], // "Label: date", e.g. "Last Date: 11/04/2026"
  "applicationFee": [string], // "Category: amount", e.g. "General: Rs 125"
  "ageLimit": [string],       // e.g. "Minimum: 21 years", "Maximum: 40 years"
  "vacancyDetails": [{"postName": string, "totalPost": string, "eligibility": string}],
  "importantLinks": [{"label": string, "url": string}],
  "applyLink": string
}

Rules:
- Never invent dates, fees, ages or counts. When the text does not state one, write "Unknown".
- Only use URLs that appear in the input. URLs must start with http:// or https://.
- The input is scraped and noisy: broken words, mixed Hindi and English, spelling mistakes.
  Work with it; do not refuse and do not comment on its quality.`

func userPrompt(req Request) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Search title: %s\nLink: %s\n", req.Title, req.Link)
	if req.Snippet != "" {
		fmt.Fprintf(&sb, "Snippet: %s\n", req.Snippet)
	}
	if len(req.DateHints) > 0 {
		fmt.Fprintf(&sb, "Dates seen in the sources:\n- %s\n", strings.Join(req.DateHints, "\n- "))
	}
	sb.WriteString("\nGathered text:\n")
	sb.WriteString(req.Context)
	return sb.String()
}
