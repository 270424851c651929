package generator

import (
	"fmt"
	"strings"

	"trip_itinerary_planner/itinerary"
)

// systemJSONOnly is the system message for both phases; everything else rides
// in the user prompt.
const systemJSONOnly = `Return ONLY valid JSON. No markdown. No code fences. Use double quotes. Start with "{" and end with "}".`

const (
	outlineMaxTokens = 2000
	fillMaxTokens    = 420
)

// BuildOutlinePrompt compiles the Phase-1 request. The outline must follow the
// skeleton order exactly, settle on a single destination region, and keep every
// title a vague placeholder: concrete facility/store/hotel names are forbidden
// until the fill phase.
func BuildOutlinePrompt(req OutlineRequest) Prompt {
	tripName := strings.TrimSpace(req.TripName)
	if tripName == "" {
		tripName = "新しい旅行"
	}
	tripDays := req.TripDays
	if tripDays < 1 {
		tripDays = 1
	}
	stayDays := req.StayDays
	if stayDays < 0 {
		stayDays = 0
	}

	endDate := "null"
	if req.EndDate != nil && strings.TrimSpace(*req.EndDate) != "" {
		endDate = strings.TrimSpace(*req.EndDate)
	}

	skeleton := itinerary.BuildSkeleton(tripDays, stayDays)

	var sb strings.Builder
	sb.WriteString("Return ONLY valid JSON. No markdown, no extra text.\n\n")

	sb.WriteString("# PHASE1 / OUTLINE (FAST)\n")
	sb.WriteString("- 施設名・店名・ホテル名などの固有名詞は絶対に入れない。\n")
	sb.WriteString("- url は必ず null（推測禁止）。\n")
	sb.WriteString("- skeleton順序は厳守。並べ替え禁止。\n\n")

	sb.WriteString("# MUST\n")
	sb.WriteString("- 国内のみ。出発地は変更しない。\n")
	sb.WriteString("- 行き先は1つに確定（候補列挙しない）。\n")
	sb.WriteString("- tripDays>=3 なら、移動時間は60分以内なら他の都道府県に移動しても良い。\n")
	sb.WriteString("- title MUST NOT be empty for any item.\n")
	sb.WriteString("- If not decided, use placeholders like:\n")
	sb.WriteString("  move: \"移動（未確定）\"\n")
	sb.WriteString("  food: \"食事（未確定）\"\n")
	sb.WriteString("  hotel: \"宿（未確定）\"\n")
	sb.WriteString("  visit: \"{エリア}散策\"\n\n")

	sb.WriteString("# INPUT\n")
	fmt.Fprintf(&sb, "tripName=%s\n", tripName)
	fmt.Fprintf(&sb, "depart=%s\n", req.Depart.Label())
	fmt.Fprintf(&sb, "destination=%s\n", req.Destination.PromptBlock())
	fmt.Fprintf(&sb, "startDate=%s\n", strings.TrimSpace(req.StartDate))
	fmt.Fprintf(&sb, "endDate=%s\n", endDate)
	fmt.Fprintf(&sb, "tripDays=%d\n", tripDays)
	fmt.Fprintf(&sb, "stayDays=%d\n", stayDays)
	fmt.Fprintf(&sb, "optional=%s\n", req.OptionalBlock())
	sb.WriteString("skeleton:\n")
	sb.WriteString(itinerary.PromptBlock(skeleton))
	sb.WriteString("\n\n")

	sb.WriteString("# OUTPUT (valid JSON shape)\n")
	fmt.Fprintf(&sb, `{
  "tripName": "%s",
  "tripDays": %d,
  "stayDays": %d,
  "summary": "",
  "budgetPerPerson": 0,
  "days": [
    {
      "dayIndex": 1,
      "date": null,
      "title": null,
      "budgetPerPerson": 0,
      "items": [
        {
          "kind": "move",
          "title": "",
          "detail": null,
          "durationMin": null,
          "url": null,
          "time": null,
          "budgetPerPerson": 0
        }
      ]
    }
  ],
  "warnings": []
}`, tripName, tripDays, stayDays)

	return Prompt{
		System:    systemJSONOnly,
		User:      strings.TrimSpace(sb.String()),
		MaxTokens: outlineMaxTokens,
	}
}
