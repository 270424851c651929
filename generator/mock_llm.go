package generator

import (
	"context"
	"fmt"
	"strings"
)

// MockLLM is a canned stand-in for local runs and tests; it never calls an
// external model. Responses come back fenced and with a trailing comma on
// purpose, so the lenient parse path stays exercised.
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	if strings.Contains(prompt.User, "# PHASE2") {
		return m.fillResponse(prompt.User), nil
	}
	return m.outlineResponse(), nil
}

func promptField(user, key string) string {
	for _, line := range strings.Split(user, "\n") {
		if v, ok := strings.CutPrefix(line, key+"="); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func (m MockLLM) fillResponse(user string) string {
	kind := promptField(user, "kind")
	area := promptField(user, "area")
	if area == "" || area == "null" {
		area = "どこか"
	}

	title := ""
	budget := 0
	duration := "null"
	switch kind {
	case "food":
		title = fmt.Sprintf("%s食堂（名物定食）", area)
		budget = 1500
	case "visit":
		title = fmt.Sprintf("%s城（天守）", area)
		budget = 800
	case "hotel":
		title = fmt.Sprintf("%sホテル（夜景）", area)
		budget = 9000
	case "move":
		title = fmt.Sprintf("%s駅→%s（在来線）", area, area)
		budget = 400
		duration = "25"
	}

	return fmt.Sprintf("```json\n{\n  \"kind\": %q,\n  \"title\": %q,\n  \"detail\": \"モックの詳細です。\",\n  \"durationMin\": %s,\n  \"url\": null,\n  \"time\": null,\n  \"budgetPerPerson\": %d,\n}\n```", kind, title, duration, budget)
}

func (m MockLLM) outlineResponse() string {
	return "```json\n" + `{
  "tripName": "モック旅行",
  "tripDays": 1,
  "stayDays": 0,
  "summary": "モックが生成した日帰りプランです。",
  "budgetPerPerson": 0,
  "days": [
    {
      "dayIndex": 1,
      "date": null,
      "title": null,
      "budgetPerPerson": 0,
      "items": [
        {"kind": "start", "title": "出発地", "detail": null, "durationMin": null, "url": null, "time": null, "budgetPerPerson": 0},
        {"kind": "move", "title": "移動（未確定）", "detail": null, "durationMin": null, "url": null, "time": null, "budgetPerPerson": 0},
        {"kind": "food", "title": "食事（未確定）", "detail": null, "durationMin": null, "url": null, "time": null, "budgetPerPerson": 0},
        {"kind": "move", "title": "移動（未確定）", "detail": null, "durationMin": null, "url": null, "time": null, "budgetPerPerson": 0},
        {"kind": "visit", "title": "エリア散策", "detail": null, "durationMin": null, "url": null, "time": null, "budgetPerPerson": 0},
        {"kind": "move", "title": "移動（未確定）", "detail": null, "durationMin": null, "url": null, "time": null, "budgetPerPerson": 0},
        {"kind": "end", "title": "帰着地", "detail": null, "durationMin": null, "url": null, "time": null, "budgetPerPerson": 0},
      ]
    }
  ],
  "warnings": []
}` + "\n```"
}
