package generator

import (
	"fmt"
	"strings"
)

// BuildFillPrompt compiles the Phase-2 request for one item. The avoidance
// block only appears when earlier days already chose concrete visit/food
// names; it forbids exact repeats and partial-name collisions and, on the
// final day, pins every choice to the return route toward the departure area.
func BuildFillPrompt(req FillRequest) Prompt {
	prevTitle := "null"
	if req.PrevTitle != nil && strings.TrimSpace(*req.PrevTitle) != "" {
		prevTitle = strings.TrimSpace(*req.PrevTitle)
	}
	nextTitle := "null"
	if req.NextTitle != nil && strings.TrimSpace(*req.NextTitle) != "" {
		nextTitle = strings.TrimSpace(*req.NextTitle)
	}
	optional := strings.TrimSpace(req.Optional)
	if optional == "" {
		optional = "none"
	}

	var sb strings.Builder
	sb.WriteString("Return ONLY valid JSON. No markdown, no extra text.\n\n")

	sb.WriteString("# PHASE2 / FILL ONE ITEM (RICH TITLE)\n")
	sb.WriteString("You must output a SPECIFIC proper noun for this one item.\n")
	sb.WriteString("- title MUST NOT be empty.\n")
	sb.WriteString("- title should look \"rich\" and informative (12-28 Japanese chars is OK).\n")
	sb.WriteString("- Choose ONE definitive name (no alternatives).\n")
	sb.WriteString("- If official URL is not confidently known, url=null (do NOT guess).\n")
	sb.WriteString("- detail: max 2 sentences in Japanese.\n")
	sb.WriteString("- budgetPerPerson: integer. durationMin: null ok.\n")

	if previous := strings.TrimSpace(req.PreviousVisits); previous != "" {
		sb.WriteString("\n# AVOIDANCE RULE (CRITICAL)\n")
		fmt.Fprintf(&sb, "過去の訪問地: %s は絶対に避けること。\n", previous)
		sb.WriteString("- 上記の場所と同じ名前や類似名は絶対に避ける\n")
		sb.WriteString("- 部分一致でも避ける（例：「清水寺」があれば「清水○○」も避ける）\n")
		sb.WriteString("- 完全に異なる場所を選ぶ\n\n")
		fmt.Fprintf(&sb, "- You MUST stay within this area: %s\n\n", req.AreaTitle)
		if req.TripDays > 0 && req.DayIndex >= req.TripDays {
			sb.WriteString("- This is the FINAL DAY of the trip:\n")
			sb.WriteString("  - All places MUST be on the natural return route toward the departure area.\n")
			sb.WriteString("  - DO NOT travel to a far city or different region for sightseeing/food/hotel.\n")
			sb.WriteString("  - Never detour to major distant cities (e.g., Tokyo/Chiba/Osaka) unless it is the final return destination itself.\n")
			sb.WriteString("  - Prefer places within the same area or directly on the way back.\n")
			sb.WriteString("  - If your first attempt violates the geo rules above, you MUST choose a different place.\n")
		}
	}

	sb.WriteString("\n# Context\n")
	fmt.Fprintf(&sb, "dayIndex=%d\n", req.DayIndex)
	fmt.Fprintf(&sb, "kind=%s\n", req.Kind)
	fmt.Fprintf(&sb, "depart=%s\n", req.DepartLabel)
	fmt.Fprintf(&sb, "area=%s\n", req.AreaTitle)
	fmt.Fprintf(&sb, "destinationHint=%s\n", req.DestinationHint)
	fmt.Fprintf(&sb, "optional=%s\n", optional)
	fmt.Fprintf(&sb, "outlineTitle=%s\n", req.OutlineTitle)
	fmt.Fprintf(&sb, "prevTitle=%s\n", prevTitle)
	fmt.Fprintf(&sb, "nextTitle=%s\n", nextTitle)

	sb.WriteString("\n# Title rules (VERY IMPORTANT)\n")
	sb.WriteString("- title MUST NOT be empty.\n")
	sb.WriteString("- Make title \"rich\": include (1)固有名詞 + (2)名物/ジャンル/特徴.\n")
	sb.WriteString("- 最初の目的地からは移動制約を設ける。\n")
	sb.WriteString("    - 1日目から2日目は60km圏内の移動可能。\n")
	sb.WriteString("    - 3日目から4日目は120km圏内の移動可能。\n")
	sb.WriteString("    - 5日目以降は200km圏内の移動可能。\n")
	sb.WriteString("- destinationHintやoptionalを参考にfood/visitのタイトルを具体化する。(departLabelは無視)\n")
	sb.WriteString("- food title format:\n")
	sb.WriteString("  \"店名（名物/ジャンル）\" 例: \"鳥喜多（親子丼）\" / \"ひさご亭（鰻）\"\n")
	sb.WriteString("- visit title format:\n")
	sb.WriteString("  \"施設名（見どころ）\" 例: \"松山城（天守）\" / \"浅草寺（雷門）\"\n")
	sb.WriteString("- hotel title format:\n")
	sb.WriteString("  \"宿名（温泉/眺望/格）\" 例: \"道後館（温泉）\" / \"○○ホテル（夜景）\"\n")
	sb.WriteString("- move title format:\n")
	sb.WriteString("  \"A→B（手段）\"（A=prevTitle, B=nextTitleを優先）\n")
	sb.WriteString(moveModeRules)

	sb.WriteString("\n# Detail rules\n")
	sb.WriteString("- food: ジャンル + 予約可否 + 混雑 + \"滞在60分\"\n")
	sb.WriteString("- visit: 見どころ + 営業時間/混雑ひとこと\n")
	sb.WriteString("- hotel: ランク感 + 特徴\n")
	sb.WriteString("- move: 手段 + 所要（durationMinはMUST）\n")
	sb.WriteString(moveModeRules)

	sb.WriteString("\n# OUTPUT (valid JSON)\n")
	fmt.Fprintf(&sb, `{
  "kind": "%s",
  "title": "",
  "detail": null,
  "durationMin": null,
  "url": null,
  "time": null,
  "budgetPerPerson": 0
}`, req.Kind)

	return Prompt{
		System:    systemJSONOnly,
		User:      strings.TrimSpace(sb.String()),
		MaxTokens: fillMaxTokens,
	}
}

// moveModeRules ties the transport mode to the next-leg distance; it applies
// both to the move title and the move detail.
const moveModeRules = `    - 次の目的地まで350km以上はすべて飛行機
    - 次の目的地まで60km以上は高速バス/新幹線/特急/レンタカー
    - 次の目的地まで20km以上は在来線/普通列車/バス
    - 次の目的地まで20km未満は徒歩/自転車/タクシー
`
