package generator

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"trip_itinerary_planner/itinerary"
)

var (
	fenceRe         = regexp.MustCompile("(?is)```json\\s*(.*?)```")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractJSON pulls the JSON payload out of free-form model text: a fenced
// ```json block wins, otherwise the substring between the first "{" and the
// last "}", otherwise the trimmed text as-is.
func ExtractJSON(text string) string {
	if m := fenceRe.FindStringSubmatch(text); len(m) >= 2 && strings.TrimSpace(m[1]) != "" {
		return strings.TrimSpace(m[1])
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func stripTrailingCommas(jsonText string) string {
	return trailingCommaRe.ReplaceAllString(jsonText, "$1")
}

// LenientUnmarshal tolerates the usual LLM JSON mistakes (code fences,
// surrounding prose, trailing commas) before decoding into v. Both the
// outline and the fill paths go through here.
func LenientUnmarshal(text string, v any) error {
	cleaned := stripTrailingCommas(ExtractJSON(text))
	if !gjson.Valid(cleaned) {
		return errors.New("no valid JSON found in model output")
	}
	return json.Unmarshal([]byte(cleaned), v)
}

// NormalizeOutline turns the Phase-1 raw text into a canonical itinerary.
// days/warnings are coerced to empty arrays when missing or not array-shaped;
// missing days are never invented.
func NormalizeOutline(raw string) (*itinerary.Itinerary, error) {
	cleaned := stripTrailingCommas(ExtractJSON(raw))
	if !gjson.Valid(cleaned) {
		return nil, &MalformedResponseError{Stage: "outline", Raw: raw, Err: errors.New("no valid JSON found in model output")}
	}
	root := gjson.Parse(cleaned)
	if !root.IsObject() {
		return nil, &MalformedResponseError{Stage: "outline", Raw: raw, Err: errors.New("model returned non-object JSON")}
	}

	for _, key := range []string{"days", "warnings"} {
		if v := root.Get(key); v.Exists() && !v.IsArray() {
			if out, err := sjson.Delete(cleaned, key); err == nil {
				cleaned = out
			}
		}
	}

	var it itinerary.Itinerary
	if err := json.Unmarshal([]byte(cleaned), &it); err != nil {
		return nil, &MalformedResponseError{Stage: "outline", Raw: raw, Err: err}
	}
	if it.Days == nil {
		it.Days = []itinerary.Day{}
	}
	if it.Warnings == nil {
		it.Warnings = []string{}
	}
	return &it, nil
}

// NormalizeItem turns a Phase-2 raw text into one item. The kind is pinned to
// the requested one; a blank title is left blank for the caller to substitute.
// Field-level type mismatches never discard the item: a wrong-typed value is
// dropped and the budget falls back to 0.
func NormalizeItem(raw string, kind itinerary.ItemKind) (itinerary.Item, error) {
	cleaned := stripTrailingCommas(ExtractJSON(raw))
	if !gjson.Valid(cleaned) {
		return itinerary.Item{}, &MalformedResponseError{Stage: "fill", Raw: raw, Err: errors.New("no valid JSON found in model output")}
	}
	root := gjson.Parse(cleaned)
	if !root.IsObject() {
		return itinerary.Item{}, &MalformedResponseError{Stage: "fill", Raw: raw, Err: errors.New("model returned non-object JSON")}
	}

	item := itinerary.Item{Kind: kind}
	if v := root.Get("title"); v.Type == gjson.String {
		item.Title = strings.TrimSpace(v.String())
	}
	if v := root.Get("detail"); v.Type == gjson.String {
		detail := v.String()
		item.Detail = &detail
	}
	if v := root.Get("durationMin"); v.Type == gjson.Number {
		d := int(v.Int())
		item.DurationMin = &d
	}
	if v := root.Get("url"); v.Type == gjson.String && strings.TrimSpace(v.String()) != "" {
		u := strings.TrimSpace(v.String())
		item.URL = &u
	}
	if v := root.Get("time"); v.IsObject() {
		tr := &itinerary.TimeRange{}
		if s := v.Get("start"); s.Type == gjson.String {
			start := s.String()
			tr.Start = &start
		}
		if e := v.Get("end"); e.Type == gjson.String {
			end := e.String()
			tr.End = &end
		}
		if tr.Start != nil || tr.End != nil {
			item.Time = tr
		}
	}
	if v := root.Get("budgetPerPerson"); v.Type == gjson.Number {
		item.BudgetPerPerson = int(v.Int())
	}
	return item, nil
}
