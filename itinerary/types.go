package itinerary

import (
	"encoding/json"

	"github.com/samber/lo"
)

// ItemKind classifies one entry of a day plan.
type ItemKind string

const (
	KindMove  ItemKind = "move"
	KindVisit ItemKind = "visit"
	KindFood  ItemKind = "food"
	KindHotel ItemKind = "hotel"
	KindStart ItemKind = "start"
	KindEnd   ItemKind = "end"
	KindOther ItemKind = "other"
)

// TimeRange holds "HH:MM" strings; either side may be absent.
type TimeRange struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

// Item is one slot of a day. Title is only guaranteed non-empty after the
// fill phase; the outline phase may leave vague placeholders.
type Item struct {
	Kind            ItemKind   `json:"kind"`
	Title           string     `json:"title"`
	Detail          *string    `json:"detail"`
	DurationMin     *int       `json:"durationMin"`
	URL             *string    `json:"url"`
	Time            *TimeRange `json:"time"`
	BudgetPerPerson int        `json:"budgetPerPerson"`
}

// Day owns its items; the planner mutates them in place through merges.
type Day struct {
	DayIndex        int     `json:"dayIndex"`
	Date            *string `json:"date"`
	Title           *string `json:"title"`
	BudgetPerPerson int     `json:"budgetPerPerson"`
	Items           []Item  `json:"items"`
}

// Itinerary is the whole trip plan. budgetPerPerson always equals the sum of
// the days' budgets, which each equal the sum of their items' budgets.
type Itinerary struct {
	TripName        string   `json:"tripName"`
	TripDays        int      `json:"tripDays"`
	StayDays        int      `json:"stayDays"`
	Summary         string   `json:"summary"`
	BudgetPerPerson int      `json:"budgetPerPerson"`
	Days            []Day    `json:"days"`
	Warnings        []string `json:"warnings"`
}

// FindDay returns the day with the given 1-based index, or nil.
func (it *Itinerary) FindDay(dayIndex int) *Day {
	for i := range it.Days {
		if it.Days[i].DayIndex == dayIndex {
			return &it.Days[i]
		}
	}
	return nil
}

// Clone deep-copies the itinerary via a JSON round trip.
func (it *Itinerary) Clone() *Itinerary {
	b, err := json.Marshal(it)
	if err != nil {
		cp := *it
		return &cp
	}
	var out Itinerary
	if err := json.Unmarshal(b, &out); err != nil {
		cp := *it
		return &cp
	}
	return &out
}

// DayBudget sums the per-person budgets of a day's items.
func DayBudget(d *Day) int {
	return lo.SumBy(d.Items, func(x Item) int { return x.BudgetPerPerson })
}

// RecomputeBudgets refreshes every day budget and the trip total.
// Call after every merge.
func (it *Itinerary) RecomputeBudgets() {
	for i := range it.Days {
		it.Days[i].BudgetPerPerson = DayBudget(&it.Days[i])
	}
	it.BudgetPerPerson = lo.SumBy(it.Days, func(d Day) int { return d.BudgetPerPerson })
}

// FallbackTitle is the deterministic substitute used when a fill result has a
// blank title. The shape depends on the kind; move joins its neighbours.
func FallbackTitle(kind ItemKind, areaTitle string, prevTitle, nextTitle *string) string {
	switch kind {
	case KindFood:
		return "食事（" + areaTitle + "）"
	case KindHotel:
		return "宿泊（" + areaTitle + "）"
	case KindVisit:
		return "観光（" + areaTitle + "）"
	default:
		a := areaTitle
		if prevTitle != nil && *prevTitle != "" {
			a = *prevTitle
		}
		b := areaTitle
		if nextTitle != nil && *nextTitle != "" {
			b = *nextTitle
		}
		return a + "→" + b + "（移動）"
	}
}
