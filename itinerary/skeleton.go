package itinerary

import (
	"fmt"
	"strings"
)

// StepType is the structural kind of one skeleton slot.
type StepType string

const (
	StepStart StepType = "start"
	StepMove  StepType = "move"
	StepFood  StepType = "food"
	StepVisit StepType = "visit"
	StepHotel StepType = "hotel"
	StepEnd   StepType = "end"
)

// Step is one slot of the structural template a trip must follow,
// independent of any concrete place.
type Step struct {
	Day      int
	Order    int // 1-based within the day
	Type     StepType
	Label    string
	Index    int // running visit counter, visits only
	MealSlot string
	Night    int // running stay-night counter, hotels only
}

// BuildSkeleton derives the fixed step chain for a trip. tripDays is clamped
// to at least 1, stayDays to [0, tripDays-1]. Each day runs
// move -> food -> move -> visit and then closes with move+hotel while stay
// nights remain (never on the last day), else move+end. Day 1 is prefixed
// with a start step.
func BuildSkeleton(tripDays, stayDays int) []Step {
	if tripDays < 1 {
		tripDays = 1
	}
	if stayDays < 0 {
		stayDays = 0
	}
	if max := tripDays - 1; stayDays > max {
		stayDays = max
	}

	var steps []Step
	globalVisit := 0
	globalNight := 0

	for day := 1; day <= tripDays; day++ {
		order := 1
		push := func(s Step) {
			s.Day = day
			s.Order = order
			order++
			steps = append(steps, s)
		}

		if day == 1 {
			push(Step{Type: StepStart, Label: "出発地"})
		}
		push(Step{Type: StepMove})
		push(Step{Type: StepFood, MealSlot: "lunchOrDinner"})
		push(Step{Type: StepMove})
		globalVisit++
		push(Step{Type: StepVisit, Index: globalVisit})

		isLastDay := day == tripDays
		if !isLastDay && globalNight < stayDays {
			push(Step{Type: StepMove})
			globalNight++
			push(Step{Type: StepHotel, Night: globalNight, Index: globalNight})
		} else {
			push(Step{Type: StepMove})
			push(Step{Type: StepEnd, Label: "帰着地"})
		}
	}

	return steps
}

// PromptBlock renders the skeleton as compact per-day chains for embedding in
// the outline prompt, e.g. "D1:start->move->food->move->visit(1)->move->hotel(1)".
func PromptBlock(steps []Step) string {
	lastDay := 0
	for _, s := range steps {
		if s.Day > lastDay {
			lastDay = s.Day
		}
	}

	var lines []string
	for day := 1; day <= lastDay; day++ {
		var tokens []string
		for _, s := range steps {
			if s.Day != day {
				continue
			}
			switch s.Type {
			case StepVisit:
				tokens = append(tokens, fmt.Sprintf("visit(%d)", s.Index))
			case StepHotel:
				tokens = append(tokens, fmt.Sprintf("hotel(%d)", s.Night))
			default:
				tokens = append(tokens, string(s.Type))
			}
		}
		lines = append(lines, fmt.Sprintf("D%d:%s", day, strings.Join(tokens, "->")))
	}
	return strings.Join(lines, "\n")
}
