package itinerary

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countType(steps []Step, t StepType) int {
	n := 0
	for _, s := range steps {
		if s.Type == t {
			n++
		}
	}
	return n
}

func dayChain(steps []Step, day int) []Step {
	var out []Step
	for _, s := range steps {
		if s.Day == day {
			out = append(out, s)
		}
	}
	return out
}

func TestBuildSkeleton_HotelAndEndCounts(t *testing.T) {
	for tripDays := 1; tripDays <= 6; tripDays++ {
		for stayDays := 0; stayDays <= tripDays-1; stayDays++ {
			name := fmt.Sprintf("trip%d_stay%d", tripDays, stayDays)
			t.Run(name, func(t *testing.T) {
				steps := BuildSkeleton(tripDays, stayDays)
				assert.Equal(t, stayDays, countType(steps, StepHotel))
				assert.Equal(t, tripDays-stayDays, countType(steps, StepEnd))
				assert.Equal(t, tripDays, countType(steps, StepVisit))

				// the last day always closes with end, never hotel
				last := dayChain(steps, tripDays)
				require.NotEmpty(t, last)
				assert.Equal(t, StepEnd, last[len(last)-1].Type)
			})
		}
	}
}

func TestBuildSkeleton_ChainShape(t *testing.T) {
	steps := BuildSkeleton(5, 3)
	for day := 1; day <= 5; day++ {
		chain := dayChain(steps, day)
		require.NotEmpty(t, chain)

		if day == 1 {
			assert.Equal(t, StepStart, chain[0].Type)
		} else {
			assert.Equal(t, StepMove, chain[0].Type)
		}

		tail := chain[len(chain)-1].Type
		assert.Contains(t, []StepType{StepEnd, StepHotel}, tail)

		// never two adjacent non-move steps
		for i := 1; i < len(chain); i++ {
			if chain[i-1].Type != StepMove && chain[i].Type != StepMove {
				t.Fatalf("day %d: adjacent non-move steps %s/%s at order %d",
					day, chain[i-1].Type, chain[i].Type, chain[i].Order)
			}
		}

		// order is 1-based and contiguous
		for i, s := range chain {
			assert.Equal(t, i+1, s.Order)
		}
	}
}

func TestBuildSkeleton_Clamping(t *testing.T) {
	// nonsense inputs fall back to a one-day trip
	steps := BuildSkeleton(-3, 9)
	assert.Equal(t, 1, countType(steps, StepVisit))
	assert.Equal(t, 0, countType(steps, StepHotel))

	// stayDays can never exceed tripDays-1
	steps = BuildSkeleton(3, 99)
	assert.Equal(t, 2, countType(steps, StepHotel))
}

func TestBuildSkeleton_GlobalCounters(t *testing.T) {
	steps := BuildSkeleton(4, 2)

	var visits, nights []int
	for _, s := range steps {
		switch s.Type {
		case StepVisit:
			visits = append(visits, s.Index)
		case StepHotel:
			nights = append(nights, s.Night)
		}
	}
	assert.Equal(t, []int{1, 2, 3, 4}, visits)
	// hotels anchor to the earliest eligible days
	assert.Equal(t, []int{1, 2}, nights)
	assert.Equal(t, 1, dayChainLastHotelDay(steps))
}

func dayChainLastHotelDay(steps []Step) int {
	for _, s := range steps {
		if s.Type == StepHotel && s.Night == 1 {
			return s.Day
		}
	}
	return 0
}

func TestPromptBlock_ThreeDayTwoNight(t *testing.T) {
	steps := BuildSkeleton(3, 2)
	got := PromptBlock(steps)
	want := "D1:start->move->food->move->visit(1)->move->hotel(1)\n" +
		"D2:move->food->move->visit(2)->move->hotel(2)\n" +
		"D3:move->food->move->visit(3)->move->end"
	assert.Equal(t, want, got)
}

func TestPromptBlock_DayTrip(t *testing.T) {
	got := PromptBlock(BuildSkeleton(1, 0))
	assert.Equal(t, "D1:start->move->food->move->visit(1)->move->end", got)
}
