package itinerary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func sampleItinerary() *Itinerary {
	return &Itinerary{
		TripName: "京都2泊3日",
		TripDays: 3,
		StayDays: 2,
		Days: []Day{
			{
				DayIndex: 1,
				Items: []Item{
					{Kind: KindVisit, Title: "清水寺", BudgetPerPerson: 1000},
					{Kind: KindFood, Title: "湯豆腐 順正", BudgetPerPerson: 2500},
					{Kind: KindHotel, Title: "宿（未確定）", BudgetPerPerson: 8000},
				},
			},
			{
				DayIndex: 2,
				Items: []Item{
					{Kind: KindVisit, Title: "金閣寺", BudgetPerPerson: 500},
				},
			},
		},
		Warnings: []string{},
	}
}

func TestRecomputeBudgets(t *testing.T) {
	it := sampleItinerary()
	it.RecomputeBudgets()

	assert.Equal(t, 11500, it.Days[0].BudgetPerPerson)
	assert.Equal(t, 500, it.Days[1].BudgetPerPerson)
	assert.Equal(t, 12000, it.BudgetPerPerson)

	// stays consistent whatever a merge writes into an item
	it.Days[1].Items[0].BudgetPerPerson = 1200
	it.RecomputeBudgets()
	assert.Equal(t, 12700, it.BudgetPerPerson)
}

func TestClone_IsDeep(t *testing.T) {
	it := sampleItinerary()
	cp := it.Clone()
	require.Equal(t, it, cp)

	cp.Days[0].Items[0].Title = "伏見稲荷大社"
	cp.Days[0].Title = strPtr("別の日")
	assert.Equal(t, "清水寺", it.Days[0].Items[0].Title)
	assert.Nil(t, it.Days[0].Title)
}

func TestFindDay(t *testing.T) {
	it := sampleItinerary()
	d := it.FindDay(2)
	require.NotNil(t, d)
	assert.Equal(t, "金閣寺", d.Items[0].Title)
	assert.Nil(t, it.FindDay(9))
}

func TestFallbackTitle(t *testing.T) {
	tests := []struct {
		kind ItemKind
		prev *string
		next *string
		want string
	}{
		{KindFood, nil, nil, "食事（京都）"},
		{KindHotel, nil, nil, "宿泊（京都）"},
		{KindVisit, nil, nil, "観光（京都）"},
		{KindMove, strPtr("清水寺"), strPtr("金閣寺"), "清水寺→金閣寺（移動）"},
		{KindMove, nil, nil, "京都→京都（移動）"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FallbackTitle(tt.kind, "京都", tt.prev, tt.next))
	}
}

func TestToMarkdown(t *testing.T) {
	it := sampleItinerary()
	it.Summary = "古都を巡る王道コース。"
	it.RecomputeBudgets()

	md := it.ToMarkdown()
	assert.Contains(t, md, "# 京都2泊3日")
	assert.Contains(t, md, "2泊3日")
	assert.Contains(t, md, "## Day 1")
	assert.Contains(t, md, "清水寺")
	assert.Contains(t, md, "¥12000/人")
}
