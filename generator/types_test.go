package generator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip_itinerary_planner/itinerary"
)

func sumItems(items []itinerary.Item) int {
	total := 0
	for _, it := range items {
		total += it.BudgetPerPerson
	}
	return total
}

func sumDays(it *itinerary.Itinerary) int {
	total := 0
	for _, d := range it.Days {
		total += d.BudgetPerPerson
	}
	return total
}

func TestDestination_UnmarshalText(t *testing.T) {
	var d Destination
	require.NoError(t, json.Unmarshal([]byte(`"  京都 "`), &d))
	assert.Equal(t, "京都", d.Text)
	assert.Empty(t, d.Links)
	assert.False(t, d.IsEmpty())
}

func TestDestination_UnmarshalLinks(t *testing.T) {
	payload := `[
		{"title":"嵐山","description":"","url":" https://example.com/a "},
		{"title":"URLなしは捨てる","url":""},
		{"description":"抹茶","url":"https://example.com/b"}
	]`
	var d Destination
	require.NoError(t, json.Unmarshal([]byte(payload), &d))
	require.Len(t, d.Links, 2)
	assert.Equal(t, "https://example.com/a", d.Links[0].URL)
	assert.Equal(t, "抹茶", d.Links[1].Description)
}

func TestDestination_UnmarshalRejectsOtherShapes(t *testing.T) {
	var d Destination
	assert.Error(t, json.Unmarshal([]byte(`42`), &d))
}

func TestDestination_Empty(t *testing.T) {
	var d Destination
	require.NoError(t, json.Unmarshal([]byte(`"   "`), &d))
	assert.True(t, d.IsEmpty())

	require.NoError(t, json.Unmarshal([]byte(`[{"title":"t","url":""}]`), &d))
	assert.True(t, d.IsEmpty())
}

func TestDestination_MarshalRoundTrip(t *testing.T) {
	orig := Destination{Links: []LinkPreview{{Title: "嵐山", URL: "https://example.com/a"}}}
	b, err := json.Marshal(orig)
	require.NoError(t, err)

	var back Destination
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, orig, back)
}

func TestDepartPoint_Label(t *testing.T) {
	assert.Equal(t, "最寄駅:東京駅", DepartPoint{Type: "station", Value: "東京駅"}.Label())
	assert.Equal(t, "郵便番号:1500001", DepartPoint{Type: "postal", Value: "1500001"}.Label())
	assert.Equal(t, "出発地:自宅", DepartPoint{Type: "other", Value: "自宅"}.Label())
}

func TestOutlineRequest_OptionalBlock(t *testing.T) {
	var req OutlineRequest
	assert.Equal(t, "none", req.OptionalBlock())

	people := 4
	companion := "子供連れ"
	req.People = &people
	req.Companion = &companion
	assert.Equal(t, "people=4\ncompanion=子供連れ", req.OptionalBlock())
}

func TestDetectPreset(t *testing.T) {
	_, ok := DetectPreset(Destination{Text: "北海道でカニが食べたい"})
	assert.False(t, ok)

	p, ok := DetectPreset(Destination{Text: "今度こそ京都に行きたい"})
	require.True(t, ok)
	assert.Equal(t, "京都", p.Region)

	p, ok = DetectPreset(Destination{Links: []LinkPreview{{Title: "大阪グルメ10選", URL: "https://example.com"}}})
	require.True(t, ok)
	assert.Equal(t, "大阪", p.Region)
}

func TestBuildPresetItinerary(t *testing.T) {
	req := OutlineRequest{
		TripName:    "関西旅行",
		Destination: Destination{Text: "京都"},
		TripDays:    3,
		StayDays:    2,
	}
	p, ok := DetectPreset(req.Destination)
	require.True(t, ok)

	it := BuildPresetItinerary(req, p)
	require.Len(t, it.Days, 3)
	assert.Equal(t, "関西旅行", it.TripName)
	assert.NotEmpty(t, it.Summary)
	assert.NotEmpty(t, it.Warnings)

	// hotels on all but the last day
	for i, d := range it.Days {
		last := d.Items[len(d.Items)-1]
		if i == len(it.Days)-1 {
			assert.NotEqual(t, "hotel", string(last.Kind))
		} else {
			assert.Equal(t, "hotel", string(last.Kind))
		}
		assert.Equal(t, d.BudgetPerPerson, sumItems(d.Items))
	}
	assert.Equal(t, it.BudgetPerPerson, sumDays(it))
}
