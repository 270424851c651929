package generator

import (
	"strings"

	"trip_itinerary_planner/itinerary"
)

// Preset is a canned outline for a well-known destination. It skips the
// Phase-1 model call; the fill phase still replaces every placeholder.
type Preset struct {
	Region  string
	Summary string
	Visits  []string
	Foods   []string
	Hotels  []string
}

var presets = []Preset{
	{
		Region:  "京都",
		Summary: "古都京都の王道観光コース。清水寺、金閣寺などの定番スポットを効率よく巡ります。",
		Visits:  []string{"清水寺", "金閣寺", "伏見稲荷大社", "嵐山"},
		Foods:   []string{"湯豆腐", "京懐石", "抹茶スイーツ"},
		Hotels:  []string{"京都駅周辺ホテル", "祇園エリア旅館"},
	},
	{
		Region:  "大阪",
		Summary: "食い倒れの街大阪を満喫。たこ焼き、お好み焼きなどのグルメと観光を楽しみます。",
		Visits:  []string{"大阪城", "道頓堀", "通天閣", "ユニバーサルスタジオ"},
		Foods:   []string{"たこ焼き", "お好み焼き", "串カツ"},
		Hotels:  []string{"梅田エリアホテル", "難波エリアホテル"},
	},
	{
		Region:  "東京",
		Summary: "首都東京の多彩な魅力を体験。伝統とモダンが融合した観光スポットを巡ります。",
		Visits:  []string{"浅草寺", "東京スカイツリー", "明治神宮", "渋谷"},
		Foods:   []string{"寿司", "ラーメン", "もんじゃ焼き"},
		Hotels:  []string{"新宿エリアホテル", "銀座エリアホテル"},
	},
}

// DetectPreset matches the destination text/link titles against the known
// regions.
func DetectPreset(dest Destination) (*Preset, bool) {
	search := strings.ToLower(dest.SearchText())
	for i := range presets {
		if strings.Contains(search, strings.ToLower(presets[i].Region)) {
			return &presets[i], true
		}
	}
	return nil, false
}

func pick(list []string, i int) string {
	return list[i%len(list)]
}

// BuildPresetItinerary expands a preset into an outline-stage itinerary.
// Budgets come out recomputed so the sum invariant holds from the start.
func BuildPresetItinerary(req OutlineRequest, p *Preset) *itinerary.Itinerary {
	tripDays := req.TripDays
	if tripDays < 1 {
		tripDays = 1
	}
	stayDays := req.StayDays
	if stayDays < 0 {
		stayDays = 0
	}
	if max := tripDays - 1; stayDays > max {
		stayDays = max
	}
	tripName := strings.TrimSpace(req.TripName)
	if tripName == "" {
		tripName = "新しい旅行"
	}

	it := &itinerary.Itinerary{
		TripName: tripName,
		TripDays: tripDays,
		StayDays: stayDays,
		Summary:  p.Summary,
		Warnings: []string{"飲食店が混雑している場合は、近隣の類似店舗をご利用ください。"},
	}

	for day := 1; day <= tripDays; day++ {
		i := day - 1
		isLastDay := day == tripDays
		visit := pick(p.Visits, i)

		moveDetail := "電車で約30分、混雑時間を避けて移動"
		visitDetail := "約2時間の観光、写真撮影スポット多数"
		foodDetail := "地元の名店、予約不要、60分滞在"
		hotelDetail := "駅近の便利なホテル、朝食付き"

		d := itinerary.Day{
			DayIndex: day,
			Title:    strPtr(visit),
			Items: []itinerary.Item{
				{
					Kind:            itinerary.KindMove,
					Title:           visit + "へ電車で移動",
					Detail:          &moveDetail,
					DurationMin:     intPtr(30),
					Time:            timeRange("09:00", "09:30"),
					BudgetPerPerson: 500,
				},
				{
					Kind:            itinerary.KindVisit,
					Title:           visit,
					Detail:          &visitDetail,
					DurationMin:     intPtr(120),
					Time:            timeRange("09:30", "11:30"),
					BudgetPerPerson: 1000,
				},
				{
					Kind:            itinerary.KindFood,
					Title:           pick(p.Foods, i) + "で食事",
					Detail:          &foodDetail,
					DurationMin:     intPtr(60),
					Time:            timeRange("12:00", "13:00"),
					BudgetPerPerson: 2000,
				},
			},
		}
		if !isLastDay {
			budget := 2500
			if day == 1 {
				budget = 4500
			}
			d.Items = append(d.Items, itinerary.Item{
				Kind:            itinerary.KindHotel,
				Title:           pick(p.Hotels, i) + "に宿泊",
				Detail:          &hotelDetail,
				BudgetPerPerson: budget,
			})
		}
		it.Days = append(it.Days, d)
	}

	it.RecomputeBudgets()
	return it
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func timeRange(start, end string) *itinerary.TimeRange {
	return &itinerary.TimeRange{Start: &start, End: &end}
}
