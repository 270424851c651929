package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"trip_itinerary_planner/itinerary"
)

// DepartPoint is the user's departure anchor, a station name or a postal code.
type DepartPoint struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Label renders the depart point as the Japanese prompt token.
func (p DepartPoint) Label() string {
	switch p.Type {
	case "station":
		return "最寄駅:" + p.Value
	case "postal":
		return "郵便番号:" + p.Value
	default:
		return "出発地:" + p.Value
	}
}

// LinkPreview is a scraped destination hint card.
type LinkPreview struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
}

// Destination is either free text or an ordered list of link previews.
// The JSON form is a string or an array of objects.
type Destination struct {
	Text  string
	Links []LinkPreview
}

func (d *Destination) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		d.Text = strings.TrimSpace(s)
		d.Links = nil
		return nil
	}
	var links []LinkPreview
	if err := json.Unmarshal(b, &links); err != nil {
		return fmt.Errorf("destination must be a string or a link-preview array: %w", err)
	}
	d.Text = ""
	d.Links = d.Links[:0]
	for _, l := range links {
		if strings.TrimSpace(l.URL) == "" {
			continue
		}
		d.Links = append(d.Links, LinkPreview{
			Title:       strings.TrimSpace(l.Title),
			Description: strings.TrimSpace(l.Description),
			URL:         strings.TrimSpace(l.URL),
		})
	}
	return nil
}

func (d Destination) MarshalJSON() ([]byte, error) {
	if len(d.Links) > 0 {
		return json.Marshal(d.Links)
	}
	return json.Marshal(d.Text)
}

// IsEmpty reports whether neither text nor any usable link is present.
func (d Destination) IsEmpty() bool {
	return strings.TrimSpace(d.Text) == "" && len(d.Links) == 0
}

// PromptBlock renders the destination for embedding into the outline prompt.
func (d Destination) PromptBlock() string {
	if len(d.Links) == 0 {
		return "TEXT:" + strings.TrimSpace(d.Text)
	}
	lines := []string{"OGP"}
	for i, l := range d.Links {
		title := l.Title
		if title == "" {
			title = "null"
		}
		desc := l.Description
		if desc == "" {
			desc = "null"
		}
		lines = append(lines, fmt.Sprintf("%d) t=%s d=%s url=%s", i+1, title, desc, l.URL))
	}
	return strings.Join(lines, "\n")
}

// SearchText is the destination flattened for keyword matching (preset detection).
func (d Destination) SearchText() string {
	parts := []string{d.Text}
	for _, l := range d.Links {
		parts = append(parts, l.Title)
	}
	return strings.Join(parts, " ")
}

// OutlineRequest is the Phase-1 form payload.
type OutlineRequest struct {
	TripName    string      `json:"tripName"`
	Depart      DepartPoint `json:"depart"`
	StartDate   string      `json:"startDate"`
	EndDate     *string     `json:"endDate"`
	Destination Destination `json:"destination"`
	TripDays    int         `json:"tripDays"`
	StayDays    int         `json:"stayDays"`
	People      *int        `json:"people"`
	Companion   *string     `json:"companion"`
	Budget      *string     `json:"budget"`
	Gender      *string     `json:"gender"`
	Age         *string     `json:"age"`
}

// OptionalBlock renders the demographic hints, or "none".
func (r OutlineRequest) OptionalBlock() string {
	var lines []string
	if r.People != nil {
		lines = append(lines, fmt.Sprintf("people=%d", *r.People))
	}
	for _, f := range []struct {
		key string
		val *string
	}{
		{"companion", r.Companion},
		{"budget", r.Budget},
		{"gender", r.Gender},
		{"age", r.Age},
	} {
		if f.val != nil && strings.TrimSpace(*f.val) != "" {
			lines = append(lines, f.key+"="+strings.TrimSpace(*f.val))
		}
	}
	if len(lines) == 0 {
		return "none"
	}
	return strings.Join(lines, "\n")
}

// FillRequest is the Phase-2 payload for one (day, kind) slot.
// PreviousVisits is the comma-joined set of visit/food titles chosen on
// strictly earlier days; empty on day 1.
type FillRequest struct {
	DayIndex        int                `json:"dayIndex"`
	Kind            itinerary.ItemKind `json:"kind"`
	AreaTitle       string             `json:"areaTitle"`
	DepartLabel     string             `json:"departLabel"`
	OutlineTitle    string             `json:"outlineTitle"`
	PrevTitle       *string            `json:"prevTitle"`
	NextTitle       *string            `json:"nextTitle"`
	DestinationHint string             `json:"destinationHint"`
	Optional        string             `json:"optional"`
	PreviousVisits  string             `json:"previousVisits,omitempty"`
	TripDays        int                `json:"tripDays,omitempty"`
}
