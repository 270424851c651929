package itinerary

import (
	"fmt"
	"strings"
)

func iconFor(kind ItemKind) string {
	switch kind {
	case KindMove:
		return "🚃"
	case KindVisit:
		return "📍"
	case KindFood:
		return "🍜"
	case KindHotel:
		return "🛏️"
	default:
		return "🗂️"
	}
}

// ToMarkdown renders the itinerary as a shareable Markdown document.
func (it *Itinerary) ToMarkdown() string {
	var sb strings.Builder

	name := it.TripName
	if name == "" {
		name = "旅行プラン"
	}
	sb.WriteString("# " + name + "\n\n")

	if it.TripDays == 1 {
		sb.WriteString("日帰り\n\n")
	} else if it.TripDays > 1 {
		fmt.Fprintf(&sb, "%d泊%d日\n\n", it.StayDays, it.TripDays)
	}
	if it.Summary != "" {
		sb.WriteString(it.Summary + "\n\n")
	}
	if it.BudgetPerPerson > 0 {
		fmt.Fprintf(&sb, "予算：¥%d/人\n\n", it.BudgetPerPerson)
	}

	for i := range it.Days {
		d := &it.Days[i]
		heading := fmt.Sprintf("## Day %d", d.DayIndex)
		if d.Title != nil && *d.Title != "" {
			heading += " " + *d.Title
		}
		if d.Date != nil && *d.Date != "" {
			heading += "（" + *d.Date + "）"
		}
		sb.WriteString(heading + "\n\n")

		for _, item := range d.Items {
			line := fmt.Sprintf("- %s %s", iconFor(item.Kind), item.Title)
			if item.BudgetPerPerson > 0 {
				line += fmt.Sprintf(" ¥%d", item.BudgetPerPerson)
			}
			sb.WriteString(line + "\n")
			if item.Detail != nil && *item.Detail != "" {
				sb.WriteString("  - " + *item.Detail + "\n")
			}
		}
		sb.WriteString("\n")
	}

	if len(it.Warnings) > 0 {
		sb.WriteString("## 注意\n\n")
		for _, w := range it.Warnings {
			sb.WriteString("- " + w + "\n")
		}
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}
