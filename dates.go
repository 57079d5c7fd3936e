package dailyquote

import (
	"strconv"
	"time"
)

// DayKeyLayout names one record file per calendar day.
const DayKeyLayout = "2006-01-02"

// OrdinalSuffix returns the English ordinal suffix for a day of the month.
// 11th, 12th and 13th are the exceptions to the last-digit rule.
func OrdinalSuffix(day int) string {
	if day > 3 && day < 21 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// FormatDate renders t as "Sat, 17th Oct".
func FormatDate(t time.Time) string {
	d := t.Day()
	return t.Format("Mon") + ", " + strconv.Itoa(d) + OrdinalSuffix(d) + " " + t.Format("Jan")
}

// DayKey returns the YYYY-MM-DD key for t in t's location.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// PreviousDayKey returns the key for exactly 24 hours before t.
func PreviousDayKey(t time.Time) string {
	return DayKey(t.Add(-24 * time.Hour))
}
