package domain

import "time"

const DayLayout = "2006-01-02"

// FormatDay renders t as a calendar day in t's own location.
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

func IsValidDay(day string) bool {
	parsed, err := time.Parse(DayLayout, day)
	if err != nil {
		return false
	}
	return parsed.Format(DayLayout) == day
}
