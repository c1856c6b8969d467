package service

import "time"

// MonthWindow returns the half-open [start, end) window for a calendar
// month in local time. month is 1-based.
func MonthWindow(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	return start, start.AddDate(0, 1, 0)
}

// MonthWindowOf returns the window of the month containing t.
func MonthWindowOf(t time.Time) (time.Time, time.Time) {
	return MonthWindow(t.Year(), int(t.Month()))
}

// QuarterWindow returns the half-open [start, end) window for a calendar
// quarter in local time. quarter is 1-4 covering months {1-3,4-6,7-9,10-12}.
func QuarterWindow(year, quarter int) (time.Time, time.Time) {
	start := time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.Local)
	return start, start.AddDate(0, 3, 0)
}

// QuarterOf returns the 1-based quarter containing the given month.
func QuarterOf(month int) int {
	return (month-1)/3 + 1
}
