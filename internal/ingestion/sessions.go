package ingestion

import "time"

// LastNTradingDays returns the last n US equity trading sessions (most recent
// first). It excludes Saturdays, Sundays, and NYSE full-day holidays.
func LastNTradingDays(n int, from time.Time) []time.Time {
	out := make([]time.Time, 0, n)
	d := truncateToDate(from)

	for len(out) < n {
		if isTradingDayUS(d) {
			out = append(out, d)
		}
		d = d.AddDate(0, 0, -1)
	}
	return out
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// isTradingDayUS returns true if the NYSE is open for a full session on d.
func isTradingDayUS(d time.Time) bool {
	if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}

	y := d.Year()
	day := truncateToDate(d)

	holidays := map[time.Time]struct{}{}
	add := func(t time.Time) { holidays[truncateToDate(t)] = struct{}{} }

	// Fixed-date holidays, shifted to the observed weekday when they fall on
	// a weekend (Saturday observed Friday, Sunday observed Monday).
	add(observed(time.Date(y, time.January, 1, 0, 0, 0, 0, d.Location())))   // New Year's Day
	add(observed(time.Date(y, time.June, 19, 0, 0, 0, 0, d.Location())))     // Juneteenth
	add(observed(time.Date(y, time.July, 4, 0, 0, 0, 0, d.Location())))      // Independence Day
	add(observed(time.Date(y, time.December, 25, 0, 0, 0, 0, d.Location()))) // Christmas

	// Floating holidays.
	add(nthWeekday(y, time.January, time.Monday, 3, d.Location()))    // MLK Day
	add(nthWeekday(y, time.February, time.Monday, 3, d.Location()))   // Washington's Birthday
	add(lastWeekday(y, time.May, time.Monday, d.Location()))          // Memorial Day
	add(nthWeekday(y, time.September, time.Monday, 1, d.Location()))  // Labor Day
	add(nthWeekday(y, time.November, time.Thursday, 4, d.Location())) // Thanksgiving

	// Good Friday (2 days before Easter Sunday).
	add(easterSunday(y, d.Location()).AddDate(0, 0, -2))

	_, closed := holidays[day]
	return !closed
}

// observed shifts a weekend holiday to its observed trading-calendar date.
func observed(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return t.AddDate(0, 0, -1)
	case time.Sunday:
		return t.AddDate(0, 0, 1)
	default:
		return t
	}
}

// nthWeekday returns the nth given weekday of a month.
func nthWeekday(year int, month time.Month, wd time.Weekday, n int, loc *time.Location) time.Time {
	t := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	offset := (int(wd) - int(t.Weekday()) + 7) % 7
	return t.AddDate(0, 0, offset+(n-1)*7)
}

// lastWeekday returns the last given weekday of a month.
func lastWeekday(year int, month time.Month, wd time.Weekday, loc *time.Location) time.Time {
	t := time.Date(year, month+1, 1, 0, 0, 0, 0, loc).AddDate(0, 0, -1)
	offset := (int(t.Weekday()) - int(wd) + 7) % 7
	return t.AddDate(0, 0, -offset)
}

// easterSunday returns the date of Easter Sunday for a given year
// (Meeus/Jones/Butcher algorithm).
func easterSunday(year int, loc *time.Location) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
}
