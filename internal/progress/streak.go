package progress

import "time"

// touchStreak applies one day's activity to the streak. Evaluated at most
// once per calendar day: a second activity on the same day is a no-op.
// A gap of more than one day (or the first-ever activity) restarts the
// streak at 1.
func touchStreak(s *StudyStreak, now time.Time) StreakResult {
	today := dateOnly(now)

	if !s.LastActivityDate.IsZero() && dateOnly(s.LastActivityDate).Equal(today) {
		return StreakResult{Extended: false, Current: s.Current}
	}

	yesterday := today.AddDate(0, 0, -1)
	if !s.LastActivityDate.IsZero() && dateOnly(s.LastActivityDate).Equal(yesterday) {
		s.Current++
	} else {
		s.Current = 1
	}

	if s.Current > s.Longest {
		s.Longest = s.Current
	}
	s.LastActivityDate = today

	return StreakResult{Extended: true, Current: s.Current}
}

// dateOnly truncates a timestamp to its calendar day in local time.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
