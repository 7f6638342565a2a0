package notify

import (
	"time"

	"localdink/internal/database"
)

// withinQuietHours reports whether now falls inside the recipient's quiet
// window. A window may cross midnight, e.g. 22:00 to 07:00. A nil or
// malformed window never suppresses.
func withinQuietHours(qh *database.QuietHours, now time.Time) bool {
	if qh == nil {
		return false
	}

	start, err := minuteOfDay(qh.Start)
	if err != nil {
		return false
	}
	end, err := minuteOfDay(qh.End)
	if err != nil {
		return false
	}
	if start == end {
		return false
	}

	current := now.Hour()*60 + now.Minute()

	if start < end {
		return current >= start && current < end
	}
	return current >= start || current < end
}

func minuteOfDay(clock string) (int, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
