package scheduler

import "time"

const dayLayout = "2006-01-02"

// dayState carries the once-per-day guards. Each guard holds the date it
// last fired for rather than a boolean, so a missed window, a restart, or
// a late cycle resolves against the current date instead of a stale flag.
type dayState struct {
	utcDay     string // last day the midnight reset ran
	entriesFor string // ET day the paper entry guard belongs to
	morningFor string // ET day the morning digest went out
	eveningFor string // ET day the evening summary went out
	resolveFor string // ET day the scorer ran
}

func (d *dayState) resetForNewDay(utcDay string) {
	d.utcDay = utcDay
}

// morningWindow reports whether etNow falls in the 7:00-7:14 AM send
// window. Windows span several cycle intervals so one slow or failed cycle
// does not cost the day's digest.
func morningWindow(etNow time.Time) bool {
	m := etNow.Hour()*60 + etNow.Minute()
	return m >= 420 && m < 435
}

// eveningWindow reports whether etNow falls in the 8:00-8:14 PM window.
func eveningWindow(etNow time.Time) bool {
	m := etNow.Hour()*60 + etNow.Minute()
	return m >= 1200 && m < 1215
}

// resolveDue reports whether the daily scorer may run: any time from
// 9:30 AM ET on. A plain hour-and-minute conjunction would stop matching
// after 10:00 and skip days whose 9:30 cycle never landed.
func resolveDue(etNow time.Time) bool {
	return etNow.Hour() > 9 || (etNow.Hour() == 9 && etNow.Minute() >= 30)
}
