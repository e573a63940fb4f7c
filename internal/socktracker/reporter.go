package socktracker

import (
	"fmt"
	"time"
)

// Name implements the reporter.Reporter interface.
func (t *Tracker) Name() string {
	return "Sock Track"
}

// Report implements the reporter.Reporter interface.
func (t *Tracker) Report(resetCounters bool) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	errs := 0
	for _, v := range t.errors {
		errs += v
	}
	report := fmt.Sprintf("curr=%d pk=%d exch=%d errs=%d (%s) openFor=%0.1fs activeFor=%0.1fs %s",
		len(t.sockMap), t.peakSockets, t.peakExchanges, errs, formatCounters("%d", "/", t.errors[:]),
		t.openFor.Round(time.Millisecond*100).Seconds(), t.activeFor.Round(time.Millisecond*100).Seconds(),
		t.name)
	if resetCounters {
		t.trackerStats = trackerStats{}
		for _, v := range t.sockMap {
			v.resetCounters()
		}
	}

	return report
}

func formatCounters(vfmt string, delim string, vals []int) string {
	res := ""
	for ix, v := range vals {
		if ix > 0 {
			res += delim
		}
		res += fmt.Sprintf(vfmt, v)
	}

	return res
}
