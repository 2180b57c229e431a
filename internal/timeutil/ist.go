package timeutil

import (
	"time"
)

// IST is the Indian Standard Time location (UTC+5:30). Daily cash
// ledgers are keyed by the business day in IST, not by server UTC.
var IST *time.Location

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback: create fixed zone if Asia/Kolkata not available
		IST = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// Now returns the current time in IST.
func Now() time.Time {
	return time.Now().In(IST)
}

// BusinessDate formats t as the YYYY-MM-DD ledger key in IST. A
// settlement at 23:55 and its replay at 00:05 land on different ledgers
// on purpose: the agent's cash is counted against the day it was reported.
func BusinessDate(t time.Time) string {
	return t.In(IST).Format(DateLayout)
}

// StartOfDay returns 00:00:00 IST for the given time's business day.
func StartOfDay(t time.Time) time.Time {
	ist := t.In(IST)
	return time.Date(ist.Year(), ist.Month(), ist.Day(), 0, 0, 0, 0, IST)
}

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)
