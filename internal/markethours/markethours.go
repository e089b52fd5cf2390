// Package markethours answers whether an asset class is inside its trading
// session at a given instant. Sessions are anchored to Indian Standard Time:
// NSE cash and derivatives trade 9:15–15:30, MCX commodities 9:00–23:30,
// crypto never closes.
package markethours

import (
	"fmt"
	"time"

	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/model"
)

// IST is the Indian Standard Time location (UTC+5:30).
var IST = time.FixedZone("IST", 5*3600+30*60)

// Session open/close times per segment, in IST.
const (
	nseOpenHour    = 9
	nseOpenMinute  = 15
	nseCloseHour   = 15
	nseCloseMinute = 30

	mcxOpenHour    = 9
	mcxOpenMinute  = 0
	mcxCloseHour   = 23
	mcxCloseMinute = 30
)

// SessionOpen reports whether instruments of the given class are inside
// their trading session at t.
func SessionOpen(class model.AssetClass, t time.Time) bool {
	ist := t.In(IST)
	switch class {
	case model.ClassCrypto:
		return true
	case model.ClassCommodity:
		if !isWeekday(ist) {
			return false
		}
		return between(ist, mcxOpenHour, mcxOpenMinute, mcxCloseHour, mcxCloseMinute)
	case model.ClassIndex, model.ClassEquity:
		if !isWeekday(ist) || IsHoliday(ist) {
			return false
		}
		return between(ist, nseOpenHour, nseOpenMinute, nseCloseHour, nseCloseMinute)
	}
	return false
}

// NSEOpen reports whether the NSE cash/derivatives session is open at t.
func NSEOpen(t time.Time) bool {
	return SessionOpen(model.ClassEquity, t)
}

// NextNSEOpen returns the next NSE open time (9:15 IST on the next trading
// day). If t is before today's open on a trading day, returns today's open.
func NextNSEOpen(t time.Time) time.Time {
	ist := t.In(IST)

	todayOpen := time.Date(ist.Year(), ist.Month(), ist.Day(), nseOpenHour, nseOpenMinute, 0, 0, IST)
	if ist.Before(todayOpen) && isWeekday(ist) && !IsHoliday(ist) {
		return todayOpen
	}

	d := ist.AddDate(0, 0, 1)
	for i := 0; i < 10; i++ { // max 10 days ahead (holidays + weekends)
		if isWeekday(d) && !IsHoliday(d) {
			return time.Date(d.Year(), d.Month(), d.Day(), nseOpenHour, nseOpenMinute, 0, 0, IST)
		}
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(ist.Year(), ist.Month(), ist.Day()+1, nseOpenHour, nseOpenMinute, 0, 0, IST)
}

// StatusString returns a human-readable NSE session status for display.
func StatusString(t time.Time) string {
	if NSEOpen(t) {
		close := time.Date(t.In(IST).Year(), t.In(IST).Month(), t.In(IST).Day(),
			nseCloseHour, nseCloseMinute, 0, 0, IST)
		return fmt.Sprintf("Market Open — closes in %s", fmtDur(close.Sub(t.In(IST))))
	}
	next := NextNSEOpen(t)
	return fmt.Sprintf("Market Closed — opens %s %s (%s)",
		next.Weekday().String()[:3], next.Format("15:04"), fmtDur(next.Sub(t.In(IST))))
}

func isWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// between treats both boundaries as inside the session: 15:30:00 still
// trades, 15:30:01 does not.
func between(t time.Time, oh, om, ch, cm int) bool {
	sec := t.Hour()*3600 + t.Minute()*60 + t.Second()
	return sec >= (oh*60+om)*60 && sec <= (ch*60+cm)*60
}

func fmtDur(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
