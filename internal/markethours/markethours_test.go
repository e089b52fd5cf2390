package markethours

import (
	"testing"
	"time"

	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/model"
)

func ist(month time.Month, day, hour, min int) time.Time {
	return time.Date(2026, month, day, hour, min, 0, 0, IST)
}

func istSec(month time.Month, day, hour, min, sec int) time.Time {
	return time.Date(2026, month, day, hour, min, sec, 0, IST)
}

func TestSessionOpen(t *testing.T) {
	// 2026-03-02 is a Monday, 2026-03-07 a Saturday.
	tests := []struct {
		name  string
		class model.AssetClass
		t     time.Time
		want  bool
	}{
		{"nse mid-session", model.ClassEquity, ist(time.March, 2, 11, 0), true},
		{"nse at open", model.ClassIndex, ist(time.March, 2, 9, 15), true},
		{"nse before open", model.ClassIndex, ist(time.March, 2, 9, 14), false},
		{"nse at close", model.ClassEquity, ist(time.March, 2, 15, 30), true},
		{"nse past close", model.ClassEquity, istSec(time.March, 2, 15, 30, 1), false},
		{"nse saturday", model.ClassEquity, ist(time.March, 7, 11, 0), false},
		{"nse weekday holiday", model.ClassIndex, ist(time.April, 14, 11, 0), false},
		{"mcx evening", model.ClassCommodity, ist(time.March, 2, 22, 0), true},
		{"mcx early", model.ClassCommodity, ist(time.March, 2, 8, 59), false},
		{"mcx at close", model.ClassCommodity, ist(time.March, 2, 23, 30), true},
		{"mcx past close", model.ClassCommodity, istSec(time.March, 2, 23, 30, 1), false},
		{"mcx trades nse holidays", model.ClassCommodity, ist(time.January, 26, 12, 0), true},
		{"crypto sunday 3am", model.ClassCrypto, ist(time.March, 8, 3, 0), true},
		{"unknown class", model.AssetClass("BOND"), ist(time.March, 2, 11, 0), false},
	}
	for _, tt := range tests {
		if got := SessionOpen(tt.class, tt.t); got != tt.want {
			t.Errorf("%s: SessionOpen = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSessionOpenConvertsZones(t *testing.T) {
	// 05:30 UTC is 11:00 IST, inside the NSE session.
	utc := time.Date(2026, time.March, 2, 5, 30, 0, 0, time.UTC)
	if !SessionOpen(model.ClassEquity, utc) {
		t.Error("UTC instant inside the IST session reported closed")
	}
}

func TestNextNSEOpen(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want time.Time
	}{
		{"early same day", ist(time.March, 2, 8, 0), ist(time.March, 2, 9, 15)},
		{"after close rolls to tuesday", ist(time.March, 2, 16, 0), ist(time.March, 3, 9, 15)},
		{"friday evening rolls over weekend", ist(time.March, 6, 18, 0), ist(time.March, 9, 9, 15)},
		{"friday 13th skips holi saturday", ist(time.March, 13, 18, 0), ist(time.March, 16, 9, 15)},
	}
	for _, tt := range tests {
		if got := NextNSEOpen(tt.t); !got.Equal(tt.want) {
			t.Errorf("%s: NextNSEOpen = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsHoliday(t *testing.T) {
	if !IsHoliday(ist(time.January, 26, 12, 0)) {
		t.Error("Republic Day not recognized as a holiday")
	}
	if IsHoliday(ist(time.March, 2, 12, 0)) {
		t.Error("ordinary Monday flagged as a holiday")
	}
}
