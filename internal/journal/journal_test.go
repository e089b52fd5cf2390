package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/model"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "trades.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestEntryExitRoundTrip(t *testing.T) {
	j := openTestJournal(t)

	pos := model.Position{
		Label:    "NIFTY19850CE",
		Entry:    145.5,
		Current:  145.5,
		Qty:      50,
		Mode:     model.ExecLive,
		OrderID:  "ORD-42",
		OpenedAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
	if err := j.RecordEntry(pos); err != nil {
		t.Fatalf("RecordEntry: %v", err)
	}

	pos.Current = 151.2
	pos.PnL = (151.2 - 145.5) * 50
	if err := j.RecordExit(pos, model.CloseTarget); err != nil {
		t.Fatalf("RecordExit: %v", err)
	}

	recs, err := j.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}

	exit, entry := recs[0], recs[1]
	if entry.Event != "ENTRY" || entry.Label != "NIFTY19850CE" || entry.OrderID != "ORD-42" {
		t.Errorf("entry row = %+v", entry)
	}
	if exit.Event != "EXIT" || exit.Reason != "TARGET" || exit.ExitPrice != 151.2 {
		t.Errorf("exit row = %+v", exit)
	}
}

func TestRecentLimitNewestFirst(t *testing.T) {
	j := openTestJournal(t)

	for i := 0; i < 5; i++ {
		pos := model.Position{
			Label:    "BITCOIN",
			Entry:    float64(100 + i),
			Qty:      1,
			Mode:     model.ExecSimulated,
			OpenedAt: time.Now(),
		}
		if err := j.RecordEntry(pos); err != nil {
			t.Fatalf("RecordEntry %d: %v", i, err)
		}
	}

	recs, err := j.Recent(3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	if recs[0].Entry != 104 || recs[2].Entry != 102 {
		t.Errorf("ordering wrong: %+v", recs)
	}
}

func TestRecentEmpty(t *testing.T) {
	j := openTestJournal(t)
	recs, err := j.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("got %d records from an empty journal", len(recs))
	}
}
