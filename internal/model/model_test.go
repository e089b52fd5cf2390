package model

import (
	"math"
	"testing"
)

func almost(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSignalIsBuy(t *testing.T) {
	tests := []struct {
		sig  Signal
		want bool
	}{
		{SignalBuy, true},
		{SignalBuyCall, true},
		{SignalBuyPut, true},
		{SignalSell, false},
		{SignalHold, false},
	}
	for _, tt := range tests {
		if got := tt.sig.IsBuy(); got != tt.want {
			t.Errorf("%s.IsBuy() = %v, want %v", tt.sig, got, tt.want)
		}
	}
}

func TestSignalOptionSide(t *testing.T) {
	if SignalBuy.OptionSide() != OptionCall {
		t.Error("BUY must trade calls")
	}
	if SignalSell.OptionSide() != OptionPut {
		t.Error("SELL must trade puts")
	}
}

func TestPctChange(t *testing.T) {
	bars := []Bar{
		{Open: 100, Close: 101},
		{Open: 101, Close: 110},
	}
	if got := PctChange(bars); !almost(got, 10) {
		t.Errorf("PctChange = %.2f, want 10 (first open to last close)", got)
	}
	if got := PctChange(nil); got != 0 {
		t.Errorf("PctChange(nil) = %.2f, want 0", got)
	}
	if got := PctChange([]Bar{{Open: 0, Close: 50}}); got != 0 {
		t.Errorf("zero open: PctChange = %.2f, want 0", got)
	}
}

func TestPositionPctMove(t *testing.T) {
	p := &Position{Entry: 200, Current: 197}
	if got := p.PctMove(); !almost(got, -1.5) {
		t.Errorf("PctMove = %.4f, want -1.5", got)
	}
	zero := &Position{Entry: 0, Current: 100}
	if got := zero.PctMove(); got != 0 {
		t.Errorf("zero entry: PctMove = %.4f, want 0", got)
	}
}

func TestAssetClass(t *testing.T) {
	for _, c := range []AssetClass{ClassIndex, ClassEquity, ClassCommodity, ClassCrypto} {
		if !c.Valid() {
			t.Errorf("%s not valid", c)
		}
	}
	if AssetClass("BOND").Valid() {
		t.Error("unknown class accepted")
	}
	if !ClassIndex.Derivative() {
		t.Error("INDEX must trade derivatives")
	}
	if ClassEquity.Derivative() {
		t.Error("EQUITY must not trade derivatives")
	}
}

func TestDefaultWatchlist(t *testing.T) {
	wl := DefaultWatchlist()
	if len(wl) != 5 {
		t.Fatalf("watchlist has %d entries, want 5", len(wl))
	}
	bySymbol := make(map[string]Instrument, len(wl))
	for _, inst := range wl {
		if !inst.Class.Valid() || inst.Code == "" || inst.Step <= 0 {
			t.Errorf("malformed entry: %+v", inst)
		}
		bySymbol[inst.Symbol] = inst
	}
	if nifty := bySymbol["NIFTY 50"]; nifty.Step != 50 || nifty.Class != ClassIndex {
		t.Errorf("NIFTY 50 entry wrong: %+v", nifty)
	}
	if bn := bySymbol["BANKNIFTY"]; bn.Step != 100 {
		t.Errorf("BANKNIFTY step = %.0f, want 100", bn.Step)
	}
}
