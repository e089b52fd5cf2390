package model

// AssetClass tags a watchlist entry with its market segment. It decides the
// trading session, the contract resolution path and whether strike selection
// applies.
type AssetClass string

const (
	ClassIndex     AssetClass = "INDEX"
	ClassEquity    AssetClass = "EQUITY"
	ClassCommodity AssetClass = "COMMODITY"
	ClassCrypto    AssetClass = "CRYPTO"
)

// Valid reports whether c is one of the known asset classes.
func (c AssetClass) Valid() bool {
	switch c {
	case ClassIndex, ClassEquity, ClassCommodity, ClassCrypto:
		return true
	}
	return false
}

// Derivative reports whether instruments of this class trade through
// strike-selected option contracts.
func (c AssetClass) Derivative() bool { return c == ClassIndex }

// Instrument is one watchlist entry. Immutable once added; the operator adds
// and removes entries, nothing removes them automatically.
type Instrument struct {
	Symbol string     `json:"symbol"` // logical name, e.g. "NIFTY 50"
	Class  AssetClass `json:"class"`
	Code   string     `json:"code"` // data-source code, e.g. "^NSEI"
	Step   float64    `json:"step"` // strike rounding step (derivative classes)
}

// Contract identifies a tradable scrip resolved from an instrument.
type Contract struct {
	Token         string `json:"token"`
	TradingSymbol string `json:"trading_symbol"`
	Exchange      string `json:"exchange"` // NSE, NFO, MCX
}

// OptionType is the derivative side of a resolved contract.
type OptionType string

const (
	OptionCall OptionType = "CE"
	OptionPut  OptionType = "PE"
)

// DefaultWatchlist returns the watchlist the bot starts with.
func DefaultWatchlist() []Instrument {
	return []Instrument{
		{Symbol: "NIFTY 50", Class: ClassIndex, Code: "^NSEI", Step: 50},
		{Symbol: "BANKNIFTY", Class: ClassIndex, Code: "^NSEBANK", Step: 100},
		{Symbol: "CRUDEOIL", Class: ClassCommodity, Code: "CL=F", Step: 10},
		{Symbol: "BITCOIN", Class: ClassCrypto, Code: "BTC-USD", Step: 1},
		{Symbol: "RELIANCE", Class: ClassEquity, Code: "RELIANCE.NS", Step: 1},
	}
}
