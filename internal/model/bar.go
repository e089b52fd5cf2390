package model

import "time"

// Bar is one OHLCV sample for a fixed interval.
// Prices are in the instrument's quote currency (rupees for NSE/MCX scrips).
type Bar struct {
	TS     time.Time `json:"ts"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Interval is a bar sampling interval supported by the data source.
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
)

// Closes extracts the close series from a time-ascending bar slice.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// PctChange returns the percent move from the first bar's open to the last
// bar's close. Returns 0 for an empty series or a zero opening price.
func PctChange(bars []Bar) float64 {
	if len(bars) == 0 {
		return 0
	}
	open := bars[0].Open
	if open == 0 {
		return 0
	}
	return (bars[len(bars)-1].Close - open) / open * 100
}
