// Package marketdata fetches historical OHLCV bars from the Yahoo Finance
// chart API. Yahoo is the bar source for every watchlist code (^NSEI,
// CL=F, BTC-USD, RELIANCE.NS, ...); broker data is only used for live
// quotes on resolved contracts.
package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/model"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// ErrNoData is returned when the chart API has no bars for the code.
var ErrNoData = errors.New("no bar data")

// YahooSource fetches bars over the chart API.
type YahooSource struct {
	baseURL string
	client  *http.Client
}

// NewYahooSource creates a bar source. baseURL overrides the Yahoo endpoint
// for tests; empty uses the real one.
func NewYahooSource(baseURL string) *YahooSource {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &YahooSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// chartResponse mirrors the slice of the chart payload we consume.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Bars fetches a time-ascending bar sequence for code at the given interval
// over the last lookbackDays days. Bars with missing closes (halts, thin
// sessions) are dropped rather than zero-filled.
func (y *YahooSource) Bars(ctx context.Context, code string, interval model.Interval, lookbackDays int) ([]model.Bar, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%dd",
		y.baseURL, url.PathEscape(code), interval, lookbackDays)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("yahoo request: %w", err)
	}
	// The chart API rejects Go's default agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)")
	req.Header.Set("Accept", "application/json")

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch %s: %w", code, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo fetch %s: status %d", code, resp.StatusCode)
	}

	var payload chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("yahoo decode %s: %w", code, err)
	}
	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo %s: %s: %s", code, payload.Chart.Error.Code, payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoData, code)
	}

	result := payload.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 || len(result.Timestamp) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoData, code)
	}
	quote := result.Indicators.Quote[0]

	bars := make([]model.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c := deref(quote.Close, i)
		if c == nil {
			continue
		}
		bar := model.Bar{
			TS:    time.Unix(ts, 0).UTC(),
			Close: *c,
		}
		if v := deref(quote.Open, i); v != nil {
			bar.Open = *v
		} else {
			bar.Open = *c
		}
		if v := deref(quote.High, i); v != nil {
			bar.High = *v
		} else {
			bar.High = *c
		}
		if v := deref(quote.Low, i); v != nil {
			bar.Low = *v
		} else {
			bar.Low = *c
		}
		if v := deref(quote.Volume, i); v != nil {
			bar.Volume = *v
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoData, code)
	}
	return bars, nil
}

func deref(vals []*float64, i int) *float64 {
	if i >= len(vals) {
		return nil
	}
	return vals[i]
}
