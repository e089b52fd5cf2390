// Package broker adapts the SmartAPI client to the engine and scanner
// interfaces, preferring stream ticks over REST quotes when a stream is
// attached.
package broker

import (
	"context"

	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/model"
	"github.com/sandeepmishra3515-creator/MishrAlgoBot/pkg/smartconnect"
)

// Router places live market orders through SmartAPI.
type Router struct {
	client *smartconnect.Client
}

// NewRouter wraps an authenticated client.
func NewRouter(client *smartconnect.Client) *Router {
	return &Router{client: client}
}

// PlaceMarketOrder places an intraday market buy for the contract.
func (r *Router) PlaceMarketOrder(ctx context.Context, label string, contract model.Contract, qty int64) (string, error) {
	return r.client.PlaceMarketOrder(ctx, contract.TradingSymbol, contract.Token, contract.Exchange, qty)
}

// Quotes serves last traded prices, consulting the live stream cache first
// and falling back to the REST quote endpoint. Either field may be nil.
type Quotes struct {
	stream *smartconnect.QuoteStream
	rest   *smartconnect.Client
}

// NewQuotes builds a quote source from a stream and a REST client.
func NewQuotes(stream *smartconnect.QuoteStream, rest *smartconnect.Client) *Quotes {
	return &Quotes{stream: stream, rest: rest}
}

// LTP returns the last traded price for a token.
func (q *Quotes) LTP(ctx context.Context, exchange, token string) (float64, error) {
	if q.stream != nil {
		if ltp, err := q.stream.LTP(token); err == nil {
			return ltp, nil
		}
	}
	if q.rest != nil {
		return q.rest.LTP(ctx, exchange, token)
	}
	return 0, smartconnect.ErrNoTick
}
