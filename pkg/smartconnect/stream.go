package smartconnect

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	streamURL = "wss://smartapisocket.angelone.in/smart-stream"

	modeLTP = 1

	pingInterval    = 25 * time.Second
	reconnectDelay  = 5 * time.Second
	quoteStaleAfter = 10 * time.Second
)

// Exchange type codes used by the market feed.
const (
	ExchangeNSECM = 1
	ExchangeNSEFO = 2
	ExchangeMCXFO = 5
)

// ErrNoTick is returned when no fresh tick is cached for a token.
var ErrNoTick = errors.New("smartconnect: no fresh tick")

// TokenGroup lists scrip tokens to subscribe on one exchange segment.
type TokenGroup struct {
	ExchangeType int      `json:"exchangeType"`
	Tokens       []string `json:"tokens"`
}

type subscribeRequest struct {
	CorrelationID string `json:"correlationID"`
	Action        int    `json:"action"`
	Params        struct {
		Mode      int          `json:"mode"`
		TokenList []TokenGroup `json:"tokenList"`
	} `json:"params"`
}

type tick struct {
	price float64
	at    time.Time
}

// QuoteStream consumes the SmartAPI market feed in LTP mode and keeps the
// latest tick per token. Run reconnects until its context is cancelled.
type QuoteStream struct {
	authToken  string
	apiKey     string
	clientCode string
	feedToken  string
	log        *slog.Logger

	mu    sync.RWMutex
	ticks map[string]tick

	now func() time.Time
}

// NewQuoteStream builds a stream from an authenticated client's session.
func NewQuoteStream(c *Client, log *slog.Logger) *QuoteStream {
	return &QuoteStream{
		authToken:  c.AccessToken(),
		apiKey:     c.APIKey(),
		clientCode: c.ClientCode(),
		feedToken:  c.FeedToken(),
		log:        log,
		ticks:      make(map[string]tick),
		now:        time.Now,
	}
}

// Run connects, subscribes the groups and consumes ticks until ctx is
// cancelled, reconnecting on any transport error.
func (s *QuoteStream) Run(ctx context.Context, groups []TokenGroup) error {
	for {
		if err := s.session(ctx, groups); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Warn("quote stream disconnected", "err", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

// LTP returns the cached last traded price for a token if it is fresh.
func (s *QuoteStream) LTP(token string) (float64, error) {
	s.mu.RLock()
	t, ok := s.ticks[token]
	s.mu.RUnlock()
	if !ok || s.now().Sub(t.at) > quoteStaleAfter {
		return 0, ErrNoTick
	}
	return t.price, nil
}

func (s *QuoteStream) session(ctx context.Context, groups []TokenGroup) error {
	header := http.Header{}
	header.Set("Authorization", s.authToken)
	header.Set("x-api-key", s.apiKey)
	header.Set("x-client-code", s.clientCode)
	header.Set("x-feed-token", s.feedToken)

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, streamURL, header)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	if err := s.subscribe(conn, groups); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	s.log.Info("quote stream connected", "groups", len(groups))

	done := make(chan struct{})
	defer close(done)
	go s.pingLoop(ctx, conn, done)

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if msgType == websocket.BinaryMessage {
			s.handleBinary(data)
		}
	}
}

func (s *QuoteStream) subscribe(conn *websocket.Conn, groups []TokenGroup) error {
	var req subscribeRequest
	req.CorrelationID = "ltp-sub"
	req.Action = 1
	req.Params.Mode = modeLTP
	req.Params.TokenList = groups
	return conn.WriteJSON(req)
}

func (s *QuoteStream) pingLoop(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			conn.Close()
			return
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return
			}
		}
	}
}

// Binary LTP packet layout: byte 0 subscription mode, byte 1 exchange
// type, bytes 2:27 token (NUL padded), bytes 43:51 LTP in paise, int64
// little-endian.
func (s *QuoteStream) handleBinary(data []byte) {
	if len(data) < 51 || data[0] != modeLTP {
		return
	}
	token := string(bytes.TrimRight(data[2:27], "\x00"))
	paise := int64(binary.LittleEndian.Uint64(data[43:51]))

	s.mu.Lock()
	s.ticks[token] = tick{price: float64(paise) / 100, at: s.now()}
	s.mu.Unlock()
}
