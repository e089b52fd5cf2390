// Package smartconnect is a minimal Angel One SmartAPI client covering what
// the bot needs: session login with TOTP, last-traded-price quotes, market
// order placement and the market-feed quote stream. Responses are decoded
// into typed values; a status=false payload is an error, never a silent
// zero.
package smartconnect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/pquerna/otp/totp"
)

const (
	defaultRootURL = "https://apiconnect.angelone.in"
	defaultTimeout = 7 * time.Second

	routeLogin      = "/rest/auth/angelbroking/user/v1/loginByPassword"
	routeLogout     = "/rest/secure/angelbroking/user/v1/logout"
	routeLTP        = "/rest/secure/angelbroking/order/v1/getLtpData"
	routePlaceOrder = "/rest/secure/angelbroking/order/v1/placeOrder"
)

// Fallbacks when interface lookup fails, matching the reference client.
const (
	fallbackLocalIP  = "127.0.0.1"
	fallbackPublicIP = "106.193.147.98"
	fallbackMAC      = "00:11:22:33:44:55"
)

// Config configures the client.
type Config struct {
	APIKey  string
	RootURL string        // default: https://apiconnect.angelone.in
	Timeout time.Duration // default: 7s
}

// Credentials identifies a SmartAPI user for login.
type Credentials struct {
	ClientCode string
	PIN        string
	TOTPSecret string // base32 secret; a fresh code is generated per login
}

// Client is a SmartAPI REST client. Not safe for concurrent logins, but
// quote and order calls may run concurrently once a session exists.
type Client struct {
	apiKey  string
	rootURL string
	http    *http.Client
	log     *slog.Logger

	accessToken string
	feedToken   string
	clientCode  string

	localIP  string
	publicIP string
	mac      string
}

// NewClient creates a SmartAPI client.
func NewClient(cfg Config, log *slog.Logger) *Client {
	if cfg.RootURL == "" {
		cfg.RootURL = defaultRootURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		apiKey:   cfg.APIKey,
		rootURL:  cfg.RootURL,
		http:     &http.Client{Timeout: cfg.Timeout},
		log:      log,
		localIP:  localIP(),
		publicIP: fallbackPublicIP,
		mac:      macAddress(),
	}
}

// apiResponse is the SmartAPI envelope common to all endpoints.
type apiResponse struct {
	Status    bool            `json:"status"`
	Message   string          `json:"message"`
	ErrorCode string          `json:"errorcode"`
	Data      json.RawMessage `json:"data"`
}

// GenerateSession logs in with a TOTP code generated from the secret and
// stores the session tokens on the client.
func (c *Client) GenerateSession(ctx context.Context, creds Credentials) error {
	code, err := totp.GenerateCode(creds.TOTPSecret, time.Now())
	if err != nil {
		return fmt.Errorf("totp generate: %w", err)
	}

	var data struct {
		JWTToken     string `json:"jwtToken"`
		RefreshToken string `json:"refreshToken"`
		FeedToken    string `json:"feedToken"`
	}
	err = c.post(ctx, routeLogin, map[string]string{
		"clientcode": creds.ClientCode,
		"password":   creds.PIN,
		"totp":       code,
	}, &data)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	c.accessToken = data.JWTToken
	c.feedToken = data.FeedToken
	c.clientCode = creds.ClientCode
	c.log.Info("smartapi session established", "client", creds.ClientCode)
	return nil
}

// Logout terminates the session.
func (c *Client) Logout(ctx context.Context) error {
	err := c.post(ctx, routeLogout, map[string]string{"clientcode": c.clientCode}, nil)
	c.accessToken = ""
	c.feedToken = ""
	return err
}

// LTP returns the last traded price for a scrip token on an exchange.
func (c *Client) LTP(ctx context.Context, exchange, token string) (float64, error) {
	var data struct {
		LTP float64 `json:"ltp"`
	}
	err := c.post(ctx, routeLTP, map[string]string{
		"exchange":      exchange,
		"tradingsymbol": token,
		"symboltoken":   token,
	}, &data)
	if err != nil {
		return 0, fmt.Errorf("ltp %s:%s: %w", exchange, token, err)
	}
	return data.LTP, nil
}

// PlaceMarketOrder places an intraday market buy and returns the broker
// order id.
func (c *Client) PlaceMarketOrder(ctx context.Context, tradingSymbol, token, exchange string, qty int64) (string, error) {
	var data struct {
		OrderID string `json:"orderid"`
	}
	err := c.post(ctx, routePlaceOrder, map[string]string{
		"variety":         "NORMAL",
		"tradingsymbol":   tradingSymbol,
		"symboltoken":     token,
		"transactiontype": "BUY",
		"exchange":        exchange,
		"ordertype":       "MARKET",
		"producttype":     "INTRADAY",
		"duration":        "DAY",
		"quantity":        strconv.FormatInt(qty, 10),
	}, &data)
	if err != nil {
		return "", fmt.Errorf("place order %s: %w", tradingSymbol, err)
	}
	if data.OrderID == "" {
		return "", fmt.Errorf("place order %s: no order id in response", tradingSymbol)
	}
	return data.OrderID, nil
}

// FeedToken returns the market-feed token from the current session.
func (c *Client) FeedToken() string { return c.feedToken }

// AccessToken returns the session JWT.
func (c *Client) AccessToken() string { return c.accessToken }

// ClientCode returns the logged-in client code.
func (c *Client) ClientCode() string { return c.clientCode }

// APIKey returns the configured API key.
func (c *Client) APIKey() string { return c.apiKey }

// LoggedIn reports whether a session exists.
func (c *Client) LoggedIn() bool { return c.accessToken != "" }

func (c *Client) post(ctx context.Context, route string, params any, out any) error {
	body, err := json.Marshal(params)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rootURL+route, bytes.NewReader(body))
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response (http %d): %w", resp.StatusCode, err)
	}
	if !env.Status {
		return fmt.Errorf("api error %s: %s", env.ErrorCode, env.Message)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-ClientLocalIP", c.localIP)
	req.Header.Set("X-ClientPublicIP", c.publicIP)
	req.Header.Set("X-MACAddress", c.mac)
	req.Header.Set("X-PrivateKey", c.apiKey)
	req.Header.Set("X-UserType", "USER")
	req.Header.Set("X-SourceID", "WEB")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
}

func localIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return fallbackLocalIP
	}
	for _, addr := range addrs {
		if ipNet, ok := addr.(*net.IPNet); ok && !ipNet.IP.IsLoopback() && ipNet.IP.To4() != nil {
			return ipNet.IP.String()
		}
	}
	return fallbackLocalIP
}

func macAddress() string {
	ifs, err := net.Interfaces()
	if err != nil {
		return fallbackMAC
	}
	for _, ifc := range ifs {
		if len(ifc.HardwareAddr) > 0 {
			return ifc.HardwareAddr.String()
		}
	}
	return fallbackMAC
}
