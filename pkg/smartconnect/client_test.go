package smartconnect

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(rootURL string) *Client {
	return NewClient(Config{APIKey: "key123", RootURL: rootURL},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// Any valid base32 secret works for code generation.
const testTOTPSecret = "JBSWY3DPEHPK3PXP"

func TestGenerateSession(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != routeLogin {
			t.Errorf("path = %s, want %s", r.URL.Path, routeLogin)
		}
		if r.Header.Get("X-PrivateKey") != "key123" {
			t.Errorf("X-PrivateKey = %q", r.Header.Get("X-PrivateKey"))
		}
		if r.Header.Get("X-UserType") != "USER" || r.Header.Get("X-SourceID") != "WEB" {
			t.Error("identity headers missing")
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"status":true,"message":"SUCCESS","errorcode":"",
			"data":{"jwtToken":"jwt-1","refreshToken":"r-1","feedToken":"feed-1"}}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	err := c.GenerateSession(context.Background(), Credentials{
		ClientCode: "A12345", PIN: "4321", TOTPSecret: testTOTPSecret,
	})
	if err != nil {
		t.Fatalf("GenerateSession: %v", err)
	}
	if !c.LoggedIn() || c.AccessToken() != "jwt-1" || c.FeedToken() != "feed-1" {
		t.Errorf("session not stored: token %q feed %q", c.AccessToken(), c.FeedToken())
	}
	if gotBody["clientcode"] != "A12345" || gotBody["password"] != "4321" {
		t.Errorf("login body = %v", gotBody)
	}
	if len(gotBody["totp"]) != 6 {
		t.Errorf("totp = %q, want a 6-digit code", gotBody["totp"])
	}
}

func TestGenerateSessionRejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":false,"message":"Invalid totp","errorcode":"AB1050","data":null}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	err := c.GenerateSession(context.Background(), Credentials{ClientCode: "A1", PIN: "1", TOTPSecret: testTOTPSecret})
	if err == nil {
		t.Fatal("status=false login reported success")
	}
	if c.LoggedIn() {
		t.Error("failed login left a session behind")
	}
}

func TestLTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != routeLTP {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["exchange"] != "NFO" || body["symboltoken"] != "67890" {
			t.Errorf("ltp body = %v", body)
		}
		w.Write([]byte(`{"status":true,"message":"SUCCESS","errorcode":"","data":{"ltp":145.5}}`))
	}))
	defer srv.Close()

	ltp, err := testClient(srv.URL).LTP(context.Background(), "NFO", "67890")
	if err != nil {
		t.Fatalf("LTP: %v", err)
	}
	if ltp != 145.5 {
		t.Errorf("ltp = %.2f, want 145.5", ltp)
	}
}

func TestPlaceMarketOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["variety"] != "NORMAL" || body["ordertype"] != "MARKET" ||
			body["producttype"] != "INTRADAY" || body["transactiontype"] != "BUY" {
			t.Errorf("order body = %v", body)
		}
		if body["quantity"] != "50" {
			t.Errorf("quantity = %q, want \"50\"", body["quantity"])
		}
		w.Write([]byte(`{"status":true,"message":"SUCCESS","errorcode":"","data":{"orderid":"ORD-77"}}`))
	}))
	defer srv.Close()

	id, err := testClient(srv.URL).PlaceMarketOrder(context.Background(), "NIFTY19850CE", "67890", "NFO", 50)
	if err != nil {
		t.Fatalf("PlaceMarketOrder: %v", err)
	}
	if id != "ORD-77" {
		t.Errorf("order id = %q, want ORD-77", id)
	}
}

func TestPlaceMarketOrderMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":true,"message":"SUCCESS","errorcode":"","data":{}}`))
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).PlaceMarketOrder(context.Background(), "X", "1", "NSE", 1); err == nil {
		t.Fatal("empty order id reported success")
	}
}
