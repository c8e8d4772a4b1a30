package pricefeed

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestParseAvgPrice(t *testing.T) {
	price, err := ParseAvgPrice([]byte(`{"mins":5,"price":"3123.45000000"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := new(big.Rat).SetFrac64(312345, 100)
	if price.Cmp(want) != 0 {
		t.Fatalf("price = %s, want %s", price.FloatString(2), want.FloatString(2))
	}
}

func TestParseAvgPriceRejectsBadPayloads(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"empty price", `{"mins":5,"price":""}`},
		{"missing price", `{"mins":5}`},
		{"garbage price", `{"mins":5,"price":"not-a-number"}`},
		{"zero price", `{"mins":5,"price":"0"}`},
		{"not json", `oops`},
	}
	for _, tc := range cases {
		if _, err := ParseAvgPrice([]byte(tc.body)); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestStablecoinsArePinned(t *testing.T) {
	client := NewClientWithBaseURL("http://unused.invalid", zap.NewNop())
	one := big.NewRat(1, 1)

	for _, symbol := range []string{"USDT", "usdc", "Usdt"} {
		price, err := client.USDPrice(context.Background(), symbol)
		if err != nil {
			t.Fatalf("%s: %v", symbol, err)
		}
		if price.Cmp(one) != 0 {
			t.Fatalf("%s price = %s, want 1", symbol, price.FloatString(2))
		}
	}
}

func TestWETHQuotedAsETH(t *testing.T) {
	var gotSymbol string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSymbol = r.URL.Query().Get("symbol")
		w.Write([]byte(`{"mins":5,"price":"2500.00000000"}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, zap.NewNop())
	price, err := client.USDPrice(context.Background(), "WETH")
	if err != nil {
		t.Fatalf("usd price: %v", err)
	}
	if gotSymbol != "ETHUSDT" {
		t.Fatalf("requested pair = %s, want ETHUSDT", gotSymbol)
	}
	if price.Cmp(big.NewRat(2500, 1)) != 0 {
		t.Fatalf("price = %s, want 2500", price.FloatString(2))
	}
}

func TestUSDPriceSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":-1121,"msg":"Invalid symbol."}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, zap.NewNop())
	if _, err := client.USDPrice(context.Background(), "NOPE"); err == nil {
		t.Fatalf("expected error for invalid symbol")
	}
}
