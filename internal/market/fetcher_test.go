package market

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rickgao/upbit-ticker/internal/api"
	"github.com/rickgao/upbit-ticker/internal/model"
)

// catalogServer serves body from /market/all with the given status.
func catalogServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/market/all" {
			t.Errorf("path = %q, want %q", r.URL.Path, "/market/all")
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestFetcher(server *httptest.Server, opts ...FetcherOption) *Fetcher {
	client := api.NewClient(server.URL, api.WithRetries(0, time.Millisecond))
	return NewFetcher(client, opts...)
}

func TestFetcher_FetchSubscription_SingleMarket(t *testing.T) {
	server := catalogServer(t, http.StatusOK,
		`[{"market":"KRW-BTC","korean_name":"비트코인","english_name":"Bitcoin"}]`)

	got, err := newTestFetcher(server).FetchSubscription(context.Background())
	if err != nil {
		t.Fatalf("FetchSubscription failed: %v", err)
	}

	if !strings.Contains(got, `"codes":["KRW-BTC"]`) {
		t.Errorf("subscription = %q, want it to contain %q", got, `"codes":["KRW-BTC"]`)
	}
	want := `[{"ticket":"550e8400-e29b-41d4-a716-446655440000"},{"type":"ticker","codes":["KRW-BTC"]}]`
	if got != want {
		t.Errorf("subscription = %q, want %q", got, want)
	}
}

func TestFetcher_FetchSubscription_AllMarketsInOrder(t *testing.T) {
	server := catalogServer(t, http.StatusOK, `[
		{"market":"KRW-BTC","korean_name":"비트코인","english_name":"Bitcoin"},
		{"market":"BTC-ETH","korean_name":"이더리움","english_name":"Ethereum"},
		{"market":"KRW-ETH","korean_name":"이더리움","english_name":"Ethereum"}
	]`)

	got, err := newTestFetcher(server, WithTicket("abc")).FetchSubscription(context.Background())
	if err != nil {
		t.Fatalf("FetchSubscription failed: %v", err)
	}

	want := `[{"ticket":"abc"},{"type":"ticker","codes":["KRW-BTC","BTC-ETH","KRW-ETH"]}]`
	if got != want {
		t.Errorf("subscription = %q, want %q", got, want)
	}
}

func TestFetcher_FetchCodes_QuoteFilter(t *testing.T) {
	server := catalogServer(t, http.StatusOK, `[
		{"market":"KRW-BTC","korean_name":"비트코인","english_name":"Bitcoin"},
		{"market":"BTC-ETH","korean_name":"이더리움","english_name":"Ethereum"},
		{"market":"KRW-ETH","korean_name":"이더리움","english_name":"Ethereum"}
	]`)
	f := newTestFetcher(server)

	codes, err := f.FetchCodes(context.Background(), "krw")
	if err != nil {
		t.Fatalf("FetchCodes failed: %v", err)
	}
	if len(codes) != 2 || codes[0] != "KRW-BTC" || codes[1] != "KRW-ETH" {
		t.Errorf("codes = %v, want [KRW-BTC KRW-ETH]", codes)
	}

	_, err = f.FetchCodes(context.Background(), "USDT")
	if !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("FetchCodes(USDT) error = %v, want ErrEmptyCatalog", err)
	}
}

func TestFetcher_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			body:    `{"error":{"name":"server_error","message":"boom"}}`,
			wantErr: "upbit api error 500",
		},
		{
			name:    "schema mismatch",
			status:  http.StatusOK,
			body:    `{"markets":[]}`,
			wantErr: "unmarshal response",
		},
		{
			name:    "empty catalog",
			status:  http.StatusOK,
			body:    `[]`,
			wantErr: "market catalog is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := catalogServer(t, tt.status, tt.body)
			_, err := newTestFetcher(server).FetchSubscription(context.Background())
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

// staticSource is an in-memory Source.
type staticSource []model.MarketDescriptor

func (s staticSource) GetAllMarkets(ctx context.Context) ([]model.MarketDescriptor, error) {
	return s, nil
}

func TestFetcher_FetchSubscriptionRequest_ChannelType(t *testing.T) {
	f := NewFetcher(staticSource{{Market: "KRW-BTC"}}, WithChannelType("trade"))

	req, err := f.FetchSubscriptionRequest(context.Background())
	if err != nil {
		t.Fatalf("FetchSubscriptionRequest failed: %v", err)
	}
	if req.Type != "trade" {
		t.Errorf("Type = %q, want %q", req.Type, "trade")
	}
	if req.Ticket != CatalogTicket {
		t.Errorf("Ticket = %q, want %q", req.Ticket, CatalogTicket)
	}
}

func TestFetcher_FetchSubscriptionRequest_Quote(t *testing.T) {
	f := NewFetcher(staticSource{{Market: "KRW-BTC"}, {Market: "BTC-ETH"}, {Market: "KRW-ETH"}}, WithQuote("BTC"))

	req, err := f.FetchSubscriptionRequest(context.Background())
	if err != nil {
		t.Fatalf("FetchSubscriptionRequest failed: %v", err)
	}
	if len(req.Codes) != 1 || req.Codes[0] != "BTC-ETH" {
		t.Errorf("Codes = %v, want [BTC-ETH]", req.Codes)
	}

	_, err = NewFetcher(staticSource{{Market: "KRW-BTC"}}, WithQuote("USDT")).FetchSubscriptionRequest(context.Background())
	if !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("error = %v, want ErrEmptyCatalog", err)
	}
}

func TestCatalog(t *testing.T) {
	c := NewCatalog([]model.MarketDescriptor{
		{Market: "KRW-BTC", KoreanName: "비트코인"},
		{Market: ""},
		{Market: "KRW-BTC", KoreanName: "duplicate"},
		{Market: "BTC-XRP", KoreanName: "리플"},
	})

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}

	m, ok := c.Get("KRW-BTC")
	if !ok {
		t.Fatal("KRW-BTC not found")
	}
	if m.KoreanName != "비트코인" {
		t.Errorf("KoreanName = %q, want first occurrence %q", m.KoreanName, "비트코인")
	}

	if _, ok := c.Get("KRW-DOGE"); ok {
		t.Error("expected KRW-DOGE not found")
	}

	if got := c.Codes(""); len(got) != 2 {
		t.Errorf("Codes(\"\") = %v, want 2 codes", got)
	}
	if got := c.Codes("BTC"); len(got) != 1 || got[0] != "BTC-XRP" {
		t.Errorf("Codes(BTC) = %v, want [BTC-XRP]", got)
	}

	// Markets returns a copy.
	markets := c.Markets()
	markets[0].Market = "mutated"
	if _, ok := c.Get("KRW-BTC"); !ok {
		t.Error("catalog mutated through Markets()")
	}
}
