package rates

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
)

// TestProviderFetchAndCache проверяет фильтрацию валют и кеширование ответа.
func TestProviderFetchAndCache(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/latest/EUR" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"base":"EUR","rates":{"EUR":1,"USD":1.1,"LKR":320,"XAU":0.0004}}`))
	}))
	defer server.Close()

	p := NewProvider(server.URL+"/", time.Second, cache.New(10*time.Minute, time.Minute))

	table, err := p.Rates(context.Background(), "eur")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Base != "EUR" || table.Rates["LKR"] != 320 || table.Fallback {
		t.Fatalf("unexpected table %+v", table)
	}
	if _, ok := table.Rates["XAU"]; ok {
		t.Fatal("unsupported currencies must be filtered")
	}

	if _, err := p.Rates(context.Background(), "EUR"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected one api call, got %d", got)
	}
}

// TestProviderFallback проверяет встроенную таблицу при недоступном API.
func TestProviderFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p := NewProvider(server.URL, time.Second, cache.New(time.Minute, time.Minute))

	table, err := p.Rates(context.Background(), "LKR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !table.Fallback || table.Base != "LKR" || table.Rates["LKR"] != 1 {
		t.Fatalf("unexpected fallback table %+v", table)
	}
	if math.Abs(table.Rates["USD"]-1/295.5) > 1e-12 {
		t.Fatalf("expected rebased USD rate, got %v", table.Rates["USD"])
	}

	if _, err := p.Rates(context.Background(), "BTC"); !errors.Is(err, ErrUnsupportedCurrency) {
		t.Fatalf("expected ErrUnsupportedCurrency, got %v", err)
	}
}

// TestProviderLastKnown проверяет возврат последнего удачного ответа после истечения кеша.
func TestProviderLastKnown(t *testing.T) {
	var fail atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"base":"USD","rates":{"USD":1,"EUR":0.9}}`))
	}))
	defer server.Close()

	store := cache.New(time.Minute, time.Minute)
	p := NewProvider(server.URL, time.Second, store)
	if _, err := p.Rates(context.Background(), "USD"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store.Delete("USD")
	fail.Store(true)

	table, err := p.Rates(context.Background(), "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Fallback || table.Rates["EUR"] != 0.9 {
		t.Fatalf("expected last known table, got %+v", table)
	}
}

// TestConvert проверяет пересчет через базовую валюту, округление и запас.
func TestConvert(t *testing.T) {
	table := Table{Base: "USD", Rates: map[string]float64{"USD": 1, "EUR": 0.85, "LKR": 295.5}}

	cases := []struct {
		amount   float64
		from, to string
		buffer   bool
		want     float64
	}{
		{100, "USD", "USD", false, 100},
		{100, "USD", "EUR", false, 85},
		{85, "EUR", "USD", false, 100},
		{100, "EUR", "LKR", false, 34764.71},
		{100, "USD", "EUR", true, 86.7},
	}
	for _, tc := range cases {
		got, err := Convert(tc.amount, tc.from, tc.to, table, tc.buffer)
		if err != nil || got != tc.want {
			t.Fatalf("Convert(%v, %s, %s): expected %v, got %v (%v)", tc.amount, tc.from, tc.to, tc.want, got, err)
		}
	}

	if _, err := Convert(10, "USD", "XXX", table, false); !errors.Is(err, ErrUnsupportedCurrency) {
		t.Fatalf("expected ErrUnsupportedCurrency, got %v", err)
	}
}

// TestConvertPartialTable проверяет валюту, которой нет в ответе API.
func TestConvertPartialTable(t *testing.T) {
	table := Table{Base: "USD", Rates: map[string]float64{"USD": 1, "EUR": 0.85}}

	got, err := Convert(10, "USD", "LKR", table, false)
	if err != nil || got != 2955 {
		t.Fatalf("expected 2955 from built-in LKR rate, got %v (%v)", got, err)
	}

	got, err = Convert(85, "EUR", "GBP", table, false)
	if err != nil || got != 73 {
		t.Fatalf("expected 73 GBP, got %v (%v)", got, err)
	}

	if _, err := Convert(10, "LKR", "USD", Table{Base: "XXX", Rates: map[string]float64{}}, false); !errors.Is(err, ErrUnsupportedCurrency) {
		t.Fatalf("expected ErrUnsupportedCurrency for unknown base, got %v", err)
	}
}

// TestFormat проверяет символы, разряды и целые иены.
func TestFormat(t *testing.T) {
	cases := []struct {
		got, want string
	}{
		{Format(1234.5, "USD"), "$1,234.50"},
		{Format(1234567, "JPY"), "¥1,234,567"},
		{Format(-12, "eur"), "-€12.00"},
		{Format(999, "XYZ"), "XYZ999.00"},
		{Format(295500, "LKR"), "Rs295,500.00"},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, tc.got)
		}
	}

	if FriendlyPrice(12345, "LKR") != 12300 || FriendlyPrice(123, "INR") != 100 || FriendlyPrice(12, "USD") != 10 {
		t.Fatal("unexpected friendly prices")
	}
}
