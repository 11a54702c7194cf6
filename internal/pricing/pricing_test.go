package pricing

import (
	"math/rand"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestEffectivePrice(t *testing.T) {
	window := NewSaleWindow(date(2024, 5, 1), date(2024, 5, 31), time.UTC)

	cases := []struct {
		name   string
		base   int64
		rate   int
		window *SaleWindow
		now    time.Time
		want   int64
	}{
		{"no window ignores rate", 10000, 20, nil, time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC), 10000},
		{"inside window", 10000, 20, window, time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC), 8000},
		{"first day midnight", 10000, 20, window, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), 8000},
		{"last day late evening", 10000, 20, window, time.Date(2024, 5, 31, 23, 59, 59, 0, time.UTC), 8000},
		{"day after end", 10000, 20, window, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 10000},
		{"before start", 10000, 20, window, time.Date(2024, 4, 30, 23, 59, 59, 0, time.UTC), 10000},
		{"floors fractional result", 9999, 15, window, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), 8499},
		{"floors small price", 1, 50, window, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), 0},
		{"zero rate", 12345, 0, window, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), 12345},
		{"full discount", 12345, 100, window, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), 0},
		{"rate above range clamps", 12345, 150, window, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), 0},
		{"negative rate clamps", 12345, -5, window, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), 12345},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EffectivePrice(tc.base, tc.rate, tc.window, tc.now)
			if got != tc.want {
				t.Fatalf("EffectivePrice(%d, %d) = %d, want %d", tc.base, tc.rate, got, tc.want)
			}
		})
	}
}

func TestNewSaleWindow_RequiresBothDates(t *testing.T) {
	if w := NewSaleWindow(date(2024, 1, 1), nil, time.UTC); w != nil {
		t.Fatalf("expected nil window without end date, got %+v", w)
	}
	if w := NewSaleWindow(nil, date(2024, 1, 1), time.UTC); w != nil {
		t.Fatalf("expected nil window without start date, got %+v", w)
	}
}

func TestSaleWindow_UsesStoreLocation(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	w := NewSaleWindow(date(2024, 5, 1), date(2024, 5, 1), seoul)

	// 2024-05-01 20:00 UTC is already 2024-05-02 in Seoul.
	if w.Contains(time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)) {
		t.Fatalf("window should have closed in store location")
	}
	// 2024-04-30 16:00 UTC is 2024-05-01 01:00 in Seoul.
	if !w.Contains(time.Date(2024, 4, 30, 16, 0, 0, 0, time.UTC)) {
		t.Fatalf("window should be open in store location")
	}
}

func TestEffectivePrice_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	window := NewSaleWindow(&start, &end, time.UTC)

	for i := 0; i < 2000; i++ {
		base := rng.Int63n(10_000_000)
		rate := rng.Intn(101)
		now := start.AddDate(0, 0, rng.Intn(60)-20).Add(time.Duration(rng.Intn(86400)) * time.Second)

		if got := EffectivePrice(base, rate, nil, now); got != base {
			t.Fatalf("no window: base=%d rate=%d got %d", base, rate, got)
		}

		got := EffectivePrice(base, rate, window, now)
		if window.Contains(now) {
			want := base * int64(100-rate) / 100
			if got != want {
				t.Fatalf("in window: base=%d rate=%d now=%s got %d want %d", base, rate, now, got, want)
			}
		} else if got != base {
			t.Fatalf("outside window: base=%d rate=%d now=%s got %d", base, rate, now, got)
		}
		if got > base || got < 0 {
			t.Fatalf("price out of bounds: base=%d got=%d", base, got)
		}
	}
}

func TestTotal(t *testing.T) {
	lines := []Line{{UnitPrice: 8000, Quantity: 2}, {UnitPrice: 1999, Quantity: 3}}
	if got := Total(lines); got != 16000+5997 {
		t.Fatalf("Total = %d", got)
	}
	if got := Total(nil); got != 0 {
		t.Fatalf("Total(nil) = %d", got)
	}
}
