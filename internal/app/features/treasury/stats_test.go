package treasury

import (
	"testing"
	"time"

	paymentstore "github.com/dalemusser/memberhub/internal/app/store/payments"
	"go.uber.org/zap"
)

func newTestHandler(rates map[string]float64) *Handler {
	return NewHandler(nil, rates, nil, zap.NewNop())
}

func TestToReporting(t *testing.T) {
	h := newTestHandler(map[string]float64{"USD": 0.92, "GBP": 1.17})

	if got, ok := h.toReporting(10000, "EUR"); !ok || got != 10000 {
		t.Errorf("EUR = (%d, %v)", got, ok)
	}
	if got, ok := h.toReporting(10000, "USD"); !ok || got != 9200 {
		t.Errorf("USD = (%d, %v)", got, ok)
	}
	// Rounds to the nearest cent.
	if got, ok := h.toReporting(333, "USD"); !ok || got != 306 {
		t.Errorf("USD rounding = (%d, %v)", got, ok)
	}
	if got, ok := h.toReporting(10000, "CHF"); ok || got != 0 {
		t.Errorf("unconfigured currency = (%d, %v)", got, ok)
	}
}

func TestNewHandler_PinsEUR(t *testing.T) {
	h := newTestHandler(nil)
	if h.Rates["EUR"] != 1 {
		t.Errorf("EUR rate = %v, want pinned 1", h.Rates["EUR"])
	}
}

func TestSumEUR(t *testing.T) {
	h := newTestHandler(map[string]float64{"USD": 0.5})
	totals := []paymentstore.CurrencyTotal{
		{Currency: "EUR", TotalCents: 10000, Count: 2},
		{Currency: "USD", TotalCents: 4000, Count: 1},
		{Currency: "CHF", TotalCents: 99999, Count: 3}, // no rate, excluded
	}
	if got := h.sumEUR(totals); got != 12000 {
		t.Errorf("sumEUR = %d, want 12000", got)
	}
}

func TestBreakdown(t *testing.T) {
	h := newTestHandler(map[string]float64{"USD": 0.5})
	out := h.breakdown([]paymentstore.CurrencyTotal{
		{Currency: "USD", TotalCents: 4000, Count: 4},
		{Currency: "CHF", TotalCents: 700, Count: 1},
	})

	if len(out) != 2 {
		t.Fatalf("breakdown rows = %d", len(out))
	}
	if out[0].EURCents != 2000 || !out[0].Convertible {
		t.Errorf("USD row = %+v", out[0])
	}
	if out[1].EURCents != 0 || out[1].Convertible {
		t.Errorf("CHF row should be listed but unconvertible: %+v", out[1])
	}
	if out[1].TotalCents != 700 {
		t.Errorf("original amount must survive: %+v", out[1])
	}
}

func TestMonthlySeries_Gapless(t *testing.T) {
	h := newTestHandler(map[string]float64{"USD": 0.5})
	now := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)

	series := h.monthlySeries([]paymentstore.MonthlyTotal{
		{Month: "2026-08", Currency: "EUR", TotalCents: 5000, Count: 2},
		{Month: "2026-08", Currency: "USD", TotalCents: 2000, Count: 1},
		{Month: "2026-03", Currency: "EUR", TotalCents: 1000, Count: 1},
		{Month: "2020-01", Currency: "EUR", TotalCents: 77777, Count: 9}, // outside window
	}, now)

	if len(series) != evolutionMonths {
		t.Fatalf("series length = %d", len(series))
	}
	if series[0].Month != "2025-09" || series[len(series)-1].Month != "2026-08" {
		t.Errorf("window = %s .. %s", series[0].Month, series[len(series)-1].Month)
	}

	last := series[len(series)-1]
	if last.EURCents != 6000 || last.Count != 3 {
		t.Errorf("current month folds currencies: %+v", last)
	}

	var march MonthPoint
	for _, p := range series {
		if p.Month == "2026-03" {
			march = p
		}
	}
	if march.EURCents != 1000 || march.Count != 1 {
		t.Errorf("march = %+v", march)
	}

	// Empty months are present with zeros.
	var empties int
	for _, p := range series {
		if p.EURCents == 0 && p.Count == 0 {
			empties++
		}
	}
	if empties != evolutionMonths-2 {
		t.Errorf("empty months = %d, want %d", empties, evolutionMonths-2)
	}
}

func TestGrowthRate(t *testing.T) {
	mk := func(prev, cur int64) []MonthPoint {
		return []MonthPoint{{EURCents: prev}, {EURCents: cur}}
	}

	if got := growthRate(mk(10000, 15000)); got != 50 {
		t.Errorf("50%% growth = %v", got)
	}
	if got := growthRate(mk(10000, 5000)); got != -50 {
		t.Errorf("-50%% growth = %v", got)
	}
	if got := growthRate(mk(0, 5000)); got != 100 {
		t.Errorf("growth from zero = %v", got)
	}
	if got := growthRate(mk(0, 0)); got != 0 {
		t.Errorf("flat zero = %v", got)
	}
	if got := growthRate([]MonthPoint{{EURCents: 100}}); got != 0 {
		t.Errorf("single point = %v", got)
	}
}
