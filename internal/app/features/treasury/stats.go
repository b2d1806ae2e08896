// internal/app/features/treasury/stats.go
package treasury

import (
	"net/http"
	"time"

	"github.com/dalemusser/memberhub/internal/app/api/respond"
	"github.com/dalemusser/memberhub/internal/app/api/router"
	paymentstore "github.com/dalemusser/memberhub/internal/app/store/payments"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"golang.org/x/sync/errgroup"
)

// evolutionMonths is the trailing window of the monthly evolution series.
const evolutionMonths = 12

// CurrencyBreakdown is one currency's slice of the treasury, with the
// converted amount when a rate is configured.
type CurrencyBreakdown struct {
	Currency    string `json:"currency"`
	TotalCents  int64  `json:"total_cents"`
	Count       int64  `json:"count"`
	EURCents    int64  `json:"eur_cents"`
	Convertible bool   `json:"convertible"`
}

// MonthPoint is one month of the evolution series, in the reporting
// currency. Months with no payments appear with zeros so the series is a
// gapless 12-point window.
type MonthPoint struct {
	Month    string `json:"month"` // "2026-08"
	EURCents int64  `json:"eur_cents"`
	Count    int64  `json:"count"`
}

type statsResponse struct {
	TotalEURCents    int64               `json:"total_eur_cents"`
	DuesEURCents     int64               `json:"dues_eur_cents"`
	DonationEURCents int64               `json:"donation_eur_cents"`
	OtherEURCents    int64               `json:"other_eur_cents"`
	ByCurrency       []CurrencyBreakdown `json:"by_currency"`
	Monthly          []MonthPoint        `json:"monthly"`
	GrowthRatePct    float64             `json:"growth_rate_pct"`
	DuesPayers       int64               `json:"dues_payers"`
}

// ServeStats handles GET /api/treasury/stats. The aggregates load
// concurrently; amounts convert to EUR at the configured rates, and
// currencies without a rate are reported but left out of the converted
// totals.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request, _ router.Params) {
	var (
		overall    []paymentstore.CurrencyTotal
		dues       []paymentstore.CurrencyTotal
		donations  []paymentstore.CurrencyTotal
		monthly    []paymentstore.MonthlyTotal
		duesPayers int64
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		overall, err = h.Payments.TotalsByCurrency(ctx, "", time.Time{}, time.Time{})
		return err
	})
	g.Go(func() error {
		var err error
		dues, err = h.Payments.TotalsByCurrency(ctx, models.PaymentDues, time.Time{}, time.Time{})
		return err
	})
	g.Go(func() error {
		var err error
		donations, err = h.Payments.TotalsByCurrency(ctx, models.PaymentDonation, time.Time{}, time.Time{})
		return err
	})
	g.Go(func() error {
		var err error
		monthly, err = h.Payments.MonthlyTotals(ctx, evolutionMonths)
		return err
	})
	g.Go(func() error {
		var err error
		duesPayers, err = h.Payments.DuesPayerCount(ctx, time.Time{}, time.Time{})
		return err
	})
	if err := g.Wait(); err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	resp := statsResponse{
		TotalEURCents:    h.sumEUR(overall),
		DuesEURCents:     h.sumEUR(dues),
		DonationEURCents: h.sumEUR(donations),
		Monthly:          h.monthlySeries(monthly, time.Now().UTC()),
		DuesPayers:       duesPayers,
	}
	resp.OtherEURCents = resp.TotalEURCents - resp.DuesEURCents - resp.DonationEURCents
	resp.ByCurrency = h.breakdown(overall)
	resp.GrowthRatePct = growthRate(resp.Monthly)

	respond.OK(w, resp)
}

func (h *Handler) sumEUR(totals []paymentstore.CurrencyTotal) int64 {
	var sum int64
	for _, t := range totals {
		if eur, ok := h.toReporting(t.TotalCents, t.Currency); ok {
			sum += eur
		}
	}
	return sum
}

func (h *Handler) breakdown(totals []paymentstore.CurrencyTotal) []CurrencyBreakdown {
	out := make([]CurrencyBreakdown, 0, len(totals))
	for _, t := range totals {
		eur, ok := h.toReporting(t.TotalCents, t.Currency)
		out = append(out, CurrencyBreakdown{
			Currency:    t.Currency,
			TotalCents:  t.TotalCents,
			Count:       t.Count,
			EURCents:    eur,
			Convertible: ok,
		})
	}
	return out
}

// monthlySeries folds the per-currency month buckets into one gapless
// 12-point EUR series ending at the current month.
func (h *Handler) monthlySeries(totals []paymentstore.MonthlyTotal, now time.Time) []MonthPoint {
	byMonth := make(map[string]*MonthPoint, evolutionMonths)
	series := make([]MonthPoint, evolutionMonths)
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(evolutionMonths - 1), 0)
	for i := range series {
		month := start.AddDate(0, i, 0).Format("2006-01")
		series[i] = MonthPoint{Month: month}
		byMonth[month] = &series[i]
	}

	for _, t := range totals {
		point, ok := byMonth[t.Month]
		if !ok {
			continue
		}
		if eur, convertible := h.toReporting(t.TotalCents, t.Currency); convertible {
			point.EURCents += eur
		}
		point.Count += t.Count
	}
	return series
}

// growthRate compares the latest month against the one before it, in
// percent. A zero previous month reports 0 when the latest is also zero and
// 100 otherwise.
func growthRate(series []MonthPoint) float64 {
	if len(series) < 2 {
		return 0
	}
	cur := series[len(series)-1].EURCents
	prev := series[len(series)-2].EURCents
	if prev == 0 {
		if cur == 0 {
			return 0
		}
		return 100
	}
	return float64(cur-prev) / float64(prev) * 100
}
