// internal/app/features/treasury/handler.go

// Package treasury serves payment records and the treasury statistics.
// Every route sits behind the manage-treasury permission.
package treasury

import (
	"math"

	paymentstore "github.com/dalemusser/memberhub/internal/app/store/payments"
	"github.com/dalemusser/memberhub/internal/app/system/effects"
	"go.uber.org/zap"
)

type Handler struct {
	Payments *paymentstore.Store
	Effects  *effects.Dispatcher
	Log      *zap.Logger

	// Rates maps ISO 4217 currency codes to their value in the reporting
	// currency (EUR per unit; EUR itself is 1). Payments in currencies with
	// no configured rate are listed but excluded from converted totals.
	Rates map[string]float64
}

// NewHandler constructs the treasury feature handler.
func NewHandler(payments *paymentstore.Store, rates map[string]float64, disp *effects.Dispatcher, logger *zap.Logger) *Handler {
	if rates == nil {
		rates = map[string]float64{}
	}
	if _, ok := rates["EUR"]; !ok {
		rates["EUR"] = 1
	}
	return &Handler{
		Payments: payments,
		Effects:  disp,
		Log:      logger,
		Rates:    rates,
	}
}

// toReporting converts an amount to EUR cents. The second return reports
// whether a rate was configured for the currency.
func (h *Handler) toReporting(cents int64, currency string) (int64, bool) {
	rate, ok := h.Rates[currency]
	if !ok {
		return 0, false
	}
	return int64(math.Round(float64(cents) * rate)), true
}
