// internal/app/features/dashboard/handler.go

// Package dashboard serves the aggregate counters the portal's landing page
// renders: open applications, member totals, upcoming events, recruitment
// pipeline, dues totals, and a monthly application series, enriched with the
// most recent audit activity.
package dashboard

import (
	adminstore "github.com/dalemusser/memberhub/internal/app/store/admins"
	"github.com/dalemusser/memberhub/internal/app/store/audit"
	memberstore "github.com/dalemusser/memberhub/internal/app/store/members"
	paymentstore "github.com/dalemusser/memberhub/internal/app/store/payments"
	prospectstore "github.com/dalemusser/memberhub/internal/app/store/prospects"
	trainingstore "github.com/dalemusser/memberhub/internal/app/store/trainings"
	webinarstore "github.com/dalemusser/memberhub/internal/app/store/webinars"
	"go.uber.org/zap"
)

type Handler struct {
	Members   *memberstore.Store
	Trainings *trainingstore.Store
	Webinars  *webinarstore.Store
	Prospects *prospectstore.Store
	Admins    *adminstore.Store
	Payments  *paymentstore.Store
	Activity  *audit.Store
	Log       *zap.Logger
}

// NewHandler constructs the dashboard feature handler.
func NewHandler(
	members *memberstore.Store,
	trainings *trainingstore.Store,
	webinars *webinarstore.Store,
	prospects *prospectstore.Store,
	admins *adminstore.Store,
	payments *paymentstore.Store,
	activity *audit.Store,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Members:   members,
		Trainings: trainings,
		Webinars:  webinars,
		Prospects: prospects,
		Admins:    admins,
		Payments:  payments,
		Activity:  activity,
		Log:       logger,
	}
}
