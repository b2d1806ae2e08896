// internal/app/features/dashboard/stats.go
package dashboard

import (
	"net/http"
	"time"

	"github.com/dalemusser/memberhub/internal/app/api/respond"
	"github.com/dalemusser/memberhub/internal/app/api/router"
	"github.com/dalemusser/memberhub/internal/app/store/audit"
	paymentstore "github.com/dalemusser/memberhub/internal/app/store/payments"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// applicationMonths is how far back the monthly application series reaches.
const applicationMonths = 12

// recentActivityLimit caps the audit-trail enrichment.
const recentActivityLimit = 10

type statsResponse struct {
	PendingApplications int64                        `json:"pending_applications"`
	ApprovedMembers     int64                        `json:"approved_members"`
	UpcomingTrainings   int64                        `json:"upcoming_trainings"`
	UpcomingWebinars    int64                        `json:"upcoming_webinars"`
	ActiveAdmins        int64                        `json:"active_admins"`
	ProspectsByStage    map[string]int64             `json:"prospects_by_stage"`
	ApplicationsByMonth map[string]int64             `json:"applications_by_month"`
	DuesByCurrency      []paymentstore.CurrencyTotal `json:"dues_by_currency"`
	RecentActivity      []audit.Event                `json:"recent_activity,omitempty"`
}

// ServeStats handles GET /api/dashboard/stats. The counters are independent
// reads, so they run concurrently; any counter failing fails the request.
// The recent-activity trail is enrichment only: if it cannot be loaded the
// response ships without it.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request, _ router.Params) {
	var (
		out statsResponse
		now = time.Now()
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		out.PendingApplications, err = h.Members.CountByStatus(ctx, models.MemberPending)
		return err
	})
	g.Go(func() (err error) {
		out.ApprovedMembers, err = h.Members.CountByStatus(ctx, models.MemberApproved)
		return err
	})
	g.Go(func() (err error) {
		out.UpcomingTrainings, err = h.Trainings.CountUpcoming(ctx, now)
		return err
	})
	g.Go(func() (err error) {
		out.UpcomingWebinars, err = h.Webinars.CountUpcoming(ctx, now)
		return err
	})
	g.Go(func() (err error) {
		out.ActiveAdmins, err = h.Admins.CountActive(ctx)
		return err
	})
	g.Go(func() (err error) {
		out.ProspectsByStage, err = h.Prospects.CountByStage(ctx)
		return err
	})
	g.Go(func() (err error) {
		out.ApplicationsByMonth, err = h.Members.MonthlyCounts(ctx, applicationMonths)
		return err
	})
	g.Go(func() (err error) {
		out.DuesByCurrency, err = h.Payments.TotalsByCurrency(ctx, models.PaymentDues, time.Time{}, time.Time{})
		return err
	})
	g.Go(func() error {
		events, err := h.Activity.GetRecent(ctx, recentActivityLimit)
		if err != nil {
			h.Log.Warn("recent activity enrichment failed", zap.Error(err))
			return nil
		}
		out.RecentActivity = events
		return nil
	})
	if err := g.Wait(); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.OK(w, out)
}
