// internal/app/features/eventreg/eventreg.go

// Package eventreg implements the registration subresource shared by
// training sessions and webinars. The two features differ only in the event
// kind, where the capacity comes from, and the wording of notifications;
// everything else — signup, confirmation with a capacity check, cancellation,
// deletion, and the waiting-list ordering — is identical and lives here once.
package eventreg

import (
	"context"
	"net/http"

	"github.com/dalemusser/memberhub/internal/app/api/body"
	"github.com/dalemusser/memberhub/internal/app/api/listquery"
	"github.com/dalemusser/memberhub/internal/app/api/respond"
	"github.com/dalemusser/memberhub/internal/app/api/router"
	"github.com/dalemusser/memberhub/internal/app/store/audit"
	registrationstore "github.com/dalemusser/memberhub/internal/app/store/registrations"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/dalemusser/memberhub/internal/app/system/effects"
	"github.com/dalemusser/memberhub/internal/app/system/inputval"
	"github.com/dalemusser/memberhub/internal/app/system/webhook"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EventInfo is what the owning feature knows about the event a registration
// belongs to: its display title and its confirmed-seat capacity (0 means
// unlimited). Lookup errors surface unchanged, so a missing event is the
// owning store's NotFound and a cancelled one its Conflict.
type EventInfo struct {
	Title    string
	Capacity int
}

// Sub serves the registration routes for one event kind.
type Sub struct {
	Kind    string
	Regs    *registrationstore.Store
	Effects *effects.Dispatcher
	Log     *zap.Logger

	// Lookup loads the owning event. It must reject cancelled events with a
	// Conflict so no one can sign up for a cancelled session.
	Lookup func(ctx context.Context, eventID primitive.ObjectID) (EventInfo, error)
}

type signupRequest struct {
	FullName string              `json:"full_name"`
	Email    string              `json:"email"`
	MemberID *primitive.ObjectID `json:"member_id"`
}

// ServeList handles GET …/:id/registrations. The status filter is
// recognized; a pending-only page comes back in waiting-list order.
func (s *Sub) ServeList(w http.ResponseWriter, r *http.Request, p router.Params) {
	eventID, err := primitive.ObjectIDFromHex(p["id"])
	if err != nil {
		respond.Err(w, s.Log, apperr.NotFound("registration not found"))
		return
	}
	if _, err := s.Lookup(r.Context(), eventID); err != nil && !apperr.IsKind(err, apperr.KindConflict) {
		respond.Err(w, s.Log, err)
		return
	}

	q := listquery.Parse(r, registrationstore.ListSpec())
	q.Eq("status", query.Get(r, "status"))

	regs, total, err := s.Regs.ListByEvent(r.Context(), s.Kind, eventID, &q)
	if err != nil {
		respond.Err(w, s.Log, err)
		return
	}
	respond.List(w, regs, q.PageOf(total))
}

// ServeCreate handles POST …/:id/registrations, the public signup form. New
// registrations start pending at the back of the waiting list; a capacity
// check happens at confirmation, not here.
func (s *Sub) ServeCreate(w http.ResponseWriter, r *http.Request, p router.Params) {
	eventID, err := primitive.ObjectIDFromHex(p["id"])
	if err != nil {
		respond.Err(w, s.Log, apperr.NotFound("event not found"))
		return
	}
	var req signupRequest
	if err := body.Decode(r, &req); err != nil {
		respond.Err(w, s.Log, err)
		return
	}
	var missing []string
	if req.FullName == "" {
		missing = append(missing, "full_name")
	}
	if req.Email == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		respond.Err(w, s.Log, apperr.Validation(missing...))
		return
	}
	if !inputval.IsValidEmail(req.Email) {
		respond.Err(w, s.Log, apperr.Validationf("invalid email address"))
		return
	}

	info, err := s.Lookup(r.Context(), eventID)
	if err != nil {
		respond.Err(w, s.Log, err)
		return
	}

	rank, err := s.Regs.NextWaitlistRank(r.Context(), s.Kind, eventID)
	if err != nil {
		respond.Err(w, s.Log, err)
		return
	}

	reg, err := s.Regs.Create(r.Context(), models.Registration{
		Kind:         s.Kind,
		EventID:      eventID,
		MemberID:     req.MemberID,
		FullName:     req.FullName,
		Email:        req.Email,
		WaitlistRank: &rank,
	})
	if err != nil {
		respond.Err(w, s.Log, err)
		return
	}

	s.Effects.Dispatch(r.Context(), r, primitive.ObjectID{}, []effects.Effect{
		effects.Audit(audit.EventRegistrationCreated, reg.ID, map[string]string{
			"kind": s.Kind, "event_id": eventID.Hex(), "email": reg.Email,
		}),
		effects.Email(webhook.Notification{
			Type:      webhook.TypeRegistrationPending,
			Recipient: reg.Email,
			Fields:    map[string]string{"full_name": reg.FullName, "event_title": info.Title},
		}),
	})

	respond.Created(w, reg)
}

// ServeConfirm handles POST …/:id/registrations/:rid/confirm. A confirmation
// that would exceed the event's capacity is a Conflict; capacity 0 means
// unlimited. The capacity and the confirmed count load concurrently.
func (s *Sub) ServeConfirm(w http.ResponseWriter, r *http.Request, p router.Params) {
	eventID, regID, ok := s.ids(w, p)
	if !ok {
		return
	}
	admin, ok := auth.CurrentAdmin(r)
	if !ok {
		respond.Err(w, s.Log, apperr.Auth("not authenticated"))
		return
	}

	var (
		info      EventInfo
		confirmed int64
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		info, err = s.Lookup(ctx, eventID)
		return err
	})
	g.Go(func() error {
		var err error
		confirmed, err = s.Regs.CountByStatus(ctx, s.Kind, eventID, models.RegistrationConfirmed)
		return err
	})
	if err := g.Wait(); err != nil {
		respond.Err(w, s.Log, err)
		return
	}
	if info.Capacity > 0 && confirmed >= int64(info.Capacity) {
		respond.Err(w, s.Log, apperr.Conflict("event capacity reached"))
		return
	}

	reg, err := s.Regs.Confirm(r.Context(), s.Kind, eventID, regID)
	if err != nil {
		respond.Err(w, s.Log, err)
		return
	}

	s.Effects.Dispatch(r.Context(), r, admin.ID, []effects.Effect{
		effects.Audit(audit.EventRegistrationConfirmed, reg.ID, map[string]string{
			"kind": s.Kind, "event_id": eventID.Hex(),
		}),
		effects.Email(webhook.Notification{
			Type:      webhook.TypeRegistrationConfirmed,
			Recipient: reg.Email,
			Fields:    map[string]string{"full_name": reg.FullName, "event_title": info.Title},
		}),
	})

	respond.OK(w, reg)
}

// ServeCancel handles POST …/:id/registrations/:rid/cancel.
func (s *Sub) ServeCancel(w http.ResponseWriter, r *http.Request, p router.Params) {
	eventID, regID, ok := s.ids(w, p)
	if !ok {
		return
	}
	admin, ok := auth.CurrentAdmin(r)
	if !ok {
		respond.Err(w, s.Log, apperr.Auth("not authenticated"))
		return
	}

	reg, err := s.Regs.Cancel(r.Context(), s.Kind, eventID, regID)
	if err != nil {
		respond.Err(w, s.Log, err)
		return
	}

	s.Effects.Dispatch(r.Context(), r, admin.ID, []effects.Effect{
		effects.Audit(audit.EventRegistrationCancelled, reg.ID, map[string]string{
			"kind": s.Kind, "event_id": eventID.Hex(),
		}),
	})
	respond.OK(w, reg)
}

// ServeDelete handles DELETE …/:id/registrations/:rid. Registrations are
// leaf records and delete for real.
func (s *Sub) ServeDelete(w http.ResponseWriter, r *http.Request, p router.Params) {
	eventID, regID, ok := s.ids(w, p)
	if !ok {
		return
	}
	admin, ok := auth.CurrentAdmin(r)
	if !ok {
		respond.Err(w, s.Log, apperr.Auth("not authenticated"))
		return
	}

	if err := s.Regs.Delete(r.Context(), s.Kind, eventID, regID); err != nil {
		respond.Err(w, s.Log, err)
		return
	}

	s.Effects.Dispatch(r.Context(), r, admin.ID, []effects.Effect{
		effects.Audit(audit.EventRegistrationDeleted, regID, map[string]string{
			"kind": s.Kind, "event_id": eventID.Hex(),
		}),
	})
	respond.Message(w, "registration deleted")
}

// Routes returns the subresource's route set, to be appended to the owning
// feature's table. List, confirm, cancel, and delete sit behind the caller's
// middleware already; signup is mounted on the public side by the owner.
func (s *Sub) Routes() []router.Route {
	return []router.Route{
		{Methods: "GET", Pattern: ":id/registrations", Handler: s.ServeList},
		{Methods: "POST", Pattern: ":id/registrations/:rid/confirm", Handler: s.ServeConfirm},
		{Methods: "POST", Pattern: ":id/registrations/:rid/cancel", Handler: s.ServeCancel},
		{Methods: "DELETE", Pattern: ":id/registrations/:rid", Handler: s.ServeDelete},
	}
}

func (s *Sub) ids(w http.ResponseWriter, p router.Params) (eventID, regID primitive.ObjectID, ok bool) {
	eventID, err := primitive.ObjectIDFromHex(p["id"])
	if err != nil {
		respond.Err(w, s.Log, apperr.NotFound("registration not found"))
		return eventID, regID, false
	}
	regID, err = primitive.ObjectIDFromHex(p["rid"])
	if err != nil {
		respond.Err(w, s.Log, apperr.NotFound("registration not found"))
		return eventID, regID, false
	}
	return eventID, regID, true
}
