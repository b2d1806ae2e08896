// internal/app/system/effects/effects.go

// Package effects makes mutation side effects explicit. A handler builds the
// effect list for a mutation alongside the primary write and hands it to the
// Dispatcher afterwards; the dispatcher routes each effect to the audit log
// or the notification relay. Every effect is best-effort: a failed dispatch
// is logged and never rolls back or re-statuses the primary mutation. The
// list form keeps side effects visible and testable without mocking deep
// call chains.
package effects

import (
	"context"
	"net/http"

	"github.com/dalemusser/memberhub/internal/app/system/auditlog"
	"github.com/dalemusser/memberhub/internal/app/system/webhook"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Kind discriminates the effect payload.
type Kind string

const (
	KindAudit Kind = "audit"
	KindEmail Kind = "email"
)

// Effect is one deferred side effect of a mutation.
type Effect struct {
	Kind         Kind
	EventType    string // audit event type for KindAudit
	TargetID     primitive.ObjectID
	Details      map[string]string
	Notification webhook.Notification // for KindEmail
}

// Audit builds an audit-log effect.
func Audit(eventType string, targetID primitive.ObjectID, details map[string]string) Effect {
	return Effect{Kind: KindAudit, EventType: eventType, TargetID: targetID, Details: details}
}

// Email builds a notification-relay effect.
func Email(n webhook.Notification) Effect {
	return Effect{Kind: KindEmail, Notification: n}
}

// Dispatcher routes effects after the primary write has committed.
type Dispatcher struct {
	Audit   *auditlog.Logger
	Webhook *webhook.Client
	Log     *zap.Logger
}

// Dispatch runs every effect in order. The actor is taken from the request's
// authenticated account when present.
func (d *Dispatcher) Dispatch(ctx context.Context, r *http.Request, actorID primitive.ObjectID, effs []Effect) {
	if d == nil {
		return
	}
	for _, e := range effs {
		switch e.Kind {
		case KindAudit:
			d.Audit.Action(ctx, r, e.EventType, actorID, e.TargetID, e.Details)
		case KindEmail:
			d.Webhook.Send(ctx, e.Notification)
		default:
			if d.Log != nil {
				d.Log.Warn("unknown effect kind", zap.String("kind", string(e.Kind)))
			}
		}
	}
}
