package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeFetcher struct {
	admins map[string]*models.AdminUser
}

func (f *fakeFetcher) FetchAdmin(ctx context.Context, idHex string) (*models.AdminUser, error) {
	if a, ok := f.admins[idHex]; ok {
		return a, nil
	}
	return nil, errors.New("not found")
}

func activeAdmin() *models.AdminUser {
	return &models.AdminUser{
		ID:       primitive.NewObjectID(),
		FullName: "Grace Hopper",
		Email:    "grace@example.com",
		Role:     models.RoleAdmin,
		Status:   models.AdminActive,
	}
}

func TestTokens_IssueVerify(t *testing.T) {
	tokens, err := auth.NewTokens(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokens failed: %v", err)
	}
	a := activeAdmin()

	signed, exp, err := tokens.Issue(a)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if until := time.Until(exp); until < 59*time.Minute || until > time.Hour {
		t.Errorf("expiry %v not about an hour out", exp)
	}

	claims, err := tokens.Verify(signed)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Subject != a.ID.Hex() {
		t.Errorf("subject = %q", claims.Subject)
	}
	if claims.Role != models.RoleAdmin {
		t.Errorf("role = %q", claims.Role)
	}
	if claims.ID == "" {
		t.Error("token id should be set")
	}
}

func TestTokens_RejectsWrongSecret(t *testing.T) {
	issuer, _ := auth.NewTokens(testSecret, time.Hour)
	verifier, _ := auth.NewTokens("another-secret-another-secret-32", time.Hour)

	signed, _, err := issuer.Issue(activeAdmin())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := verifier.Verify(signed); err == nil {
		t.Error("token signed with a different secret should not verify")
	}
}

func TestTokens_RejectsExpired(t *testing.T) {
	tokens, _ := auth.NewTokens(testSecret, time.Nanosecond)
	signed, _, err := tokens.Issue(activeAdmin())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := tokens.Verify(signed); err == nil {
		t.Error("expired token should not verify")
	}
}

func TestNewTokens_EmptySecret(t *testing.T) {
	if _, err := auth.NewTokens("", time.Hour); err == nil {
		t.Error("empty secret should be rejected")
	}
}

func TestReadBearer(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	if got := auth.ReadBearer(r); got != "" {
		t.Errorf("no header should read empty, got %q", got)
	}

	r.Header.Set("Authorization", "Bearer abc.def.ghi")
	if got := auth.ReadBearer(r); got != "abc.def.ghi" {
		t.Errorf("token = %q", got)
	}

	r.Header.Set("Authorization", "bearer lower.case.ok")
	if got := auth.ReadBearer(r); got != "lower.case.ok" {
		t.Errorf("scheme should be case-insensitive, got %q", got)
	}

	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	if got := auth.ReadBearer(r); got != "" {
		t.Errorf("non-bearer scheme should read empty, got %q", got)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if err := auth.CheckPassword(hash, "correct horse battery staple"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := auth.CheckPassword(hash, "wrong"); err == nil {
		t.Error("wrong password accepted")
	}
}

func TestAccountUsable(t *testing.T) {
	now := time.Now()

	a := activeAdmin()
	if err := auth.AccountUsable(a, now); err != nil {
		t.Errorf("active account rejected: %v", err)
	}

	a.Status = models.AdminDisabled
	if err := auth.AccountUsable(a, now); !apperr.IsKind(err, apperr.KindAuth) {
		t.Errorf("disabled account: got %v", err)
	}

	a = activeAdmin()
	until := now.Add(time.Hour)
	a.SuspendedUntil = &until
	if err := auth.AccountUsable(a, now); !apperr.IsKind(err, apperr.KindSuspended) {
		t.Errorf("suspended account: got %v", err)
	}

	// Expired suspension counts as active even before the field is cleared.
	past := now.Add(-time.Hour)
	a.SuspendedUntil = &past
	if err := auth.AccountUsable(a, now); err != nil {
		t.Errorf("lapsed suspension rejected: %v", err)
	}
}

func okHandler(hit *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hit = true
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireAuth(t *testing.T) {
	tokens, _ := auth.NewTokens(testSecret, time.Hour)
	a := activeAdmin()
	fetcher := &fakeFetcher{admins: map[string]*models.AdminUser{a.ID.Hex(): a}}
	mw := auth.NewMiddleware(tokens, fetcher, zap.NewNop())

	var hit bool
	var seen *models.AdminUser
	h := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
		seen, _ = auth.CurrentAdmin(r)
	}))

	// No token
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized || hit {
		t.Fatalf("missing token: status = %d, hit = %v", rec.Code, hit)
	}

	// Garbage token
	rec = httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer not.a.token")
	h.ServeHTTP(rec, r)
	if rec.Code != http.StatusUnauthorized || hit {
		t.Fatalf("garbage token: status = %d, hit = %v", rec.Code, hit)
	}

	// Valid token
	signed, _, err := tokens.Issue(a)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	rec = httptest.NewRecorder()
	r = httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+signed)
	h.ServeHTTP(rec, r)
	if !hit {
		t.Fatal("valid token should reach the handler")
	}
	if seen == nil || seen.ID != a.ID {
		t.Error("handler should see the fetched account in context")
	}
}

func TestRequireAuth_AccountGone(t *testing.T) {
	tokens, _ := auth.NewTokens(testSecret, time.Hour)
	a := activeAdmin()
	mw := auth.NewMiddleware(tokens, &fakeFetcher{admins: map[string]*models.AdminUser{}}, zap.NewNop())

	signed, _, _ := tokens.Issue(a)
	var hit bool
	h := mw.RequireAuth(okHandler(&hit))

	rec := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+signed)
	h.ServeHTTP(rec, r)

	if rec.Code != http.StatusUnauthorized || hit {
		t.Errorf("deleted account: status = %d, hit = %v", rec.Code, hit)
	}
}

func TestRequireAuth_Suspended(t *testing.T) {
	tokens, _ := auth.NewTokens(testSecret, time.Hour)
	a := activeAdmin()
	until := time.Now().Add(2 * time.Hour)
	a.SuspendedUntil = &until
	fetcher := &fakeFetcher{admins: map[string]*models.AdminUser{a.ID.Hex(): a}}
	mw := auth.NewMiddleware(tokens, fetcher, zap.NewNop())

	signed, _, _ := tokens.Issue(a)
	var hit bool
	h := mw.RequireAuth(okHandler(&hit))

	rec := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+signed)
	h.ServeHTTP(rec, r)

	if rec.Code != http.StatusLocked || hit {
		t.Errorf("suspended account: status = %d, hit = %v", rec.Code, hit)
	}
}

func TestRequireRole(t *testing.T) {
	mw := auth.NewMiddleware(nil, nil, zap.NewNop())
	gate := mw.RequireRole(models.RoleSuperAdmin, models.RoleTreasurer)

	var hit bool
	h := gate(okHandler(&hit))

	a := activeAdmin()
	a.Role = models.RoleTreasurer
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, auth.WithAdmin(httptest.NewRequest("GET", "/", nil), a))
	if !hit {
		t.Error("treasurer should pass")
	}

	hit = false
	a.Role = models.RoleSecretary
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, auth.WithAdmin(httptest.NewRequest("GET", "/", nil), a))
	if rec.Code != http.StatusForbidden || hit {
		t.Errorf("secretary: status = %d, hit = %v", rec.Code, hit)
	}

	// Not authenticated at all
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated: status = %d", rec.Code)
	}
}

func TestRequirePermission(t *testing.T) {
	mw := auth.NewMiddleware(nil, nil, zap.NewNop())
	gate := mw.RequirePermission((*models.AdminUser).CanManageTreasury, "treasury")

	var hit bool
	h := gate(okHandler(&hit))

	a := activeAdmin()
	a.Role = models.RoleSecretary
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, auth.WithAdmin(httptest.NewRequest("GET", "/", nil), a))
	if rec.Code != http.StatusForbidden || hit {
		t.Errorf("secretary without grant: status = %d, hit = %v", rec.Code, hit)
	}

	a.Permissions.ManageTreasury = true
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, auth.WithAdmin(httptest.NewRequest("GET", "/", nil), a))
	if !hit {
		t.Error("explicit grant should pass")
	}
}
