package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SuperAdmin returns an in-memory superadmin account for handler tests.
func SuperAdmin() *models.AdminUser {
	return &models.AdminUser{
		ID:       primitive.NewObjectID(),
		FullName: "Test Superadmin",
		Email:    "super@test.com",
		Role:     models.RoleSuperAdmin,
		Permissions: models.Permissions{
			ManageTreasury: true,
			ManageAdmins:   true,
		},
		Status: models.AdminActive,
	}
}

// Admin returns an in-memory admin account with no extra permissions.
func Admin() *models.AdminUser {
	return &models.AdminUser{
		ID:       primitive.NewObjectID(),
		FullName: "Test Admin",
		Email:    "admin@test.com",
		Role:     models.RoleAdmin,
		Status:   models.AdminActive,
	}
}

// Treasurer returns an in-memory treasurer account.
func Treasurer() *models.AdminUser {
	return &models.AdminUser{
		ID:       primitive.NewObjectID(),
		FullName: "Test Treasurer",
		Email:    "treasurer@test.com",
		Role:     models.RoleTreasurer,
		Status:   models.AdminActive,
	}
}

// NewRequest creates an HTTP request for testing. A non-empty body is sent
// as JSON.
func NewRequest(method, target, body string) *http.Request {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// NewAuthenticatedRequest creates an HTTP request with an admin account in
// context, bypassing the token middleware.
func NewAuthenticatedRequest(method, target, body string, a *models.AdminUser) *http.Request {
	return auth.WithAdmin(NewRequest(method, target, body), a)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d", r.Code, expected)
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}
