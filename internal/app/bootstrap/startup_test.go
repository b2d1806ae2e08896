package bootstrap

import (
	"testing"

	"github.com/dalemusser/memberhub/internal/domain/models"
	"github.com/dalemusser/memberhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func TestStartup_SeedsSuperAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}
	appCfg := AppConfig{
		SuperAdminEmail:    "boot@test.com",
		SuperAdminPassword: "a-strong-password",
	}

	if err := Startup(ctx, nil, appCfg, deps, testLogger()); err != nil {
		t.Fatalf("Startup failed: %v", err)
	}

	var a models.AdminUser
	err := db.Collection("admins").FindOne(ctx, bson.M{"email": "boot@test.com"}).Decode(&a)
	if err != nil {
		t.Fatalf("failed to find seeded admin: %v", err)
	}
	if a.Role != models.RoleSuperAdmin {
		t.Errorf("role: got %q, want %q", a.Role, models.RoleSuperAdmin)
	}
	if !a.Permissions.ManageAdmins || !a.Permissions.ManageTreasury {
		t.Errorf("expected all permissions granted, got %+v", a.Permissions)
	}
	if a.PasswordHash == "" || a.PasswordHash == "a-strong-password" {
		t.Errorf("password was not hashed")
	}
}

func TestStartup_ExistingSuperAdminUntouched(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	existing := fx.CreateAdmin(ctx, "Existing", "boot@test.com", models.RoleSuperAdmin)

	deps := DBDeps{MongoDatabase: db}
	appCfg := AppConfig{
		SuperAdminEmail:    "boot@test.com",
		SuperAdminPassword: "a-strong-password",
	}

	if err := Startup(ctx, nil, appCfg, deps, testLogger()); err != nil {
		t.Fatalf("Startup failed: %v", err)
	}

	n, err := db.Collection("admins").CountDocuments(ctx, bson.M{"email": "boot@test.com"})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 admin, got %d", n)
	}

	var a models.AdminUser
	if err := db.Collection("admins").FindOne(ctx, bson.M{"_id": existing.ID}).Decode(&a); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if a.PasswordHash != existing.PasswordHash {
		t.Errorf("existing account was modified")
	}
}

func TestStartup_NoEmailIsNoop(t *testing.T) {
	if err := Startup(nil, nil, AppConfig{}, DBDeps{}, testLogger()); err != nil {
		t.Fatalf("Startup with no superadmin config should be a no-op, got %v", err)
	}
}

func TestParseCurrencyRates(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    map[string]float64
		wantErr bool
	}{
		{name: "empty", in: "", want: map[string]float64{"EUR": 1}},
		{name: "pairs", in: "USD=0.92,GBP=1.17", want: map[string]float64{"EUR": 1, "USD": 0.92, "GBP": 1.17}},
		{name: "lowercase and spaces", in: " usd = 0.5 ", want: map[string]float64{"EUR": 1, "USD": 0.5}},
		{name: "eur pinned", in: "EUR=2", want: map[string]float64{"EUR": 1}},
		{name: "missing equals", in: "USD", wantErr: true},
		{name: "bad rate", in: "USD=zero", wantErr: true},
		{name: "negative rate", in: "USD=-1", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseCurrencyRates(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("rates: got %v, want %v", got, tc.want)
			}
			for code, rate := range tc.want {
				if got[code] != rate {
					t.Errorf("rate %s: got %v, want %v", code, got[code], rate)
				}
			}
		})
	}
}
