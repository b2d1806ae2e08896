// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	adminstore "github.com/dalemusser/memberhub/internal/app/store/admins"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. MemberHub
// uses it to seed the bootstrap superadmin so a fresh deployment has a way
// to log in.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.SuperAdminEmail == "" {
		return nil
	}

	admins := adminstore.New(deps.MongoDatabase)
	if _, err := admins.GetByEmail(ctx, appCfg.SuperAdminEmail); err == nil {
		// Already present; nothing to seed.
		return nil
	} else if !apperr.IsKind(err, apperr.KindAuth) {
		return fmt.Errorf("superadmin lookup: %w", err)
	}

	hash, err := auth.HashPassword(appCfg.SuperAdminPassword)
	if err != nil {
		return fmt.Errorf("superadmin password hash: %w", err)
	}

	a, err := admins.Create(ctx, models.AdminUser{
		FullName:     "Super Admin",
		Email:        appCfg.SuperAdminEmail,
		PasswordHash: hash,
		Role:         models.RoleSuperAdmin,
		Permissions: models.Permissions{
			ManageTreasury: true,
			ManageAdmins:   true,
		},
	})
	if err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			// Raced with another instance; someone seeded it first.
			return nil
		}
		return fmt.Errorf("superadmin create: %w", err)
	}

	logger.Info("seeded bootstrap superadmin",
		zap.String("email", a.Email),
		zap.String("id", a.ID.Hex()))
	return nil
}
