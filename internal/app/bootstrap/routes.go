// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	adminsfeature "github.com/dalemusser/memberhub/internal/app/features/admins"
	applicationsfeature "github.com/dalemusser/memberhub/internal/app/features/applications"
	auditlogfeature "github.com/dalemusser/memberhub/internal/app/features/auditlog"
	authapifeature "github.com/dalemusser/memberhub/internal/app/features/authapi"
	dashboardfeature "github.com/dalemusser/memberhub/internal/app/features/dashboard"
	healthfeature "github.com/dalemusser/memberhub/internal/app/features/health"
	recruitmentfeature "github.com/dalemusser/memberhub/internal/app/features/recruitment"
	trainingsfeature "github.com/dalemusser/memberhub/internal/app/features/trainings"
	treasuryfeature "github.com/dalemusser/memberhub/internal/app/features/treasury"
	webinarsfeature "github.com/dalemusser/memberhub/internal/app/features/webinars"
	adminstore "github.com/dalemusser/memberhub/internal/app/store/admins"
	"github.com/dalemusser/memberhub/internal/app/store/audit"
	memberstore "github.com/dalemusser/memberhub/internal/app/store/members"
	paymentstore "github.com/dalemusser/memberhub/internal/app/store/payments"
	prospectstore "github.com/dalemusser/memberhub/internal/app/store/prospects"
	registrationstore "github.com/dalemusser/memberhub/internal/app/store/registrations"
	trainingstore "github.com/dalemusser/memberhub/internal/app/store/trainings"
	webinarstore "github.com/dalemusser/memberhub/internal/app/store/webinars"
	"github.com/dalemusser/memberhub/internal/app/system/auditlog"
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/dalemusser/memberhub/internal/app/system/cors"
	"github.com/dalemusser/memberhub/internal/app/system/effects"
	"github.com/dalemusser/memberhub/internal/app/system/ratelimit"
	"github.com/dalemusser/memberhub/internal/app/system/webhook"
	"github.com/dalemusser/memberhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// MemberHub builds the shared plumbing (tokens, auth middleware, audit
// logger, webhook relay, rate limiter, file storage) once and mounts every
// API feature under /api/*.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Shared plumbing.
	tokens, err := auth.NewTokens(appCfg.JWTSecret, appCfg.JWTTTL)
	if err != nil {
		logger.Error("token signer init failed", zap.Error(err))
		return nil, err
	}

	admins := adminstore.New(db)
	mw := auth.NewMiddleware(tokens, admins, logger)

	auditStore := audit.New(db)
	auditLog := auditlog.New(auditStore, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	relay := webhook.New(appCfg.WebhookURL, appCfg.WebhookTimeout, db.Collection("webhook_outbox"), logger)
	disp := &effects.Dispatcher{Audit: auditLog, Webhook: relay, Log: logger}

	// Redeliver outboxed notifications in the background; stopped in Shutdown.
	outboxWorker = workers.NewOutboxRetry(relay, logger, 5*time.Minute, 50)
	outboxWorker.Start()

	limiter := ratelimit.NewLoginLimiterWithConfig(
		appCfg.LoginIPLimit, appCfg.LoginIPWindow,
		appCfg.LoginEmailLimit, appCfg.LoginEmailWindow)

	files, err := storage.NewLocal(storage.LocalConfig{
		BasePath: appCfg.StorageLocalPath,
		BaseURL:  appCfg.StorageLocalURL,
	})
	if err != nil {
		logger.Error("local storage init failed", zap.Error(err))
		return nil, err
	}

	// Stores.
	members := memberstore.New(db)
	regs := registrationstore.New(db)
	trainings := trainingstore.New(db)
	webinars := webinarstore.New(db)
	payments := paymentstore.New(db)
	prospects := prospectstore.New(db)

	r := chi.NewRouter()

	// CORS runs outermost so even auth failures and 404s carry the headers,
	// and preflights never reach the features.
	r.Use(cors.Middleware(appCfg.CORSOrigin))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli); the
	// frontend entry point itself lives at /.
	r.Handle("/static/*", fileserver.Handler("/static", "public"))
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.ServeFile(w, req, "public/index.html")
	})

	// Uploaded files (application photos) served from local storage
	r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))

	// API features. Each mount passes its own base path because the route
	// tables match on the full request path.
	authHandler := authapifeature.NewHandler(admins, tokens, limiter, auditLog, logger)
	r.Mount("/api/auth", authapifeature.Routes(authHandler, "/api/auth"))

	appsHandler := applicationsfeature.NewHandler(members, files, disp, logger)
	r.Mount("/api/applications", applicationsfeature.Routes(appsHandler, mw, "/api/applications"))

	trainingsHandler := trainingsfeature.NewHandler(trainings, regs, disp, logger)
	r.Mount("/api/trainings", trainingsfeature.Routes(trainingsHandler, mw, "/api/trainings"))

	webinarsHandler := webinarsfeature.NewHandler(webinars, regs, relay, disp, logger)
	r.Mount("/api/webinars", webinarsfeature.Routes(webinarsHandler, mw, "/api/webinars"))

	treasuryHandler := treasuryfeature.NewHandler(payments, appCfg.CurrencyRates, disp, logger)
	r.Mount("/api/treasury", treasuryfeature.Routes(treasuryHandler, mw, "/api/treasury"))

	recruitmentHandler := recruitmentfeature.NewHandler(prospects, disp, logger)
	r.Mount("/api/recruitment", recruitmentfeature.Routes(recruitmentHandler, mw, "/api/recruitment"))

	auditHandler := auditlogfeature.NewHandler(auditStore, logger)
	r.Mount("/api/audit", auditlogfeature.Routes(auditHandler, mw, "/api/audit"))

	adminsHandler := adminsfeature.NewHandler(admins, disp, logger)
	r.Mount("/api/admins", adminsfeature.Routes(adminsHandler, mw, "/api/admins"))

	dashboardHandler := dashboardfeature.NewHandler(members, trainings, webinars, prospects, admins, payments, auditStore, logger)
	r.Mount("/api/dashboard", dashboardfeature.Routes(dashboardHandler, mw, "/api/dashboard"))

	return r, nil
}
