// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - Request body size limits
//   - Database connection timeouts
//
// AppConfig is where you put everything specific to YOUR application.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Token configuration
	JWTSecret string        // HMAC signing secret for API tokens (must be strong in production)
	JWTTTL    time.Duration // Token lifetime

	// Notification relay
	WebhookURL     string        // Email relay endpoint; blank routes everything to the outbox
	WebhookTimeout time.Duration // Per-delivery timeout

	// File storage configuration
	StorageLocalPath string // Local storage path (e.g., "./uploads")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/files")

	// CORS
	CORSOrigin string // Allowed origin; blank means wildcard

	// Audit logging settings ("all", "db", "log", or "off")
	AuditLogAuth  string
	AuditLogAdmin string

	// Login rate limiting
	LoginIPLimit     int           // Attempts per IP per window
	LoginIPWindow    time.Duration // IP window
	LoginEmailLimit  int           // Attempts per email per window
	LoginEmailWindow time.Duration // Email window

	// Treasury reporting: EUR per one unit of each currency. EUR itself is
	// always rate 1.
	CurrencyRates map[string]float64

	// SuperAdmin bootstrap (created on startup when the admins collection
	// is empty)
	SuperAdminEmail    string
	SuperAdminPassword string
}
