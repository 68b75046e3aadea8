package config

import (
	"fmt"
	"os"
	"strings"
)

// Backend selects where reminder and task rows live.
const (
	BackendSQLite = "sqlite"
	BackendSheet  = "sheet"
)

// S3 holds blob storage settings for uploaded attachments.
type S3 struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Config keeps runtime settings for the portal, read from environment
// variables. Only the auth secret is strictly required; everything else
// degrades to a disabled integration or a sane default.
type Config struct {
	Port    string
	BaseURL string
	DBPath  string

	// StoreBackend selects the reminder/task repository implementation:
	// "sqlite" (default) or "sheet" for the legacy spreadsheet store.
	StoreBackend string
	SheetBaseURL string
	SheetToken   string

	LogLevel  string
	LogFormat string

	// AuthSecret verifies identity-provider session tokens.
	AuthSecret string
	// JobToken guards the scheduled-job endpoints. A value prefixed with
	// "$2" is treated as a bcrypt hash of the secret.
	JobToken string

	EmailToken       string
	FromEmail        string
	SummaryRecipient string

	AIAPIKey  string
	AIModel   string
	AIBaseURL string

	S3 S3

	VAPIDPublicKey  string
	VAPIDPrivateKey string

	// GeneratorAt / DigestAt are optional HH:MM local times for running the
	// batch jobs in-process. Empty means an external scheduler calls the
	// trigger endpoints instead.
	GeneratorAt string
	DigestAt    string
	Timezone    string
}

// Load reads configuration from the environment with defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:             envOr("PORT", "8080"),
		BaseURL:          envOr("BASE_URL", "http://localhost:8080"),
		DBPath:           envOr("DB_PATH", "parishhub.db"),
		StoreBackend:     envOr("STORE_BACKEND", BackendSQLite),
		SheetBaseURL:     get("SHEET_BASE_URL"),
		SheetToken:       get("SHEET_TOKEN"),
		LogLevel:         envOr("LOG_LEVEL", "info"),
		LogFormat:        envOr("LOG_FORMAT", "text"),
		AuthSecret:       get("AUTH_SECRET"),
		JobToken:         get("JOB_TOKEN"),
		EmailToken:       get("POSTMARK_TOKEN"),
		FromEmail:        envOr("FROM_EMAIL", "communications@stgabriel.org"),
		SummaryRecipient: envOr("SUMMARY_RECIPIENT", "office@stgabriel.org"),
		AIAPIKey:         get("AI_API_KEY"),
		AIModel:          envOr("AI_MODEL", "gpt-4o-mini"),
		AIBaseURL:        get("AI_BASE_URL"),
		S3: S3{
			Endpoint:  get("S3_ENDPOINT"),
			Bucket:    get("S3_BUCKET"),
			Region:    envOr("S3_REGION", "auto"),
			AccessKey: get("S3_ACCESS_KEY"),
			SecretKey: get("S3_SECRET_KEY"),
		},
		VAPIDPublicKey:  get("VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: get("VAPID_PRIVATE_KEY"),
		GeneratorAt:     get("GENERATOR_AT"),
		DigestAt:        get("DIGEST_AT"),
		Timezone:        envOr("TIMEZONE", "Local"),
	}

	if cfg.AuthSecret == "" {
		return cfg, fmt.Errorf("AUTH_SECRET is required")
	}

	switch cfg.StoreBackend {
	case BackendSQLite:
	case BackendSheet:
		if cfg.SheetBaseURL == "" || cfg.SheetToken == "" {
			return cfg, fmt.Errorf("STORE_BACKEND=sheet requires SHEET_BASE_URL and SHEET_TOKEN")
		}
	default:
		return cfg, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	return cfg, nil
}

func get(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envOr(key, fallback string) string {
	if v := get(key); v != "" {
		return v
	}
	return fallback
}
