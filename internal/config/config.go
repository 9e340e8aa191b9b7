package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	DatabaseURL string `env:"DATABASE_URL"`

	Auth      Auth      `envPrefix:"AUTH_"`
	Checkout  Checkout  `envPrefix:"CHECKOUT_"`
	Storage   Storage   `envPrefix:"STORAGE_"`
	Retention Retention `envPrefix:"RETENTION_"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

// Auth describes the identity boundary: tokens are issued elsewhere, this
// service only verifies them and trusts the embedded user id and role claim.
type Auth struct {
	JWTSecret string `env:"JWT_SECRET"`
}

// Checkout configures the external payment collaborator.
type Checkout struct {
	BaseApiURL    string `env:"BASE_API_URL"`
	SecretKey     string `env:"SECRET_KEY"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
	Currency      string `env:"CURRENCY" envDefault:"USD"`
}

// Storage configures the media boundary (thumbnails are uploaded by the client
// before course creation; this service only releases orphans).
type Storage struct {
	SupabaseURL string `env:"SUPABASE_URL"`
	SupabaseKey string `env:"SUPABASE_KEY"`
	Bucket      string `env:"BUCKET" envDefault:"uploads"`
}

// Retention is the policy surface for abandoned checkouts: how long a
// non-completed purchase may live, how often the sweep runs, and how many
// initiations one user gets per rolling window.
type Retention struct {
	PurchaseTTL      time.Duration `env:"PURCHASE_TTL" envDefault:"450s"`
	SweepInterval    time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
	MaxInitiations   int           `env:"MAX_INITIATIONS" envDefault:"3"`
	InitiationWindow time.Duration `env:"INITIATION_WINDOW" envDefault:"1m"`
}
