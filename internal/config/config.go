package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Gateway names.
const (
	GatewayEvolution = "evolution"
	GatewayTwilio    = "twilio"
)

// Store backends.
const (
	StoreFile     = "file"
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Order re-capture modes. Only one is active per process.
const (
	ModeConversation  = "conversation"
	ModeSingleMessage = "single"
)

// Config holds all runtime settings, read once at startup.
type Config struct {
	Port        string `env:"PORT" envDefault:"3000"`
	Environment string `env:"ENVIRONMENT" envDefault:"production"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	AdminToken  string `env:"ADMIN_TOKEN"`

	// DisableWebhookValidation skips Twilio signature checks (ngrok, local tests).
	DisableWebhookValidation bool `env:"DISABLE_WEBHOOK_VALIDATION"`

	Gateway   string          `env:"MESSAGE_GATEWAY" envDefault:"evolution"`
	Evolution EvolutionConfig `envPrefix:"EVOLUTION_"`
	Twilio    TwilioConfig    `envPrefix:"TWILIO_"`

	Storage StorageConfig

	OrderMode string `env:"ORDER_MODE" envDefault:"conversation"`

	Broadcast BroadcastConfig `envPrefix:"BROADCAST_"`
	Printer   PrinterConfig   `envPrefix:"PRINTER_"`
	ShopName  string          `env:"SHOP_NAME" envDefault:"CASA DO HAMBÚRGUER"`
}

// EvolutionConfig points at the Evolution API instance that owns the WhatsApp number.
type EvolutionConfig struct {
	Host     string        `env:"HOST"`
	APIKey   string        `env:"API_KEY"`
	Instance string        `env:"INSTANCE"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"15s"`
}

// TwilioConfig holds credentials for the Twilio WhatsApp sender.
type TwilioConfig struct {
	AccountSID   string `env:"ACCOUNT_SID"`
	AuthToken    string `env:"AUTH_TOKEN"`
	WhatsAppFrom string `env:"WHATSAPP_FROM"`
}

// StorageConfig selects and locates the record store.
type StorageConfig struct {
	Backend     string `env:"STORE_BACKEND" envDefault:"file"`
	DataDir     string `env:"DATA_DIR" envDefault:"."`
	DatabaseURL string `env:"DATABASE_URL"`

	AuthorizedSendersFile string `env:"AUTHORIZED_SENDERS_FILE" envDefault:"authorized_senders.json"`
	ContactsFile          string `env:"CONTACTS_FILE" envDefault:"contatos-lanchonete.json"`
	ConsentFile           string `env:"CONSENT_FILE" envDefault:"consent.json"`
	SessionsFile          string `env:"SESSIONS_FILE" envDefault:"refazer_sessions.json"`
	OrdersFile            string `env:"ORDERS_FILE" envDefault:"pedidos_refazer.json"`
}

// BroadcastConfig tunes batch pacing and the completion estimate.
type BroadcastConfig struct {
	BatchSize    int           `env:"BATCH_SIZE" envDefault:"5"`
	BatchDelay   time.Duration `env:"BATCH_DELAY" envDefault:"10s"`
	PerContact   time.Duration `env:"PER_CONTACT" envDefault:"50ms"`
	SafetyBuffer time.Duration `env:"SAFETY_BUFFER" envDefault:"5s"`
	MaxWait      time.Duration `env:"MAX_WAIT" envDefault:"30m"`
}

// PrinterConfig controls receipt output.
type PrinterConfig struct {
	Simulation bool   `env:"SIMULATION" envDefault:"true"`
	OutputDir  string `env:"OUTPUT_DIR" envDefault:"cupons"`
	Width      int    `env:"WIDTH" envDefault:"40"`
}

// Load reads an optional .env file and parses the environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// a missing file is fine, the variables may come from the environment
		_ = godotenv.Load(f)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.Gateway = strings.ToLower(strings.TrimSpace(c.Gateway))
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	c.OrderMode = strings.ToLower(strings.TrimSpace(c.OrderMode))
	c.Evolution.Host = strings.TrimRight(c.Evolution.Host, "/")
}

// Validate reports every missing or invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Gateway {
	case GatewayEvolution:
		if c.Evolution.Host == "" {
			errs = append(errs, errors.New("EVOLUTION_HOST is required"))
		}
		if c.Evolution.APIKey == "" {
			errs = append(errs, errors.New("EVOLUTION_API_KEY is required"))
		}
		if c.Evolution.Instance == "" {
			errs = append(errs, errors.New("EVOLUTION_INSTANCE is required"))
		}
	case GatewayTwilio:
		if c.Twilio.AccountSID == "" || c.Twilio.AuthToken == "" || c.Twilio.WhatsAppFrom == "" {
			errs = append(errs, errors.New("TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_WHATSAPP_FROM are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MESSAGE_GATEWAY %q", c.Gateway))
	}

	switch c.Storage.Backend {
	case StoreFile, StoreMemory:
	case StorePostgres:
		if c.Storage.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.Storage.Backend))
	}

	if c.OrderMode != ModeConversation && c.OrderMode != ModeSingleMessage {
		errs = append(errs, fmt.Errorf("unknown ORDER_MODE %q", c.OrderMode))
	}
	if c.Broadcast.BatchSize < 1 {
		errs = append(errs, errors.New("BROADCAST_BATCH_SIZE must be at least 1"))
	}

	return errors.Join(errs...)
}

// IsDevelopment reports whether development-only routes are enabled.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
