package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv        string `validate:"required"`
	LogLevel      string `validate:"required,oneof=trace debug info warn error"`
	EncryptionKey string `validate:"required,len=64,hexadecimal"`
	Bot           BotConfig
	Postgres      PostgresConfig
	Redis         RedisConfig
	Limits        LimitsConfig
	Links         LinksConfig
	Admins        []int64
}

// BotConfig holds the Telegram connection settings.
type BotConfig struct {
	Token       string `validate:"required"`
	Mode        string `validate:"oneof=polling webhook"`
	PollTimeout int    `validate:"min=1"`
	Webhook     WebhookConfig
}

// WebhookConfig is only used when Mode is "webhook".
type WebhookConfig struct {
	URL        string
	ListenPort int `validate:"min=1,max=65535"`
}

// PostgresConfig holds the database settings. An empty URL selects the
// in-memory stores.
type PostgresConfig struct {
	URL         string
	AutoMigrate bool
}

// RedisConfig holds the step store settings. An empty Addr selects the
// in-memory step store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int `validate:"min=0"`
}

// LimitsConfig bounds the input of the math commands.
type LimitsConfig struct {
	MaxMatrix    int   `validate:"min=1"`
	MaxModulo    int64 `validate:"min=3"`
	MaxElements  int   `validate:"min=1"`
	FactorizeMax int64 `validate:"min=2"`
}

// LinksConfig holds external links shown to users.
type LinksConfig struct {
	Channel string
	GitHub  string
}

// IsAdmin reports whether the user id belongs to the administrator set.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Admins {
		if id == userID {
			return true
		}
	}
	return false
}

// IsDev reports whether the app runs in development mode.
func (c *Config) IsDev() bool {
	return c.AppEnv == "dev"
}

var bindings = map[string]string{
	"app.env":          "APP_ENV",
	"log.level":        "LOG_LEVEL",
	"encryption.key":   "ENCRYPTION_KEY",
	"bot.token":        "BOT_TOKEN",
	"bot.mode":         "BOT_MODE",
	"bot.poll_timeout": "BOT_POLL_TIMEOUT",
	"bot.webhook.url":  "BOT_WEBHOOK_URL",
	"bot.webhook.port": "BOT_WEBHOOK_PORT",
	"postgres.url":     "DATABASE_URL",
	"postgres.migrate": "DB_AUTO_MIGRATE",
	"redis.addr":       "REDIS_ADDR",
	"redis.password":   "REDIS_PASSWORD",
	"redis.db":         "REDIS_DB",
	"admins":           "ADMINS",
	"limits.matrix":    "MAX_MATRIX",
	"limits.modulo":    "MAX_MODULO",
	"limits.elements":  "MAX_ELEMENTS",
	"limits.factorize": "FACTORIZE_MAX",
	"links.channel":    "CHANNEL_LINK",
	"links.github":     "GITHUB_LINK",
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// 1. Load .env file into the process environment
	if err := godotenv.Load(); err != nil {
		// A missing .env is fine, we rely on OS-set env vars then.
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	// 2. Explicitly bind viper keys to env var names
	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("could not bind %s: %w", key, err)
		}
	}

	// 3. Set defaults
	viper.SetDefault("app.env", "dev")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("bot.mode", "polling")
	viper.SetDefault("bot.poll_timeout", 60)
	viper.SetDefault("bot.webhook.port", 8443)
	viper.SetDefault("postgres.migrate", true)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("limits.matrix", 7)
	viper.SetDefault("limits.modulo", 1_000_000)
	viper.SetDefault("limits.elements", 100)
	viper.SetDefault("limits.factorize", 1_000_000_000_000)

	admins, err := parseAdmins(viper.GetString("admins"))
	if err != nil {
		return nil, err
	}

	// 4. Get values directly from viper
	cfg := Config{
		AppEnv:        viper.GetString("app.env"),
		LogLevel:      strings.ToLower(viper.GetString("log.level")),
		EncryptionKey: viper.GetString("encryption.key"),
		Bot: BotConfig{
			Token:       viper.GetString("bot.token"),
			Mode:        viper.GetString("bot.mode"),
			PollTimeout: viper.GetInt("bot.poll_timeout"),
			Webhook: WebhookConfig{
				URL:        viper.GetString("bot.webhook.url"),
				ListenPort: viper.GetInt("bot.webhook.port"),
			},
		},
		Postgres: PostgresConfig{
			URL:         viper.GetString("postgres.url"),
			AutoMigrate: viper.GetBool("postgres.migrate"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Limits: LimitsConfig{
			MaxMatrix:    viper.GetInt("limits.matrix"),
			MaxModulo:    viper.GetInt64("limits.modulo"),
			MaxElements:  viper.GetInt("limits.elements"),
			FactorizeMax: viper.GetInt64("limits.factorize"),
		},
		Links: LinksConfig{
			Channel: viper.GetString("links.channel"),
			GitHub:  viper.GetString("links.github"),
		},
		Admins: admins,
	}

	// 5. Validation
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the struct tags and the cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on the '%s' tag", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, ", "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Bot.Mode == "webhook" && c.Bot.Webhook.URL == "" {
		return errors.New("BOT_WEBHOOK_URL is required in webhook mode")
	}
	return nil
}

// parseAdmins reads a comma or space separated list of user ids.
func parseAdmins(raw string) ([]int64, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == ';'
	})

	admins := make([]int64, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMINS contains a non-numeric id %q: %w", f, err)
		}
		admins = append(admins, id)
	}
	return admins, nil
}
