package config

import (
	"errors"
	"fmt"
	"net/mail"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/terraincognita07/bitebalance/internal/nutrition"
)

const (
	minSecretKeyLength = 32
	AIProviderGemini   = "gemini"
	AIProviderOpenAI   = "openai"
)

var insecureSecretPlaceholders = map[string]struct{}{
	"change_me_in_production": {},
	"changeme":                {},
	"secret":                  {},
}

// environment is the raw decode target; Config adds the resolved values.
type environment struct {
	Port         string `env:"PORT,default=8080"`
	SecretKey    string `env:"SECRET_KEY"`
	DatabaseURL  string `env:"DATABASE_URL"`
	DBPath       string `env:"DB_PATH"`
	TimeZone     string `env:"TZ,default=UTC"`
	CookieSecure bool   `env:"COOKIE_SECURE,default=false"`
	AdminEmails  string `env:"ADMIN_EMAILS"`
	GainOffset   int    `env:"GAIN_CALORIE_OFFSET,default=300"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=text"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS,default=20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST,default=40"`

	AIProvider   string `env:"AI_PROVIDER,default=gemini"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL,default=gemini-1.5-flash"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL,default=gpt-4o-mini"`

	RedisURL      string        `env:"REDIS_URL"`
	FoodsCacheTTL time.Duration `env:"FOODS_CACHE_TTL,default=5m"`

	MailFrom  string `env:"MAIL_FROM"`
	AWSRegion string `env:"AWS_REGION"`

	ChallengeSchedule string `env:"CHALLENGE_SCHEDULE,default=5 0 * * *"`
}

type Config struct {
	environment

	Location    *time.Location
	AdminPolicy map[string]struct{}
}

// Load decodes the environment and runs every resolver. The returned Config
// is ready to hand to the server.
func Load() (*Config, error) {
	env := environment{}
	if err := envdecode.Decode(&env); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	cfg := &Config{environment: env}

	secret, err := ResolveSecretKey(cfg.SecretKey)
	if err != nil {
		return nil, err
	}
	cfg.SecretKey = secret

	port, err := ResolvePort(cfg.Port)
	if err != nil {
		return nil, err
	}
	cfg.Port = port

	cfg.DBPath = resolveDBPath(cfg.DBPath)
	cfg.Location = ResolveLocation(cfg.TimeZone)

	if err := ResolveGainOffset(cfg.GainOffset); err != nil {
		return nil, err
	}

	admins, err := ParseAdminEmails(cfg.AdminEmails)
	if err != nil {
		return nil, err
	}
	cfg.AdminPolicy = admins

	provider, err := ResolveAIProvider(cfg.AIProvider)
	if err != nil {
		return nil, err
	}
	cfg.AIProvider = provider

	if cfg.RateLimitRPS <= 0 {
		return nil, errors.New("RATE_LIMIT_RPS must be positive")
	}
	if cfg.RateLimitBurst < 1 {
		return nil, errors.New("RATE_LIMIT_BURST must be at least 1")
	}

	return cfg, nil
}

type databaseEnvironment struct {
	DatabaseURL string `env:"DATABASE_URL"`
	DBPath      string `env:"DB_PATH"`
}

// LoadDatabase reads only the storage settings. Maintenance commands use it
// so they run without a SECRET_KEY.
func LoadDatabase() (databaseURL string, dbPath string, err error) {
	env := databaseEnvironment{}
	if err := envdecode.Decode(&env); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return "", "", fmt.Errorf("decode environment: %w", err)
	}
	return strings.TrimSpace(env.DatabaseURL), resolveDBPath(env.DBPath), nil
}

func resolveDBPath(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return filepath.Join("data", "bitebalance.db")
	}
	return strings.TrimSpace(raw)
}

func ResolveSecretKey(raw string) (string, error) {
	secret := strings.TrimSpace(raw)
	if secret == "" {
		return "", errors.New("SECRET_KEY is required")
	}
	if _, insecure := insecureSecretPlaceholders[strings.ToLower(secret)]; insecure {
		return "", errors.New("SECRET_KEY uses an insecure placeholder value")
	}
	if len(secret) < minSecretKeyLength {
		return "", fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}
	return secret, nil
}

func ResolvePort(raw string) (string, error) {
	port := strings.TrimSpace(raw)
	if port == "" {
		return "8080", nil
	}
	value, err := strconv.Atoi(port)
	if err != nil || value < 1 || value > 65535 {
		return "", fmt.Errorf("invalid PORT %q", raw)
	}
	return port, nil
}

func ResolveLocation(name string) *time.Location {
	location, err := time.LoadLocation(strings.TrimSpace(name))
	if err != nil {
		return time.UTC
	}
	return location
}

func ResolveGainOffset(offset int) error {
	if offset < 0 || offset > nutrition.MaxGainOffset {
		return fmt.Errorf("GAIN_CALORIE_OFFSET must be between 0 and %d", nutrition.MaxGainOffset)
	}
	return nil
}

func ResolveAIProvider(raw string) (string, error) {
	switch provider := strings.ToLower(strings.TrimSpace(raw)); provider {
	case "", AIProviderGemini:
		return AIProviderGemini, nil
	case AIProviderOpenAI:
		return AIProviderOpenAI, nil
	default:
		return "", fmt.Errorf("unsupported AI_PROVIDER %q", raw)
	}
}

// ParseAdminEmails turns the comma separated allow-list into a lowercase set.
func ParseAdminEmails(raw string) (map[string]struct{}, error) {
	admins := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		email := strings.ToLower(strings.TrimSpace(part))
		if email == "" {
			continue
		}
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, fmt.Errorf("invalid ADMIN_EMAILS entry %q", part)
		}
		admins[email] = struct{}{}
	}
	return admins, nil
}

func (cfg *Config) NutritionPolicy() nutrition.Policy {
	return nutrition.Policy{GainOffset: cfg.GainOffset}
}

func (cfg *Config) UsesPostgres() bool {
	return strings.TrimSpace(cfg.DatabaseURL) != ""
}
