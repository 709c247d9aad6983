package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  It is built once at
// startup and handed to every component that needs it; nothing reads the
// environment after Load returns.
type Config struct {
	Env  string `env:"APP_ENV" envDefault:"dev"`  // application environment (e.g. "dev", "prod")
	Port string `env:"PORT" envDefault:"5000"`    // HTTP port to listen on

	DBUser    string `env:"DB_USER,required,notEmpty"` // database username
	DBPass    string `env:"DB_PASS"`                   // database password (optional)
	DBHost    string `env:"DB_HOST,required,notEmpty"` // database host address
	DBPort    string `env:"DB_PORT" envDefault:"3306"` // database port number
	DBName    string `env:"DB_NAME,required,notEmpty"` // database name
	DBMigrate bool   `env:"DB_MIGRATE" envDefault:"true"`

	JWTSecret     string        `env:"JWT_SECRET,required,notEmpty"` // secret used to sign tokens
	SessionSecret string        `env:"SESSION_SECRET" envDefault:"change-me"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	BcryptCost    int           `env:"BCRYPT_COST" envDefault:"10"`

	APIKey           string        `env:"API_KEY,required,notEmpty"` // upstream recipe catalog key
	RecipeAPIBaseURL string        `env:"RECIPE_API_BASE_URL" envDefault:"https://api.spoonacular.com"`
	RecipeAPITimeout time.Duration `env:"RECIPE_API_TIMEOUT" envDefault:"15s"`

	RabbitMQURL string   `env:"RABBITMQ_URL"` // empty disables favorite activity events
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`

	Redis     RedisConfig
	RateLimit RateLimitConfig
}

// Load reads an optional .env file and then the process environment.  A
// missing required variable (JWT_SECRET, API_KEY, DB_*) is returned as an
// error naming it; callers are expected to abort startup on error.
func Load() (Config, error) {
	_ = godotenv.Load(".env")
	return parse()
}

func parse() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, errors.New("load config: TOKEN_TTL must be positive")
	}
	cfg.RecipeAPIBaseURL = strings.TrimRight(cfg.RecipeAPIBaseURL, "/")
	cfg.RateLimit.normalize()
	return cfg, nil
}
