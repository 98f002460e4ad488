package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Server   ServerConfig
	App      AppConfig
	Market   MarketConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// RedisConfig holds redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret      string
	StoreBackend   string // memory, postgres, sqlite, redis
	SQLitePath     string
	InitialBalance int64 // dev faucet balance minted at first login
}

// MarketConfig holds the market instantiation parameters
type MarketConfig struct {
	OwnerAddr        string
	MarketAddr       string
	BurnAddr         string
	RewardsAddr      string
	OracleAddr       string
	SettleDenom      string
	NextRoundSeconds int64
	MinimumBet       int64
	BurnFee          int64
	StakerFee        int64
	AdvanceInterval  int64 // seconds between automatic AdvanceRound calls
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "price_prediction"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		App: AppConfig{
			JWTSecret:      getEnv("JWT_SECRET", ""),
			StoreBackend:   getEnv("STORE_BACKEND", "memory"),
			SQLitePath:     getEnv("SQLITE_PATH", "market.db"),
			InitialBalance: getEnvInt64("INITIAL_BALANCE", 1_000_000),
		},
		Market: MarketConfig{
			OwnerAddr:        getEnv("MARKET_OWNER_ADDR", "owner"),
			MarketAddr:       getEnv("MARKET_ADDR", "market"),
			BurnAddr:         getEnv("BURN_ADDR", "burn"),
			RewardsAddr:      getEnv("REWARDS_ADDR", "external_rewards"),
			OracleAddr:       getEnv("ORACLE_ADDR", "fast_oracle"),
			SettleDenom:      getEnv("SETTLE_DENOM", "uusd"),
			NextRoundSeconds: getEnvInt64("NEXT_ROUND_SECONDS", 600),
			MinimumBet:       getEnvInt64("MINIMUM_BET", 1),
			BurnFee:          getEnvInt64("BURN_FEE_BPS", 100),
			StakerFee:        getEnvInt64("STAKER_FEE_BPS", 200),
			AdvanceInterval:  getEnvInt64("ADVANCE_INTERVAL_SECONDS", 5),
		},
	}

	// Validate required fields
	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	switch config.App.StoreBackend {
	case "memory", "postgres", "sqlite", "redis":
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", config.App.StoreBackend)
	}

	return config, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}
