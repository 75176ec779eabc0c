package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
type Config struct {
	// Solana RPC configuration
	Solana SolanaConfig

	// Price provider configuration
	Price PriceConfig

	// Redis configuration
	Redis RedisConfig

	// Price cache configuration
	Cache CacheConfig

	// API server configuration
	API APIConfig

	// Logging configuration
	Log LogConfig
}

// SolanaConfig holds Solana RPC connection settings
type SolanaConfig struct {
	RPCURL         string        `envconfig:"SOLANA_RPC_URL" default:"https://api.mainnet-beta.solana.com"`
	RequestTimeout time.Duration `envconfig:"SOLANA_REQUEST_TIMEOUT" default:"10s"`
	TxLimit        int           `envconfig:"SOLANA_TX_LIMIT" default:"10"`
	FetchWorkers   int           `envconfig:"SOLANA_FETCH_WORKERS" default:"5"`
}

// PriceConfig holds CoinGecko settings and the mint to coin id table
type PriceConfig struct {
	BaseURL        string        `envconfig:"COINGECKO_URL" default:"https://api.coingecko.com/api/v3"`
	APIKey         string        `envconfig:"COINGECKO_API_KEY" default:""`
	VsCurrency     string        `envconfig:"PRICE_VS_CURRENCY" default:"usd"`
	Timeout        time.Duration `envconfig:"PRICE_TIMEOUT" default:"10s"`
	Fallback       float64       `envconfig:"PRICE_FALLBACK" default:"0.01"`
	DefaultCoinID  string        `envconfig:"PRICE_DEFAULT_COIN_ID" default:""`
	ContractLookup bool          `envconfig:"PRICE_CONTRACT_LOOKUP" default:"true"`

	// Mint address -> CoinGecko id (format: mint:id,mint:id)
	MintCoinIDs map[string]string `envconfig:"PRICE_MINT_COIN_IDS" default:"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v:usd-coin,Es9vMFrzaCERmJfrF4H2FYD4KGoNkY11McCe8BenwNYB:tether,DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263:bonk,JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN:jupiter-exchange-solana,mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So:msol,J1toso1uCk3RLmjorhTtrVwY9HJ7X8V9yYac6Y7kGCPn:jito-staked-sol"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// CacheConfig holds price cache TTLs
type CacheConfig struct {
	HistoricalTTL time.Duration `envconfig:"CACHE_HISTORICAL_TTL" default:"24h"`
	CurrentTTL    time.Duration `envconfig:"CACHE_CURRENT_TTL" default:"60s"`
	CoinIDTTL     time.Duration `envconfig:"CACHE_COIN_ID_TTL" default:"24h"`
}

// APIConfig holds API server settings
type APIConfig struct {
	Host            string        `envconfig:"API_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"PORT" default:"3000"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    int           `envconfig:"API_RATE_LIMIT_RPS" default:"10"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

const maxTxLimit = 50

// Load loads configuration from environment variables.
// A .env file in the working directory is applied first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and clamps the transaction window
func (c *Config) Validate() error {
	if c.Price.Fallback <= 0 {
		return errors.New("PRICE_FALLBACK must be greater than zero")
	}
	if c.Solana.TxLimit < 1 {
		c.Solana.TxLimit = 1
	}
	if c.Solana.TxLimit > maxTxLimit {
		c.Solana.TxLimit = maxTxLimit
	}
	if c.Solana.FetchWorkers < 1 {
		c.Solana.FetchWorkers = 1
	}
	return nil
}
