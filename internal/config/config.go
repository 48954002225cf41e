package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Gateway Gateway `mapstructure:"gateway"`
	Pricing Pricing `mapstructure:"pricing"`
	Ledger  Ledger  `mapstructure:"ledger"`
	Trading Trading `mapstructure:"trading"`
	Logger  Logger  `mapstructure:"logger"`
	Server  Server  `mapstructure:"server"`
}

// Gateway holds the configuration for the DEX gateway API.
type Gateway struct {
	BaseURL        string  `mapstructure:"base_url"`
	WalletAddress  string  `mapstructure:"wallet_address"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Pricing holds the configuration for USD price resolution.
type Pricing struct {
	// GalaUSDOverride pins the GALA price instead of resolving it. Zero
	// means no override.
	GalaUSDOverride  float64 `mapstructure:"gala_usd_override"`
	ReferenceURL     string  `mapstructure:"reference_url"`
	ReferenceTimeout int     `mapstructure:"reference_timeout"` // seconds
}

// Ledger holds the configuration for the transaction ledger store.
type Ledger struct {
	Backend  string `mapstructure:"backend"` // "file" or "sqlite"
	Path     string `mapstructure:"path"`
	DSN      string `mapstructure:"dsn"`
	Capacity int    `mapstructure:"capacity"`
}

// Trading holds the configuration for the trading strategies.
type Trading struct {
	Strategy          string  `mapstructure:"strategy"`
	TokenA            string  `mapstructure:"token_a"`
	TokenB            string  `mapstructure:"token_b"`
	SlippageTolerance float64 `mapstructure:"slippage_tolerance"` // percent
	SwapPercentage    float64 `mapstructure:"swap_percentage"`    // percent of balance
	FeeTier           int     `mapstructure:"fee_tier"`
	DryRun            bool    `mapstructure:"dry_run"`
	ArbitrageEnabled  bool    `mapstructure:"arbitrage_enabled"`
	ApiPort           int     `mapstructure:"api_port"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Server holds the configuration for the web UI server.
type Server struct {
	Port int `mapstructure:"port"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("gateway.base_url", "https://dex-backend-prod1.defi.gala.com")
	viper.SetDefault("gateway.rate_limit", 10) // requests per second
	viper.SetDefault("gateway.rate_limit_burst", 5)
	viper.SetDefault("pricing.reference_url", "https://api.coingecko.com/api/v3/simple/price?ids=gala&vs_currencies=usd")
	viper.SetDefault("pricing.reference_timeout", 10)
	viper.SetDefault("ledger.backend", "file")
	viper.SetDefault("ledger.path", "data/transactions.json")
	viper.SetDefault("ledger.dsn", "data/ledger.db")
	viper.SetDefault("ledger.capacity", 1000)
	viper.SetDefault("trading.strategy", "cicada")
	viper.SetDefault("trading.token_a", "GALA")
	viper.SetDefault("trading.token_b", "GUSDC")
	viper.SetDefault("trading.slippage_tolerance", 0.5)
	viper.SetDefault("trading.swap_percentage", 25)
	viper.SetDefault("trading.api_port", 8080)
	viper.SetDefault("server.port", 8000)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
