package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// ReferenceCurrency is the base every persisted rate is expressed in.
	ReferenceCurrency string
	// DefaultBaseCurrency is the base served when a query names none.
	DefaultBaseCurrency string

	SyncCron      string
	SyncOnStartup bool
	SeedOnStartup bool
	ECBSeedPath   string
	NBUSeedPath   string
	FetchTimeout  time.Duration

	RateLimit string

	KafkaBrokers []string
	KafkaTopic   string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("REFERENCE_CURRENCY", "USD")
	viper.SetDefault("DEFAULT_BASE_CURRENCY", "USD")
	viper.SetDefault("SYNC_CRON", "0 16 * * *")
	viper.SetDefault("SYNC_ON_STARTUP", true)
	viper.SetDefault("SEED_ON_STARTUP", true)
	viper.SetDefault("ECB_SEED_PATH", "seed_data/eurofxref-hist.xml")
	viper.SetDefault("NBU_SEED_PATH", "seed_data/nbu_rates.json")
	viper.SetDefault("FETCH_TIMEOUT", "30s")
	viper.SetDefault("RATE_LIMIT", "120-M")
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("KAFKA_TOPIC", "currency-rates.sync")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.ReferenceCurrency = strings.ToUpper(viper.GetString("REFERENCE_CURRENCY"))
	cfg.DefaultBaseCurrency = strings.ToUpper(viper.GetString("DEFAULT_BASE_CURRENCY"))

	cfg.SyncCron = viper.GetString("SYNC_CRON")
	cfg.SyncOnStartup = viper.GetBool("SYNC_ON_STARTUP")
	cfg.SeedOnStartup = viper.GetBool("SEED_ON_STARTUP")
	cfg.ECBSeedPath = viper.GetString("ECB_SEED_PATH")
	cfg.NBUSeedPath = viper.GetString("NBU_SEED_PATH")

	fetchTimeoutStr := viper.GetString("FETCH_TIMEOUT")
	fetchTimeout, err := time.ParseDuration(fetchTimeoutStr)
	if err != nil {
		fetchTimeout = 30 * time.Second
		log.Printf("Warning: Invalid value for FETCH_TIMEOUT ('%s'). Defaulting to %s.\n", fetchTimeoutStr, fetchTimeout)
	}
	cfg.FetchTimeout = fetchTimeout

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	if brokers := viper.GetString("KAFKA_BROKERS"); brokers != "" {
		for _, broker := range strings.Split(brokers, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
			}
		}
	}
	cfg.KafkaTopic = viper.GetString("KAFKA_TOPIC")

	return cfg, nil
}
