package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values for the run command, loaded from flags,
// env, or config file. Decimal-valued knobs stay strings here; the command
// parses them when wiring the scanner.
type Config struct {
	IndexerURL   string
	OracleURL    string
	LCDURL       string
	PGDSN        string
	Out          string
	Borrowables  string
	Interval     time.Duration
	Notional     string
	MaxHops      int
	MinProfit    string
	GasStable    string
	GasConstProd string
	MetricsAddr  string
	HTTPTimeout  time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	LogLevel     string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ARBITER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("out", "./data/opportunities.jsonl")
	v.SetDefault("borrowables", "./borrowables.json")
	v.SetDefault("interval", 30*time.Second)
	v.SetDefault("notional", "1000")
	v.SetDefault("max-hops", 5)
	v.SetDefault("min-profit", "0")
	v.SetDefault("gas-stable", "3")
	v.SetDefault("gas-constant-product", "2")
	v.SetDefault("http-timeout", 10*time.Second)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		IndexerURL:   v.GetString("indexer-url"),
		OracleURL:    v.GetString("oracle-url"),
		LCDURL:       v.GetString("lcd-url"),
		PGDSN:        v.GetString("pg-dsn"),
		Out:          v.GetString("out"),
		Borrowables:  v.GetString("borrowables"),
		Interval:     v.GetDuration("interval"),
		Notional:     v.GetString("notional"),
		MaxHops:      v.GetInt("max-hops"),
		MinProfit:    v.GetString("min-profit"),
		GasStable:    v.GetString("gas-stable"),
		GasConstProd: v.GetString("gas-constant-product"),
		MetricsAddr:  v.GetString("metrics-addr"),
		HTTPTimeout:  v.GetDuration("http-timeout"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		LogLevel:     v.GetString("log-level"),
	}

	return cfg, nil
}
