package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ScanConfig holds configuration for the one-shot scan command.
type ScanConfig struct {
	Snapshot     string
	Prices       string
	Borrowables  string
	Out          string
	Notional     string
	MaxHops      int
	MinProfit    string
	GasStable    string
	GasConstProd string
	LogLevel     string
}

// LoadScan merges config file, environment variables, and flags into
// ScanConfig.
func LoadScan(cfgFile string, flags *pflag.FlagSet) (ScanConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("ARBITER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("out", "./data/opportunities.jsonl")
	v.SetDefault("borrowables", "./borrowables.json")
	v.SetDefault("notional", "1000")
	v.SetDefault("max-hops", 5)
	v.SetDefault("min-profit", "0")
	v.SetDefault("gas-stable", "3")
	v.SetDefault("gas-constant-product", "2")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return ScanConfig{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return ScanConfig{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return ScanConfig{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := ScanConfig{
		Snapshot:     v.GetString("snapshot"),
		Prices:       v.GetString("prices"),
		Borrowables:  v.GetString("borrowables"),
		Out:          v.GetString("out"),
		Notional:     v.GetString("notional"),
		MaxHops:      v.GetInt("max-hops"),
		MinProfit:    v.GetString("min-profit"),
		GasStable:    v.GetString("gas-stable"),
		GasConstProd: v.GetString("gas-constant-product"),
		LogLevel:     v.GetString("log-level"),
	}

	return cfg, nil
}
