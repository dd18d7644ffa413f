package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	NodeURLs       []string
	AggregatorURL  string
	PostgresDSN    string
	Addresses      []string
	PageSize       int
	SpillThreshold int
	SpillDir       string
	Out            string
	Timeout        time.Duration
	LogLevel       string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ETL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("node-url", []string{
		"https://nodes.wavesnodes.com",
		"https://nodes-keeper.wavesnodes.com",
		"https://nodes.wx.network",
	})
	v.SetDefault("aggregator-url", "https://swapapi.puzzleswap.org")
	v.SetDefault("page-size", 1000)
	v.SetDefault("spill-threshold", 300000)
	v.SetDefault("spill-dir", "./data/tmp")
	v.SetDefault("out", "./data/transactions.jsonl")
	v.SetDefault("timeout", 30*time.Second)
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
		NodeURLs:       getStringSlice(v, "node-url"),
		AggregatorURL:  v.GetString("aggregator-url"),
		PostgresDSN:    v.GetString("pg-dsn"),
		Addresses:      getStringSlice(v, "address"),
		PageSize:       v.GetInt("page-size"),
		SpillThreshold: v.GetInt("spill-threshold"),
		SpillDir:       v.GetString("spill-dir"),
		Out:            v.GetString("out"),
		Timeout:        v.GetDuration("timeout"),
		LogLevel:       v.GetString("log-level"),
	}

	if len(cfg.NodeURLs) == 0 {
		return Config{}, fmt.Errorf("at least one node url is required")
	}

	return cfg, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
