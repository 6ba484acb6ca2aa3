package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"farmScope/internal/liquidity"
	"farmScope/internal/prices"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	// RPC maps chain names to JSON-RPC endpoints.
	RPC          map[string]string
	Chain        string
	LiquidityAPI string
	PriceAPI     string
	HTTPTimeout  time.Duration
	Out          string
	PGDSN        string
	Listen       string
	LogLevel     string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FARMSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("chain", "base")
	v.SetDefault("liquidity-api", liquidity.DefaultBaseURL)
	v.SetDefault("price-api", prices.DefaultBaseURL)
	v.SetDefault("http-timeout", 30*time.Second)
	v.SetDefault("listen", ":8080")
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
		RPC:          lowerKeys(getStringMap(v, "rpc")),
		Chain:        strings.TrimSpace(v.GetString("chain")),
		LiquidityAPI: v.GetString("liquidity-api"),
		PriceAPI:     v.GetString("price-api"),
		HTTPTimeout:  v.GetDuration("http-timeout"),
		Out:          v.GetString("out"),
		PGDSN:        v.GetString("pg-dsn"),
		Listen:       v.GetString("listen"),
		LogLevel:     v.GetString("log-level"),
	}
	if cfg.HTTPTimeout <= 0 {
		return Config{}, fmt.Errorf("http-timeout must be positive, got %s", cfg.HTTPTimeout)
	}

	return cfg, nil
}

func getStringMap(v *viper.Viper, key string) map[string]string {
	if !v.IsSet(key) {
		return map[string]string{}
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case map[string]string:
		return typed
	case map[string]interface{}:
		out := make(map[string]string, len(typed))
		for k, v := range typed {
			out[k] = fmt.Sprintf("%v", v)
		}
		return out
	case []string:
		return parseStringMap(strings.Join(typed, ","))
	case string:
		return parseStringMap(typed)
	default:
		return map[string]string{}
	}
}

func parseStringMap(input string) map[string]string {
	out := make(map[string]string)
	if strings.TrimSpace(input) == "" {
		return out
	}
	pairs := strings.Split(input, ",")
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return out
}

func lowerKeys(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[strings.ToLower(k)] = v
	}
	return out
}
