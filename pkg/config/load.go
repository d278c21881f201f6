package config

import (
	"fmt"
	"os"

	"github.com/kaviraj-dev/strikebot/pkg/core"
	"github.com/spf13/viper"
	str2duration "github.com/xhit/go-str2duration/v2"
)

const DefaultConfigPath = "./strikebot.yaml"

// Telegram holds notifier credentials and the authorized chat ids.
type Telegram struct {
	Enabled bool    `mapstructure:"enabled"`
	Token   string  `mapstructure:"token"`
	UserIDs []int64 `mapstructure:"user_ids"`
}

// App is the full process configuration: trading parameters plus the
// ambient concerns (storage, logging, notifications).
type App struct {
	Trading  Trading  `mapstructure:"trading"`
	Telegram Telegram `mapstructure:"telegram"`

	StoragePath string `mapstructure:"storage_path"`
	LogLevel    string `mapstructure:"log_level"`
	LogJSON     bool   `mapstructure:"log_json"`

	// Per-strategy and per-instance overrides keyed by id, resolved
	// through config.Resolver.
	StrategyOverrides map[string]*Overrides `mapstructure:"strategy_overrides"`
	InstanceOverrides map[string]*Overrides `mapstructure:"instance_overrides"`
}

// Load reads configuration from the environment and, when present, the
// YAML file at configPath. Environment variables win over file values.
func Load(configPath string) (*App, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("storage_path", ":memory:")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
	v.SetDefault("telegram.enabled", false)

	app := &App{Trading: DefaultTrading()}

	if configPath == "" {
		configPath = DefaultConfigPath
	}
	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	if err := v.Unmarshal(app); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Env overrides for the secrets and the common knobs.
	if token := v.GetString("TELEGRAM_TOKEN"); token != "" {
		app.Telegram.Token = token
	}
	if v.IsSet("TRADING_INDEX") {
		app.Trading.Index = v.GetString("TRADING_INDEX")
	}
	if v.IsSet("TRADING_MODE") {
		app.Trading.Mode = core.Mode(v.GetString("TRADING_MODE"))
	}
	if v.IsSet("CANDLE_INTERVAL") {
		seconds, err := ParseTimeframe(v.GetString("CANDLE_INTERVAL"))
		if err != nil {
			return nil, err
		}
		app.Trading.CandleInterval = seconds
	}

	if err := app.Trading.Validate(); err != nil {
		return nil, err
	}

	return app, nil
}

// ParseTimeframe converts a duration string such as "15s", "1m" or "5m"
// into whole seconds and checks it against the supported intervals.
func ParseTimeframe(s string) (int, error) {
	d, err := str2duration.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse timeframe %q: %w", s, err)
	}
	seconds := int(d.Seconds())
	if !validTimeframe(seconds) {
		return 0, fmt.Errorf("unsupported timeframe %q, valid: %v", s, ValidTimeframes)
	}
	return seconds, nil
}
