package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"rail-controls/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logging  logging.Config `mapstructure:"logging"`
	Inputs   InputsConfig   `mapstructure:"inputs"`
	Output   OutputConfig   `mapstructure:"output"`
	Database DatabaseConfig `mapstructure:"database"`
	Watch    WatchConfig    `mapstructure:"watch"`
	Alerting AlertingConfig `mapstructure:"alerting"`
	Export   ExportConfig   `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// InputsConfig locates the declarative control set and the transaction batch.
type InputsConfig struct {
	ControlsPath     string `mapstructure:"controls_path"`
	TransactionsPath string `mapstructure:"transactions_path"`
}

// OutputConfig sets where the three output tables are written.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// DatabaseConfig encapsulates the optional PostgreSQL audit sink.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// WatchConfig governs the periodic re-evaluation loop.
type WatchConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	AlignToBucket bool          `mapstructure:"align_to_bucket"`
	StartupDelay  time.Duration `mapstructure:"startup_delay"`
}

// AlertingConfig defines run-summary alert thresholds and routing.
type AlertingConfig struct {
	Enabled          bool           `mapstructure:"enabled"`
	BlockSharePct    float64        `mapstructure:"block_share_pct"`
	TopControlsCount int            `mapstructure:"top_controls"`
	Telegram         TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig holds Telegram delivery parameters.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// ExportConfig sets chart export behaviour.
type ExportConfig struct {
	ChartWidth  int `mapstructure:"chart_width"`
	ChartHeight int `mapstructure:"chart_height"`
	MaxControls int `mapstructure:"max_controls"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RAILCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "railctl")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("inputs.controls_path", "controls/controls.yaml")
	v.SetDefault("inputs.transactions_path", "data/combined_transactions.csv")

	v.SetDefault("output.dir", "data")

	v.SetDefault("watch.interval", "15m")
	v.SetDefault("watch.align_to_bucket", true)
	v.SetDefault("watch.startup_delay", "0s")

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.block_share_pct", 1.0)
	v.SetDefault("alerting.top_controls", 3)
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("export.chart_width", 1280)
	v.SetDefault("export.chart_height", 720)
	v.SetDefault("export.max_controls", 25)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Inputs.ControlsPath == "" {
		return fmt.Errorf("inputs.controls_path must be set")
	}
	if c.Inputs.TransactionsPath == "" {
		return fmt.Errorf("inputs.transactions_path must be set")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir must be set")
	}
	if c.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be greater than zero")
	}
	if c.Alerting.BlockSharePct < 0 {
		return fmt.Errorf("alerting.block_share_pct cannot be negative")
	}
	if c.Export.MaxControls <= 0 {
		return fmt.Errorf("export.max_controls must be greater than zero")
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token must be set")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id must be set")
		}
	}
	return nil
}
