package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// DefaultTickers is the universe used when none is configured.
var DefaultTickers = []string{"MSFT", "AAPL", "NVDA", "AMZN", "GOOG", "META", "TSLA"}

// Config holds all application configuration.
type Config struct {
	Tickers   []string `yaml:"tickers"`
	StartDate string   `yaml:"start_date"`
	EndDate   string   `yaml:"end_date"`
	Backtest  struct {
		Window         int     `yaml:"window"`
		BandK          float64 `yaml:"band_k"`
		InitialCapital float64 `yaml:"initial_capital"`
	} `yaml:"backtest"`
	DataSource struct {
		Provider  string        `yaml:"provider"` // yahoo, alpaca, rest, mock
		BaseURL   string        `yaml:"base_url"`
		APIKey    string        `yaml:"api_key"`
		APISecret string        `yaml:"api_secret"`
		Timeout   time.Duration `yaml:"timeout"`
		Retries   int           `yaml:"retries"` // 0 means default, negative disables retries
	} `yaml:"data_source"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		TextfilePath string `yaml:"textfile_path"`
	} `yaml:"metrics"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
	Output struct {
		Format string `yaml:"format"` // text or json
	} `yaml:"output"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, loads a .env file when present, then applies
// environment variable overrides and defaults. A missing config file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("TICKERS"); v != "" {
		cfg.Tickers = splitTickers(v)
	}
	if v := os.Getenv("START_DATE"); v != "" {
		cfg.StartDate = v
	}
	if v := os.Getenv("END_DATE"); v != "" {
		cfg.EndDate = v
	}
	if v := os.Getenv("BOLLINGER_WINDOW"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BOLLINGER_WINDOW: %w", err)
		}
		cfg.Backtest.Window = n
	}
	if v := os.Getenv("BOLLINGER_K"); v != "" {
		k, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("BOLLINGER_K: %w", err)
		}
		cfg.Backtest.BandK = k
	}
	if v := os.Getenv("INITIAL_CAPITAL"); v != "" {
		c, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("INITIAL_CAPITAL: %w", err)
		}
		cfg.Backtest.InitialCapital = c
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	// Standard Alpaca SDK variable names.
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.DataSource.APISecret = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("METRICS_TEXTFILE"); v != "" {
		cfg.Metrics.TextfilePath = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("OUTPUT_FORMAT"); v != "" {
		cfg.Output.Format = v
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if len(cfg.Tickers) == 0 {
		cfg.Tickers = append([]string(nil), DefaultTickers...)
	}
	if cfg.StartDate == "" {
		cfg.StartDate = "2013-01-01"
	}
	if cfg.EndDate == "" {
		cfg.EndDate = "2023-12-31"
	}
	if cfg.Backtest.Window == 0 {
		cfg.Backtest.Window = 20
	}
	if cfg.Backtest.BandK == 0 {
		cfg.Backtest.BandK = 2
	}
	if cfg.Backtest.InitialCapital == 0 {
		cfg.Backtest.InitialCapital = 10000
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	if cfg.DataSource.Timeout == 0 {
		cfg.DataSource.Timeout = 30 * time.Second
	}
	switch {
	case cfg.DataSource.Retries == 0:
		cfg.DataSource.Retries = 2
	case cfg.DataSource.Retries < 0:
		cfg.DataSource.Retries = 0
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = "text"
	}
}

// Validate checks that the configuration describes a runnable backtest.
func (c *Config) Validate() error {
	if len(c.Tickers) == 0 {
		return fmt.Errorf("at least one ticker is required")
	}
	start, end, err := c.DateRange()
	if err != nil {
		return err
	}
	if !start.Before(end) {
		return fmt.Errorf("start_date %s must be before end_date %s", c.StartDate, c.EndDate)
	}
	if c.Backtest.Window < 2 {
		return fmt.Errorf("backtest.window must be at least 2")
	}
	if c.Backtest.BandK <= 0 {
		return fmt.Errorf("backtest.band_k must be positive")
	}
	if c.Backtest.InitialCapital <= 0 {
		return fmt.Errorf("backtest.initial_capital must be positive")
	}
	if c.DataSource.Timeout <= 0 {
		return fmt.Errorf("data_source.timeout must be positive")
	}
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "alpaca":
		if c.DataSource.APIKey == "" || c.DataSource.APISecret == "" {
			return fmt.Errorf("alpaca provider requires data_source.api_key and data_source.api_secret")
		}
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("rest provider requires data_source.base_url")
		}
	default:
		return fmt.Errorf("unknown data_source.provider %q", c.DataSource.Provider)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	switch c.Output.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown output.format %q", c.Output.Format)
	}
	return nil
}

// DateRange parses start_date and end_date as UTC calendar dates.
func (c *Config) DateRange() (start, end time.Time, err error) {
	start, err = time.Parse(dateLayout, c.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse start_date: %w", err)
	}
	end, err = time.Parse(dateLayout, c.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse end_date: %w", err)
	}
	return start, end, nil
}

// TelegramEnabled reports whether run summaries should be sent to Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

func splitTickers(v string) []string {
	var out []string
	for _, t := range strings.Split(v, ",") {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}
