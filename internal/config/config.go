package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither -config nor CONFIG_PATH is given.
const DefaultPath = "configs/config.yaml"

// WatchJob is a query re-run on a cron schedule.
type WatchJob struct {
	Name  string `yaml:"name" validate:"required"`
	Cron  string `yaml:"cron" validate:"required"`
	Query string `yaml:"query" validate:"required"`
}

// Config holds all application configuration.
type Config struct {
	Market struct {
		Source            string        `yaml:"source" validate:"oneof=yahoo rest mock"`
		BaseURL           string        `yaml:"base_url"`
		APIKey            string        `yaml:"api_key"`
		Days              int           `yaml:"days" validate:"gte=1,lte=365"`
		RetryBackoff      time.Duration `yaml:"retry_backoff" validate:"gte=0"`
		RequestsPerSecond int           `yaml:"requests_per_second" validate:"gte=0"`
		FlatBand          float64       `yaml:"flat_band" validate:"gte=0,lt=1"`
	} `yaml:"market"`
	News struct {
		Sources       []string `yaml:"sources" validate:"min=1,dive,oneof=yahoo rss finnhub"`
		MaxArticles   int      `yaml:"max_articles" validate:"gte=1,lte=50"`
		FinnhubAPIKey string   `yaml:"finnhub_api_key"`
	} `yaml:"news"`
	Sentiment struct {
		ModelPath string `yaml:"model_path"`
		SaveModel bool   `yaml:"save_model"`
		TieBreak  string `yaml:"tie_break" validate:"oneof=positive negative neutral"`
	} `yaml:"sentiment"`
	LLM struct {
		Provider     string        `yaml:"provider" validate:"oneof=openai anthropic"`
		BaseURL      string        `yaml:"base_url" validate:"omitempty,url"`
		Model        string        `yaml:"model" validate:"required"`
		APIKey       string        `yaml:"api_key"`
		Timeout      time.Duration `yaml:"timeout" validate:"gt=0"`
		HistoryTurns int           `yaml:"history_turns" validate:"gte=0,lte=20"`
		MaxTokens    int64         `yaml:"max_tokens" validate:"gte=0"`
	} `yaml:"llm"`
	Extraction struct {
		Aliases map[string]string `yaml:"aliases"`
		Ignore  []string          `yaml:"ignore"`
	} `yaml:"extraction"`
	Parallel bool `yaml:"parallel"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Watch struct {
		RunOnStart bool       `yaml:"run_on_start"`
		Jobs       []WatchJob `yaml:"jobs" validate:"dive"`
	} `yaml:"watch"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides and defaults.
// A missing file is not an error.
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

	// Environment variable overrides
	if v := os.Getenv("MARKET_BASE_URL"); v != "" {
		cfg.Market.BaseURL = v
	}
	if v := os.Getenv("MARKET_API_KEY"); v != "" {
		cfg.Market.APIKey = v
	}
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		cfg.News.FinnhubAPIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "anthropic":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		default:
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("ANALYST_PARALLEL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Parallel = b
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Market.Source == "" {
		if c.Market.BaseURL != "" {
			c.Market.Source = "rest"
		} else {
			c.Market.Source = "yahoo"
		}
	}
	if c.Market.Days == 0 {
		c.Market.Days = 7
	}
	if c.Market.RetryBackoff == 0 {
		c.Market.RetryBackoff = time.Second
	}
	if c.Market.RequestsPerSecond == 0 {
		c.Market.RequestsPerSecond = 2
	}
	if c.Market.FlatBand == 0 {
		c.Market.FlatBand = 0.005
	}
	if len(c.News.Sources) == 0 {
		c.News.Sources = []string{"yahoo", "rss", "finnhub"}
	}
	if c.News.MaxArticles == 0 {
		c.News.MaxArticles = 5
	}
	if c.Sentiment.ModelPath == "" {
		c.Sentiment.ModelPath = "data/sentiment_model.json"
	}
	if c.Sentiment.TieBreak == "" {
		c.Sentiment.TieBreak = "neutral"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.Model == "" {
		if c.LLM.Provider == "anthropic" {
			c.LLM.Model = "claude-3-5-haiku-latest"
		} else {
			c.LLM.Model = "llama3"
		}
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 120 * time.Second
	}
	if c.LLM.HistoryTurns == 0 {
		c.LLM.HistoryTurns = 3
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 1500
	}
}

// Validate checks field ranges, then the rules that span several fields.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Market.Source == "rest" && c.Market.BaseURL == "" {
		return fmt.Errorf("market.base_url is required when market.source is rest")
	}
	if c.LLM.Provider == "anthropic" && c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key (or ANTHROPIC_API_KEY) is required for the anthropic provider")
	}
	if c.Telegram.ChatID != "" && c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required when telegram.chat_id is set")
	}
	seen := make(map[string]bool)
	for _, j := range c.Watch.Jobs {
		if seen[j.Name] {
			return fmt.Errorf("watch job %q is defined twice", j.Name)
		}
		seen[j.Name] = true
	}
	return nil
}

// TelegramEnabled reports whether outbound delivery is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
