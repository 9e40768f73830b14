// Package config loads studybuddy settings from defaults, an optional YAML
// file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	AppEnv    string `mapstructure:"app_env"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// Storage. An empty DatabaseURL selects local SQLite.
	DatabaseURL string `mapstructure:"database_url"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	RedisURL    string `mapstructure:"redis_url"`

	RabbitMQURL string `mapstructure:"rabbitmq_url"`

	Scoring  ScoringConfig  `mapstructure:"scoring"`
	Planning PlanningConfig `mapstructure:"planning"`
	Focus    FocusConfig    `mapstructure:"focus"`
	CalDAV   CalDAVConfig   `mapstructure:"caldav"`
	Outbox   OutboxConfig   `mapstructure:"outbox"`

	MCPAddr      string `mapstructure:"mcp_addr"`
	MCPAuthToken string `mapstructure:"mcp_auth_token"`

	// WorkerHealthAddr serves /healthz and /readyz from the worker when set.
	WorkerHealthAddr string `mapstructure:"worker_health_addr"`

	// ConfigFile is the YAML file that was read, empty when none was found.
	ConfigFile string `mapstructure:"-"`
}

// ScoringConfig holds the priority exponents and the urgency decay rate.
type ScoringConfig struct {
	UrgencyWeight    float64 `mapstructure:"urgency_weight"`
	ImportanceWeight float64 `mapstructure:"importance_weight"`
	MagnitudeWeight  float64 `mapstructure:"magnitude_weight"`
	DecayPerDay      float64 `mapstructure:"decay_per_day"`
}

// PlanningConfig controls how scored tasks are packed into days.
type PlanningConfig struct {
	DailyCapacity     time.Duration `mapstructure:"daily_capacity"`
	BlockLength       time.Duration `mapstructure:"block_length"`
	BreakLength       time.Duration `mapstructure:"break_length"`
	BlocksBeforeBreak int           `mapstructure:"blocks_before_break"`
	DayStart          string        `mapstructure:"day_start"`
}

// FocusConfig holds pomodoro lengths and the presence source.
type FocusConfig struct {
	WorkInterval   time.Duration `mapstructure:"work_interval"`
	ShortBreak     time.Duration `mapstructure:"short_break"`
	LongBreak      time.Duration `mapstructure:"long_break"`
	LongBreakEvery int           `mapstructure:"long_break_every"`
	TickInterval   time.Duration `mapstructure:"tick_interval"`
	PresenceFile   string        `mapstructure:"presence_file"`
}

// CalDAVConfig points the schedule export at a CalDAV collection.
type CalDAVConfig struct {
	URL          string `mapstructure:"url"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Token        string `mapstructure:"token"`
	CalendarPath string `mapstructure:"calendar_path"`
}

// Enabled reports whether a CalDAV endpoint is configured.
func (c CalDAVConfig) Enabled() bool {
	return c.URL != ""
}

// OutboxConfig tunes the event outbox processor.
type OutboxConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
	MaxRetries   int           `mapstructure:"max_retries"`
	// Retention is how long published messages are kept before the
	// worker prunes them.
	Retention time.Duration `mapstructure:"retention"`
}

// Load reads configuration using $STUDYBUDDY_CONFIG as the file, if set.
func Load() (*Config, error) {
	return LoadFile(os.Getenv("STUDYBUDDY_CONFIG"))
}

// LoadFile reads configuration from path. An empty path searches for
// studybuddy.yaml in the working directory and in ~/.studybuddy, and a
// missing file there is not an error.
func LoadFile(path string) (*Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("studybuddy")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(HomeDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetDefault("scoring.urgency_weight", 2.0)
	v.SetDefault("scoring.importance_weight", 1.5)
	v.SetDefault("scoring.magnitude_weight", 0.5)
	v.SetDefault("scoring.decay_per_day", 0.1)

	v.SetDefault("planning.daily_capacity", "5h")
	v.SetDefault("planning.block_length", "1h")
	v.SetDefault("planning.break_length", "10m")
	v.SetDefault("planning.blocks_before_break", 2)
	v.SetDefault("planning.day_start", "09:00")

	v.SetDefault("focus.work_interval", "25m")
	v.SetDefault("focus.short_break", "5m")
	v.SetDefault("focus.long_break", "15m")
	v.SetDefault("focus.long_break_every", 4)
	v.SetDefault("focus.tick_interval", "1s")

	v.SetDefault("caldav.calendar_path", "")

	v.SetDefault("outbox.poll_interval", "500ms")
	v.SetDefault("outbox.batch_size", 100)
	v.SetDefault("outbox.max_retries", 5)
	v.SetDefault("outbox.retention", "168h")

	v.SetDefault("mcp_addr", "127.0.0.1:8765")
}

func (c *Config) applyEnv() {
	c.AppEnv = getEnv("APP_ENV", c.AppEnv)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)

	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.RabbitMQURL = getEnv("RABBITMQ_URL", c.RabbitMQURL)

	c.Scoring.UrgencyWeight = getFloatEnv("STUDYBUDDY_URGENCY_WEIGHT", c.Scoring.UrgencyWeight)
	c.Scoring.ImportanceWeight = getFloatEnv("STUDYBUDDY_IMPORTANCE_WEIGHT", c.Scoring.ImportanceWeight)
	c.Scoring.MagnitudeWeight = getFloatEnv("STUDYBUDDY_MAGNITUDE_WEIGHT", c.Scoring.MagnitudeWeight)
	c.Scoring.DecayPerDay = getFloatEnv("STUDYBUDDY_DECAY_PER_DAY", c.Scoring.DecayPerDay)

	c.Planning.DailyCapacity = getDurationEnv("STUDYBUDDY_DAILY_CAPACITY", c.Planning.DailyCapacity)
	c.Planning.BlockLength = getDurationEnv("STUDYBUDDY_BLOCK_LENGTH", c.Planning.BlockLength)
	c.Planning.BreakLength = getDurationEnv("STUDYBUDDY_BREAK_LENGTH", c.Planning.BreakLength)
	c.Planning.BlocksBeforeBreak = getIntEnv("STUDYBUDDY_BLOCKS_BEFORE_BREAK", c.Planning.BlocksBeforeBreak)
	c.Planning.DayStart = getEnv("STUDYBUDDY_DAY_START", c.Planning.DayStart)

	c.Focus.WorkInterval = getDurationEnv("STUDYBUDDY_WORK_INTERVAL", c.Focus.WorkInterval)
	c.Focus.ShortBreak = getDurationEnv("STUDYBUDDY_SHORT_BREAK", c.Focus.ShortBreak)
	c.Focus.LongBreak = getDurationEnv("STUDYBUDDY_LONG_BREAK", c.Focus.LongBreak)
	c.Focus.LongBreakEvery = getIntEnv("STUDYBUDDY_LONG_BREAK_EVERY", c.Focus.LongBreakEvery)
	c.Focus.PresenceFile = getEnv("STUDYBUDDY_PRESENCE_FILE", c.Focus.PresenceFile)

	c.CalDAV.URL = getEnv("CALDAV_URL", c.CalDAV.URL)
	c.CalDAV.Username = getEnv("CALDAV_USERNAME", c.CalDAV.Username)
	c.CalDAV.Password = getEnv("CALDAV_PASSWORD", c.CalDAV.Password)
	c.CalDAV.Token = getEnv("CALDAV_TOKEN", c.CalDAV.Token)
	c.CalDAV.CalendarPath = getEnv("CALDAV_CALENDAR_PATH", c.CalDAV.CalendarPath)

	c.Outbox.PollInterval = getDurationEnv("OUTBOX_POLL_INTERVAL", c.Outbox.PollInterval)
	c.Outbox.BatchSize = getIntEnv("OUTBOX_BATCH_SIZE", c.Outbox.BatchSize)
	c.Outbox.MaxRetries = getIntEnv("OUTBOX_MAX_RETRIES", c.Outbox.MaxRetries)
	c.Outbox.Retention = getDurationEnv("OUTBOX_RETENTION", c.Outbox.Retention)

	c.MCPAddr = getEnv("MCP_ADDR", c.MCPAddr)
	c.MCPAuthToken = getEnv("MCP_AUTH_TOKEN", c.MCPAuthToken)
	c.WorkerHealthAddr = getEnv("WORKER_HEALTH_ADDR", c.WorkerHealthAddr)
}

// Validate rejects settings the planner and timer cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if c.Scoring.UrgencyWeight < 0 || c.Scoring.ImportanceWeight < 0 || c.Scoring.MagnitudeWeight < 0 {
		errs = append(errs, errors.New("scoring weights must be non-negative"))
	}
	if c.Scoring.DecayPerDay < 0 {
		errs = append(errs, errors.New("scoring.decay_per_day must be non-negative"))
	}
	if c.Planning.DailyCapacity <= 0 {
		errs = append(errs, errors.New("planning.daily_capacity must be positive"))
	}
	if c.Planning.BlockLength < 0 || c.Planning.BreakLength < 0 || c.Planning.BlocksBeforeBreak < 0 {
		errs = append(errs, errors.New("planning block and break settings must be non-negative"))
	}
	if _, err := c.Planning.DayStartOffset(); err != nil {
		errs = append(errs, err)
	}
	if c.Focus.WorkInterval <= 0 || c.Focus.LongBreakEvery <= 0 {
		errs = append(errs, errors.New("focus.work_interval and focus.long_break_every must be positive"))
	}
	return errors.Join(errs...)
}

// DayStartOffset parses DayStart ("HH:MM") into an offset from midnight.
func (p PlanningConfig) DayStartOffset() (time.Duration, error) {
	t, err := time.Parse("15:04", p.DayStart)
	if err != nil {
		return 0, fmt.Errorf("planning.day_start %q: want HH:MM", p.DayStart)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// IsDevelopment returns true in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// HomeDir returns the studybuddy state directory, ~/.studybuddy.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".studybuddy"
	}
	return filepath.Join(home, ".studybuddy")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
