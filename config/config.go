// Package config loads linkaudit settings from defaults, an optional
// linkaudit.yaml, a .env file, LINKAUDIT_* environment variables and
// command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeySite        = "site"
	KeyResultsDir  = "results_dir"
	KeyTimeout     = "timeout"
	KeyMaxInFlight = "max_in_flight"
	KeyRateLimit   = "rate_limit"
	KeyTargetRTT   = "target_rtt"
	KeyUserAgent   = "user_agent"
	KeyParallel    = "parallel"
	KeyFormat      = "format"
	KeyTUI         = "tui"
	KeyLogLevel    = "log_level"
	KeyStrict      = "strict"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LINKAUDIT"

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

var formats = []string{FormatText, FormatJSON, FormatCSV}

// Config is the resolved run configuration.
type Config struct {
	Site        string        `mapstructure:"site"`
	ResultsDir  string        `mapstructure:"results_dir"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxInFlight int           `mapstructure:"max_in_flight"`
	RateLimit   int           `mapstructure:"rate_limit"`
	TargetRTT   time.Duration `mapstructure:"target_rtt"`
	UserAgent   string        `mapstructure:"user_agent"`
	Parallel    int           `mapstructure:"parallel"`
	Format      string        `mapstructure:"format"`
	TUI         bool          `mapstructure:"tui"`
	LogLevel    string        `mapstructure:"log_level"`
}

// Init prepares v: it loads .env, sets defaults, reads the config file and
// binds environment variables. cfgFile overrides the config file lookup;
// when empty, a missing linkaudit.yaml is not an error.
func Init(v *viper.Viper, cfgFile string) error {
	// .env is optional
	_ = godotenv.Load()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("linkaudit")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.BindEnv(KeyStrict, EnvPrefix+"_STRICT", "CI"); err != nil {
		return fmt.Errorf("bind strict env: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeySite, "")
	v.SetDefault(KeyResultsDir, "results")
	v.SetDefault(KeyTimeout, 60*time.Second)
	v.SetDefault(KeyMaxInFlight, 0)
	v.SetDefault(KeyRateLimit, 0)
	v.SetDefault(KeyTargetRTT, time.Duration(0))
	v.SetDefault(KeyUserAgent, "")
	v.SetDefault(KeyParallel, 1)
	v.SetDefault(KeyFormat, FormatText)
	v.SetDefault(KeyTUI, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyStrict, false)
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Site == "" {
		errs = append(errs, errors.New("site is required"))
	}
	if c.ResultsDir == "" {
		errs = append(errs, errors.New("results_dir must not be empty"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if c.MaxInFlight < 0 {
		errs = append(errs, fmt.Errorf("max_in_flight must not be negative, got %d", c.MaxInFlight))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate_limit must not be negative, got %d", c.RateLimit))
	}
	if c.TargetRTT < 0 {
		errs = append(errs, fmt.Errorf("target_rtt must not be negative, got %s", c.TargetRTT))
	}
	if c.Parallel < 1 {
		errs = append(errs, fmt.Errorf("parallel must be at least 1, got %d", c.Parallel))
	}
	if !slices.Contains(formats, c.Format) {
		errs = append(errs, fmt.Errorf("format must be one of %s, got %q", strings.Join(formats, ", "), c.Format))
	}
	return errors.Join(errs...)
}

// StrictFunc returns a reader for the strict flag. It consults v on every
// call so a change to LINKAUDIT_STRICT or CI between pages is observed.
func StrictFunc(v *viper.Viper) func() bool {
	return func() bool {
		return enabled(v.GetString(KeyStrict))
	}
}

// enabled reads a CI-style switch: any non-empty value other than
// false, 0, no or off turns it on, so CI=yes and CI=1 both count.
func enabled(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "false", "0", "no", "off":
		return false
	default:
		return true
	}
}
