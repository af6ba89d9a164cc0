// internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/lsert/zarm-web/internal/popper"
)

// Interface is the read side of the application configuration plus the few
// setters command-line flags need.
type Interface interface {
	Logger() LoggerConfig
	Popper() PopperConfig
	Browser() BrowserConfig

	SetPopperPlacement(placement string)
	SetPopperOffset(px float64)
	SetPopperBoundariesPadding(px float64)
	SetPopperArrowSelector(selector string)
	SetBrowserHeadless(bool)
}

// Config holds the whole configuration. Fields are reached through the
// Interface getters.
type Config struct {
	logger  LoggerConfig
	popper  PopperConfig
	browser BrowserConfig
}

// fileConfig mirrors Config with exported fields so viper can decode into it.
type fileConfig struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Popper  PopperConfig  `mapstructure:"popper" yaml:"popper"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
}

func (c *Config) Logger() LoggerConfig   { return c.logger }
func (c *Config) Popper() PopperConfig   { return c.popper }
func (c *Config) Browser() BrowserConfig { return c.browser }

func (c *Config) SetPopperPlacement(p string)           { c.popper.Placement = p }
func (c *Config) SetPopperOffset(px float64)            { c.popper.Offset = px }
func (c *Config) SetPopperBoundariesPadding(px float64) { c.popper.BoundariesPadding = px }
func (c *Config) SetPopperArrowSelector(s string)       { c.popper.ArrowSelector = s }
func (c *Config) SetBrowserHeadless(b bool)             { c.browser.Headless = b }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig names the terminal colour of each log level.
type ColorConfig struct {
	Debug string `mapstructure:"debug" yaml:"debug"`
	Info  string `mapstructure:"info" yaml:"info"`
	Warn  string `mapstructure:"warn" yaml:"warn"`
	Error string `mapstructure:"error" yaml:"error"`
	Fatal string `mapstructure:"fatal" yaml:"fatal"`
}

// PopperConfig holds the default positioning options.
type PopperConfig struct {
	Placement            string        `mapstructure:"placement" yaml:"placement"`
	Offset               float64       `mapstructure:"offset" yaml:"offset"`
	BoundariesPadding    float64       `mapstructure:"boundaries_padding" yaml:"boundaries_padding"`
	PreventOverflowOrder []string      `mapstructure:"prevent_overflow_order" yaml:"prevent_overflow_order"`
	ArrowSelector        string        `mapstructure:"arrow_selector" yaml:"arrow_selector"`
	Modifiers            []string      `mapstructure:"modifiers" yaml:"modifiers"`
	RemoveOnDestroy      bool          `mapstructure:"remove_on_destroy" yaml:"remove_on_destroy"`
	MinUpdateInterval    time.Duration `mapstructure:"min_update_interval" yaml:"min_update_interval"`
}

// ViewportConfig is the browser window size in CSS pixels.
type ViewportConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// BrowserConfig holds settings for the headless browser used by watch.
type BrowserConfig struct {
	Headless          bool           `mapstructure:"headless" yaml:"headless"`
	Args              []string       `mapstructure:"args" yaml:"args"`
	Viewport          ViewportConfig `mapstructure:"viewport" yaml:"viewport"`
	NavigationTimeout time.Duration  `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	cfg, err := decode(v)
	if err != nil {
		// Defaults always decode.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return cfg
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "zarm-popper")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 20)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Popper --
	defaults := popper.DefaultOptions()
	order := make([]string, 0, len(defaults.PreventOverflowOrder))
	for _, s := range defaults.PreventOverflowOrder {
		order = append(order, string(s))
	}
	v.SetDefault("popper.placement", defaults.Placement.String())
	v.SetDefault("popper.offset", defaults.Offset)
	v.SetDefault("popper.boundaries_padding", defaults.BoundariesPadding)
	v.SetDefault("popper.prevent_overflow_order", order)
	v.SetDefault("popper.arrow_selector", defaults.ArrowSelector)
	v.SetDefault("popper.modifiers", append([]string(nil), popper.DefaultModifierNames...))
	v.SetDefault("popper.remove_on_destroy", false)
	v.SetDefault("popper.min_update_interval", "0s")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.args", []string{})
	v.SetDefault("browser.viewport.width", 1280)
	v.SetDefault("browser.viewport.height", 720)
	v.SetDefault("browser.navigation_timeout", "30s")
}

// NewConfigFromViper decodes and validates the configuration held by v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &Config{logger: fc.Logger, popper: fc.Popper, browser: fc.Browser}, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if _, err := c.popper.PopperOptions(); err != nil {
		return fmt.Errorf("popper: %w", err)
	}
	if c.browser.Viewport.Width <= 0 || c.browser.Viewport.Height <= 0 {
		return fmt.Errorf("browser.viewport dimensions must be positive, got %dx%d",
			c.browser.Viewport.Width, c.browser.Viewport.Height)
	}
	if c.browser.NavigationTimeout < 0 {
		return fmt.Errorf("browser.navigation_timeout must not be negative")
	}
	return nil
}

// PopperOptions converts the section into popper options, validating it on
// the way.
func (p PopperConfig) PopperOptions() (popper.Options, error) {
	opts := popper.DefaultOptions()

	placement, err := popper.ParsePlacement(p.Placement)
	if err != nil {
		return opts, err
	}
	opts.Placement = placement

	if p.BoundariesPadding < 0 {
		return opts, fmt.Errorf("boundaries_padding must not be negative, got %v", p.BoundariesPadding)
	}
	if p.MinUpdateInterval < 0 {
		return opts, fmt.Errorf("min_update_interval must not be negative, got %s", p.MinUpdateInterval)
	}
	opts.Offset = p.Offset
	opts.BoundariesPadding = p.BoundariesPadding
	opts.MinUpdateInterval = p.MinUpdateInterval
	opts.RemoveOnDestroy = p.RemoveOnDestroy

	if p.PreventOverflowOrder != nil {
		seen := make(map[popper.Side]bool, len(p.PreventOverflowOrder))
		order := make([]popper.Side, 0, len(p.PreventOverflowOrder))
		for _, raw := range p.PreventOverflowOrder {
			side, err := popper.ParseSide(raw)
			if err != nil {
				return opts, fmt.Errorf("prevent_overflow_order: %w", err)
			}
			if seen[side] {
				return opts, fmt.Errorf("prevent_overflow_order: %q listed twice", raw)
			}
			seen[side] = true
			order = append(order, side)
		}
		opts.PreventOverflowOrder = order
	}
	if p.ArrowSelector != "" {
		opts.ArrowSelector = p.ArrowSelector
	}
	if p.Modifiers != nil {
		opts.Modifiers = popper.NamedModifiers(p.Modifiers...)
	}
	return opts, nil
}
