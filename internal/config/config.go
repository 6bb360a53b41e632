package config

import (
	"os"
	"strings"
	"time"

	"codeberg.org/mutker/picoctl/internal/errors"
	"codeberg.org/mutker/picoctl/internal/governor"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel = "info"

	defaultChip            = "rp2350"
	defaultTickInterval    = 5   // ms between host loop iterations
	defaultSamplePeriod    = 200 // ms
	defaultScaleInterval   = 100 // ms
	defaultSmoothing       = 0.3
	defaultThermalWarn     = 70.0
	defaultThermalCritical = 80.0
	defaultThermalRelease  = 60.0
	defaultTurboMax        = 10000 // ms
	defaultBoostDuration   = 300   // ms
	defaultDatabase        = "/var/lib/picoctl/telemetry.db"
	defaultMQTTTopic       = "picoctl/status"
)

type Config struct {
	Chip          string  `mapstructure:"chip"`
	TickInterval  int     `mapstructure:"tick_interval"`
	SamplePeriod  int     `mapstructure:"sample_period"`
	ScaleInterval int     `mapstructure:"scale_interval"`
	Smoothing     float64 `mapstructure:"smoothing"`

	ThermalWarn     float64 `mapstructure:"thermal_warn"`
	ThermalCritical float64 `mapstructure:"thermal_critical"`
	ThermalRelease  float64 `mapstructure:"thermal_release"`

	TurboMax      int `mapstructure:"turbo_max"`
	BoostDuration int `mapstructure:"boost_duration"`

	Console bool `mapstructure:"console"`

	Telemetry bool   `mapstructure:"telemetry"`
	Database  string `mapstructure:"database"`

	MQTTBroker string `mapstructure:"mqtt_broker"`
	MQTTTopic  string `mapstructure:"mqtt_topic"`

	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration from .env, picoctl.toml, PICOCTL_* environment
// variables and command line flags, in ascending priority.
func Load() (*Config, error) {
	errFactory := errors.New()

	// A local .env is a convenience for development; its absence is fine.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	flags := pflag.NewFlagSet("picoctl", pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.String("chip", defaultChip, "Chip variant (rp2040 or rp2350)")
	flags.Int("tick-interval", defaultTickInterval, "Host loop interval in milliseconds")
	flags.Bool("console", false, "Enable the interactive console")
	flags.Bool("telemetry", false, "Enable telemetry recording")
	flags.String("database", defaultDatabase, "Path to the telemetry database")
	flags.String("mqtt-broker", "", "MQTT broker URL for state publishing")
	flags.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			v.Set(strings.ReplaceAll(f.Name, "-", "_"), f.Value.String())
		}
	})

	v.SetEnvPrefix("PICOCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := os.Getenv("PICOCTL_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("picoctl")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		v.AddConfigPath("$XDG_CONFIG_HOME/picoctl")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("chip", defaultChip)
	v.SetDefault("tick_interval", defaultTickInterval)
	v.SetDefault("sample_period", defaultSamplePeriod)
	v.SetDefault("scale_interval", defaultScaleInterval)
	v.SetDefault("smoothing", defaultSmoothing)
	v.SetDefault("thermal_warn", defaultThermalWarn)
	v.SetDefault("thermal_critical", defaultThermalCritical)
	v.SetDefault("thermal_release", defaultThermalRelease)
	v.SetDefault("turbo_max", defaultTurboMax)
	v.SetDefault("boost_duration", defaultBoostDuration)
	v.SetDefault("console", false)
	v.SetDefault("telemetry", false)
	v.SetDefault("database", defaultDatabase)
	v.SetDefault("mqtt_broker", "")
	v.SetDefault("mqtt_topic", defaultMQTTTopic)
	v.SetDefault("log_level", DefaultLogLevel)
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	if _, err := c.ChipVariant(); err != nil {
		return err
	}

	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	if c.TickInterval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.TickInterval)
	}

	if !(c.ThermalRelease < c.ThermalWarn && c.ThermalWarn <= c.ThermalCritical) {
		return errFactory.WithMessage(errors.ErrInvalidConfig,
			"thermal thresholds must satisfy release < warn <= critical")
	}

	if c.Telemetry && c.Database == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "telemetry enabled without database path")
	}

	return nil
}

// ChipVariant maps the configured chip name onto a governor chip.
func (c *Config) ChipVariant() (governor.Chip, error) {
	switch strings.ToLower(c.Chip) {
	case "rp2040":
		return governor.ChipRP2040, nil
	case "rp2350":
		return governor.ChipRP2350, nil
	default:
		return 0, errors.New().WithData(errors.ErrInvalidConfig, c.Chip)
	}
}

// GovernorParams converts the configured tunables into governor params.
// Zero or missing values fall back to the governor defaults.
func (c *Config) GovernorParams() governor.Params {
	p := governor.DefaultParams()
	p.SamplePeriod = time.Duration(c.SamplePeriod) * time.Millisecond
	p.ScaleInterval = time.Duration(c.ScaleInterval) * time.Millisecond
	p.Smoothing = c.Smoothing
	p.ThermalWarn = c.ThermalWarn
	p.ThermalCritical = c.ThermalCritical
	p.ThermalRelease = c.ThermalRelease
	p.TurboMax = time.Duration(c.TurboMax) * time.Millisecond
	p.BoostDuration = time.Duration(c.BoostDuration) * time.Millisecond

	return p
}
