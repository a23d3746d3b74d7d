// Package config loads pathgen settings from defaults, an optional
// config file, PATHGEN_* environment variables and command line flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/paulhankin/pathgen/paths"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config holds all pathgen configuration.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Generalize GeneralizeConfig `mapstructure:"generalize"`
	Projection ProjectionConfig `mapstructure:"projection"`
	Server     ServerConfig     `mapstructure:"server"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type GeneralizeConfig struct {
	Tolerance   float64  `mapstructure:"tolerance"`
	Window      int      `mapstructure:"window"`
	HighQuality bool     `mapstructure:"high_quality"`
	Order       string   `mapstructure:"order"`
	Layers      []string `mapstructure:"layers"`
}

// ProjectionConfig positions geographic input on the screen. With
// AutoCenter set, the center is the centroid of the input tracks.
type ProjectionConfig struct {
	Zoom       float64 `mapstructure:"zoom"`
	Width      float64 `mapstructure:"width"`
	Height     float64 `mapstructure:"height"`
	CenterLat  float64 `mapstructure:"center_lat"`
	CenterLon  float64 `mapstructure:"center_lon"`
	AutoCenter bool    `mapstructure:"auto_center"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	BodyLimit       int           `mapstructure:"body_limit"`
}

// SetDefaults installs the default value of every setting.
func SetDefaults(v *viper.Viper) {
	d := paths.DefaultOptions()
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("generalize.tolerance", d.Tolerance)
	v.SetDefault("generalize.window", d.Window)
	v.SetDefault("generalize.high_quality", d.HighQuality)
	v.SetDefault("generalize.order", d.Order.String())
	v.SetDefault("generalize.layers", []string{"all"})
	v.SetDefault("projection.zoom", 14)
	v.SetDefault("projection.width", 1024)
	v.SetDefault("projection.height", 768)
	v.SetDefault("projection.center_lat", 0)
	v.SetDefault("projection.center_lon", 0)
	v.SetDefault("projection.auto_center", true)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.body_limit", 4*1024*1024)
}

// New returns a viper instance with defaults and environment
// variables set up: PATHGEN_SERVER_ADDR overrides server.addr.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("PATHGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file, if any, and returns the validated
// configuration. An empty file means pathgen.yaml in the working
// directory, which need not exist.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", file)
		}
	} else {
		v.SetConfigName("pathgen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errors.Wrap(err, "read config")
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Options converts the generalize settings.
func (c *Config) Options() (*paths.Options, error) {
	order, err := paths.ParseOrder(c.Generalize.Order)
	if err != nil {
		return nil, err
	}
	layers, err := paths.ParseLayers(c.Generalize.Layers...)
	if err != nil {
		return nil, err
	}
	o := &paths.Options{
		Tolerance:   c.Generalize.Tolerance,
		Window:      c.Generalize.Window,
		HighQuality: c.Generalize.HighQuality,
		Order:       order,
		Layers:      layers,
	}
	return o, o.Validate()
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs []string

	if _, err := c.Options(); err != nil {
		errs = append(errs, fmt.Sprintf("generalize: %v", err))
	}
	if len(c.Generalize.Layers) == 0 {
		errs = append(errs, "generalize.layers must name at least one layer")
	}
	if c.Projection.Zoom < 0 || c.Projection.Zoom > 30 {
		errs = append(errs, fmt.Sprintf("projection.zoom must be 0-30, got %g", c.Projection.Zoom))
	}
	if c.Projection.Width <= 0 || c.Projection.Height <= 0 {
		errs = append(errs, "projection.width and projection.height must be positive")
	}
	if c.Projection.CenterLat < -90 || c.Projection.CenterLat > 90 {
		errs = append(errs, fmt.Sprintf("projection.center_lat must be -90..90, got %g", c.Projection.CenterLat))
	}
	if c.Projection.CenterLon < -180 || c.Projection.CenterLon > 180 {
		errs = append(errs, fmt.Sprintf("projection.center_lon must be -180..180, got %g", c.Projection.CenterLon))
	}
	if c.Server.Addr == "" {
		errs = append(errs, "server.addr is required")
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.read_timeout and server.write_timeout must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "server.shutdown_timeout must be positive")
	}
	if c.Server.BodyLimit <= 0 {
		errs = append(errs, "server.body_limit must be positive")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be console or json, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
