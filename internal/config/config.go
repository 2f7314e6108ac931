package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pzl/doorbee/internal/logger"
	"github.com/pzl/doorbee/internal/watch"
	"github.com/pzl/doorbee/pkg/eco"
)

const (
	configName = "doorbee"
	envPrefix  = "DOORBEE"
)

type Config struct {
	Credentials eco.Credentials
	BaseURL     string
	Timeout     time.Duration
	LogLevel    string
	Watch       watch.Policy
}

// Load reads configuration from, in increasing precedence: defaults, the
// config file, and the environment. A .env file in the working directory is
// loaded into the environment first. An empty path searches . and
// ~/.config/doorbee for doorbee.{yaml,toml,json}; not finding one is fine.
func Load(path string) (Config, error) {
	_ = godotenv.Load() // a missing .env is normal

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("auth.token", eco.EnvAccessToken); err != nil {
		return Config{}, err
	}
	if err := v.BindEnv("auth.refresh", eco.EnvRefreshToken); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/doorbee")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	p := watch.DefaultPolicy()
	v.SetDefault("api.base_url", eco.DefaultBaseURL)
	v.SetDefault("api.timeout", 90*time.Second)
	v.SetDefault("log.level", logger.InfoLevel)
	v.SetDefault("watch.interval", p.Interval)
	v.SetDefault("watch.thermostat", "")
	v.SetDefault("watch.sensor_name", p.SensorName)
	v.SetDefault("watch.sensor_type", p.SensorType)
	v.SetDefault("watch.columns", strings.Join(p.Columns, ","))
	v.SetDefault("watch.closed_mode", p.ClosedMode)
	v.SetDefault("watch.open_mode", p.OpenMode)
	v.SetDefault("watch.local_day", false)
	v.SetDefault("watch.reload_env", false)
}

func fromViper(v *viper.Viper) Config {
	return Config{
		Credentials: eco.Credentials{
			AccessToken:  strings.TrimSpace(v.GetString("auth.token")),
			RefreshToken: strings.TrimSpace(v.GetString("auth.refresh")),
		},
		BaseURL:  strings.TrimSpace(v.GetString("api.base_url")),
		Timeout:  v.GetDuration("api.timeout"),
		LogLevel: strings.ToLower(strings.TrimSpace(v.GetString("log.level"))),
		Watch: watch.Policy{
			Interval:   v.GetDuration("watch.interval"),
			Thermostat: strings.TrimSpace(v.GetString("watch.thermostat")),
			SensorName: v.GetString("watch.sensor_name"),
			SensorType: strings.TrimSpace(v.GetString("watch.sensor_type")),
			Columns:    splitList(v.GetString("watch.columns")),
			ClosedMode: strings.TrimSpace(v.GetString("watch.closed_mode")),
			OpenMode:   strings.TrimSpace(v.GetString("watch.open_mode")),
			LocalDay:   v.GetBool("watch.local_day"),
			ReloadEnv:  v.GetBool("watch.reload_env"),
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func (c Config) Validate() error {
	switch {
	case c.Credentials.AccessToken == "":
		return fmt.Errorf("auth.token is required (or set %s)", eco.EnvAccessToken)
	case c.BaseURL == "":
		return errors.New("api.base_url is empty")
	case c.Timeout <= 0:
		return fmt.Errorf("api.timeout must be positive, got %s", c.Timeout)
	case c.Watch.Interval <= 0:
		return fmt.Errorf("watch.interval must be positive, got %s", c.Watch.Interval)
	case c.Watch.SensorName == "" && c.Watch.SensorType == "":
		return errors.New("one of watch.sensor_name or watch.sensor_type is required")
	case c.Watch.ClosedMode == "" || c.Watch.OpenMode == "":
		return errors.New("watch.closed_mode and watch.open_mode are required")
	}
	return nil
}
