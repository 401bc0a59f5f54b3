package main

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/metalagman/grok/internal/config"
	"github.com/spf13/viper"
)

// loadConfig merges defaults, the optional config file, the environment and
// bound flags, in increasing order of precedence.
func loadConfig(v *viper.Viper, path string) (config.Config, error) {
	for key, value := range config.Defaults() {
		v.SetDefault(key, value)
	}
	for key, env := range config.EnvBindings() {
		if err := v.BindEnv(key, env); err != nil {
			return config.Config{}, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return config.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if err := config.ValidateSettings(v.AllSettings()); err != nil {
		return config.Config{}, err
	}

	var cfg config.Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.StringToTimeDurationHookFunc())); err != nil {
		return config.Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
