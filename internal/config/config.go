// Package config loads the coordinator daemon's YAML configuration via
// viper.
package config

import "github.com/spf13/viper"

// Config is the top-level daemon configuration.
type Config struct {
	Running struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"running"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	Mysql struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"mysql"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		Topic   string   `mapstructure:"topic"`
	} `mapstructure:"kafka"`
	Auth struct {
		Secret string `mapstructure:"secret"`
	} `mapstructure:"auth"`
	Coordinator struct {
		// DelayMillis, if nonzero, switches the coordinator from
		// immediate-drain to a ticker-scheduled drain.
		DelayMillis int `mapstructure:"delayMillis"`
	} `mapstructure:"coordinator"`
}

// Load reads tablesyncConfig.yaml from the conventional search paths.
func Load() (*Config, error) {
	cfg := &Config{}
	v := viper.New()
	v.SetConfigName("tablesyncConfig")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
