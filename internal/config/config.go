package config

import (
	"fmt"

	"taskhub/pkg/config"
)

type Config struct {
	Server config.ServerConfig `yaml:"server"`
	DB     config.DBConfig     `yaml:"db"`
	MQ     config.MQConfig     `yaml:"mq"`
	Redis  config.RedisConfig  `yaml:"redis"`
	Log    config.LogConfig    `yaml:"log"`
	Worker WorkerConfig        `yaml:"worker"`
}

type WorkerConfig struct {
	MaxRetries int64 `yaml:"max_retries"`
}

// Load reads CONFIG_DIR (default "config") for the CONFIG_ENV environment (default
// "local"), then applies environment variable overrides.
func Load() (*Config, error) {
	return LoadFrom(config.GetConfigEnv(), config.GetEnv("CONFIG_DIR", "config"))
}

func LoadFrom(env, dir string) (*Config, error) {
	cfgMap, err := config.LoadConfig(env, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg := defaults()
	if err := config.Decode(cfgMap, cfg); err != nil {
		return nil, err
	}

	// 环境变量覆盖（优先级最高）
	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideLogFromEnv(&cfg.Log)

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: config.ServerConfig{Port: ":8080"},
		DB:     config.DBConfig{Driver: "postgres", Port: 5432, SlowQueryMsec: 100},
		Redis:  config.RedisConfig{LockTTL: 30},
		Log:    config.LogConfig{Level: "info"},
		Worker: WorkerConfig{MaxRetries: 3},
	}
}
