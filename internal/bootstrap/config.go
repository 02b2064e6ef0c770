package bootstrap

import (
	"github.com/spf13/viper"
)

type Config struct {
	ServerPort        string  `mapstructure:"SERVER_PORT"`
	EnginePath        string  `mapstructure:"ENGINE_PATH"`
	EngineDepth       int     `mapstructure:"ENGINE_DEPTH"`
	EngineThreads     int     `mapstructure:"ENGINE_THREADS"`
	EngineHashMB      int     `mapstructure:"ENGINE_HASH_MB"`
	EngineSkillLevel  int     `mapstructure:"ENGINE_SKILL_LEVEL"`
	EngineIdleSeconds int     `mapstructure:"ENGINE_IDLE_SECONDS"`
	EngineWorkers     int     `mapstructure:"ENGINE_WORKERS"`
	DefaultTotalTime  float64 `mapstructure:"DEFAULT_TOTAL_TIME"`
	RedisUrl          string  `mapstructure:"REDIS_URL"`
	MongoUri          string  `mapstructure:"MONGO_URI"`
	IsLocalCors       bool    `mapstructure:"LOCAL_CORS"`
}

func Setup(cfgPath string) (*Config, error) {
	viper.SetConfigFile(cfgPath)

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	var cfg Config

	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	ApplyDefaults(&cfg)

	return &cfg, nil
}

func ApplyDefaults(cfg *Config) {
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.EngineDepth <= 0 {
		cfg.EngineDepth = 12
	}
	if cfg.EngineThreads <= 0 {
		cfg.EngineThreads = 1
	}
	if cfg.EngineHashMB <= 0 {
		cfg.EngineHashMB = 64
	}
	if cfg.EngineIdleSeconds <= 0 {
		cfg.EngineIdleSeconds = 300
	}
	if cfg.EngineWorkers <= 0 {
		cfg.EngineWorkers = 1
	}
	if cfg.DefaultTotalTime <= 0 {
		cfg.DefaultTotalTime = 600
	}
}
