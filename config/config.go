package config

import (
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server     ServerConfig     `toml:"server"`
	Database   DatabaseConfig   `toml:"database"`
	Redis      RedisConfig      `toml:"redis"`
	Raffle     RaffleConfig     `toml:"raffle"`
	Randomness RandomnessConfig `toml:"randomness"`
}

type ServerConfig struct {
	Addr     string `toml:"addr"`
	LogLevel string `toml:"log_level"`
}

type DatabaseConfig struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	DBName   string `toml:"dbname"`
	SSLMode  string `toml:"sslmode"`
}

type RedisConfig struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// RaffleConfig 開獎排程、隊列與交易日誌
type RaffleConfig struct {
	JournalPath  string `toml:"journal_path"`
	QueueDriver  string `toml:"queue_driver"` // memory | redis
	PollInterval string `toml:"poll_interval"`
}

type RandomnessConfig struct {
	Source       string `toml:"source"` // beacon | crypto
	BeaconSecret string `toml:"beacon_secret"`
}

const (
	QueueDriverMemory = "memory"
	QueueDriverRedis  = "redis"

	RandomnessBeacon = "beacon"
	RandomnessCrypto = "crypto"
)

var AppConfig *Config

// LoadConfig 先讀 RAFFLE_CONFIG 指定的 TOML 檔（可省略），再以環境變數覆蓋
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()
	if path := os.Getenv("RAFFLE_CONFIG"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.Server.Addr = getEnv("SERVER_ADDR", cfg.Server.Addr)
	cfg.Server.LogLevel = getEnv("LOG_LEVEL", cfg.Server.LogLevel)
	cfg.Database = GetDatabaseConfig(cfg.Database)
	redisConfig, err := GetRedisConfig(cfg.Redis)
	if err != nil {
		return nil, err
	}
	cfg.Redis = redisConfig
	cfg.Raffle.JournalPath = getEnv("JOURNAL_PATH", cfg.Raffle.JournalPath)
	cfg.Raffle.QueueDriver = getEnv("QUEUE_DRIVER", cfg.Raffle.QueueDriver)
	cfg.Raffle.PollInterval = getEnv("SCHEDULER_POLL_INTERVAL", cfg.Raffle.PollInterval)
	cfg.Randomness.Source = getEnv("RANDOMNESS_SOURCE", cfg.Randomness.Source)
	cfg.Randomness.BeaconSecret = getEnv("BEACON_SECRET", cfg.Randomness.BeaconSecret)

	AppConfig = cfg
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:     ":8080",
			LogLevel: "info",
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "postgres",
			DBName:   "postgres",
			SSLMode:  "disable",
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: "6379",
		},
		Raffle: RaffleConfig{
			JournalPath:  "raffle-journal.db",
			QueueDriver:  QueueDriverRedis,
			PollInterval: "1s",
		},
		Randomness: RandomnessConfig{
			Source: RandomnessBeacon,
		},
	}
}

func LoadTestConfig() *Config {
	cfg := defaultConfig()
	cfg.Database = DatabaseConfig{
		Host:     "localhost",
		Port:     "5433", // 測試 DB 用 5433 port
		User:     "postgres",
		Password: "postgres",
		DBName:   "test_db",
		SSLMode:  "disable",
	}
	cfg.Redis = RedisConfig{
		Host:     "localhost",
		Port:     "6380", // 測試 Redis 用 6380 port
		Password: "",
		DB:       1,
	}
	cfg.Raffle.QueueDriver = QueueDriverMemory
	return cfg
}

// PollEvery 解析失敗時退回 1 秒
func (c RaffleConfig) PollEvery() time.Duration {
	d, err := time.ParseDuration(c.PollInterval)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

func GetDatabaseConfig(base DatabaseConfig) DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", base.Host),
		Port:     getEnv("DB_PORT", base.Port),
		User:     getEnv("DB_USER", base.User),
		Password: getEnv("DB_PASSWORD", base.Password),
		DBName:   getEnv("DB_NAME", base.DBName),
		SSLMode:  getEnv("DB_SSL_MODE", base.SSLMode),
	}
}

func GetRedisConfig(base RedisConfig) (RedisConfig, error) {
	db, err := strconv.Atoi(getEnv("REDIS_DB", strconv.Itoa(base.DB)))
	if err != nil {
		return RedisConfig{}, err
	}

	return RedisConfig{
		Host:     getEnv("REDIS_HOST", base.Host),
		Port:     getEnv("REDIS_PORT", base.Port),
		Password: getEnv("REDIS_PASSWORD", base.Password),
		DB:       db,
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
