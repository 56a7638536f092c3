package config

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string           `yaml:"env" env-default:"development"` // environment
	HTTPServer HTTPServerConfig `yaml:"http_server"`
	Database   DatabaseConfig   `yaml:"database"`
	JWT        JWTConfig        `yaml:"jwt"`
	Migrations MigrationsConfig `yaml:"migrations"`
	Redis      RedisConfig      `yaml:"redis"`
	Xendit     XenditConfig     `yaml:"xendit"`
}

// HTTPServerConfig структура http сервера
type HTTPServerConfig struct {
	Address     string        `yaml:"address" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// DatabaseConfig структура по работе с БД
type DatabaseConfig struct {
	Host     string `yaml:"host" env-default:"localhost"`
	Port     int    `yaml:"port" env-default:"5432"`
	User     string `yaml:"user" env-required:"true"`
	Password string `yaml:"-" env:"DB_PASSWORD" env-required:"true"`
	Name     string `yaml:"name" env-required:"true"`
}

// JWTConfig настройка jwt для сотрудников кассы
type JWTConfig struct {
	Secret string `yaml:"-" env:"JWT_SECRET" env-required:"true"`
}

type MigrationsConfig struct {
	Path string `yaml:"path" env-default:"./migrations"`
}

// RedisConfig — кэш цен каталога. Пустой адрес отключает кэш.
type RedisConfig struct {
	Address    string        `yaml:"address" env:"REDIS_ADDRESS"`
	Password   string        `yaml:"-" env:"REDIS_PASSWORD"`
	DB         int           `yaml:"db" env-default:"0"`
	ProductTTL time.Duration `yaml:"product_ttl" env-default:"1m"`
}

// XenditConfig настройки платежного шлюза
type XenditConfig struct {
	BaseURL             string        `yaml:"base_url" env-default:"https://api.xendit.co"`
	SecretKey           string        `yaml:"-" env:"XENDIT_SECRET_KEY" env-required:"true"`
	CallbackToken       string        `yaml:"-" env:"XENDIT_CALLBACK_TOKEN" env-required:"true"`
	Currency            string        `yaml:"currency" env-default:"IDR"`
	ChannelCode         string        `yaml:"channel_code" env-default:"DANA"`
	QRExpiry            time.Duration `yaml:"qr_expiry" env-default:"15m"`
	RequestTimeout      time.Duration `yaml:"request_timeout" env-default:"30s"`
	SimulationEnabled   bool          `yaml:"simulation_enabled" env-default:"false"`
	BreakerMaxFailures  int           `yaml:"breaker_max_failures" env-default:"5"`
	BreakerResetTimeout time.Duration `yaml:"breaker_reset_timeout" env-default:"30s"`
}

// MustLoad - если не загружаем - паникуем
func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		log.Fatal("CONFIG_PATH not exists")
	}
	return MustLoadByPath(configPath)
}

func fetchConfigPath() string {
	var path string

	flag.StringVar(&path, "config", "", "path to config file")
	flag.Parse()

	return ResolvePath(path)
}

// ResolvePath возвращает путь из флага -config, а если он пуст — из CONFIG_PATH.
// Нужен утилитам, которые сами разбирают свои флаги.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("CONFIG_PATH")
}

func MustLoadByPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file not found: " + configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("can't read config file %s: %v", configPath, err)
	}

	return &cfg
}
