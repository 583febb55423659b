// Package config предоставляет структуры и функцию для парсинга и загрузки конфига.
// Конфиг загружается один раз при старте процесса и передаётся в конструкторы;
// из глобального состояния ничего не читается.
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек.
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Payments                `yaml:"payments"`
	Currency                `yaml:"currency"`
	RabbitMQ                `yaml:"rabbitmq"`
	SMTP                    `yaml:"smtp"`
	Notifications           `yaml:"notifications"`
	Sweeper                 `yaml:"sweeper"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// JWTToken структура для работы с jwt-токеном.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Payments настройки внешнего платёжного процессинга.
type Payments struct {
	StripeAPIKey  string        `yaml:"stripe_api_key" env:"STRIPE_API_KEY"`
	SuccessURL    string        `yaml:"success_url" env-default:"http://127.0.0.1:8080/api/v1/courses"`
	ProductLabel  string        `yaml:"product_label" env-default:"Pay for material"`
	ClientTimeout time.Duration `yaml:"client_timeout" env-default:"10s"`
}

// Currency настройки источника курсов валют. Локальная валюта платформы
// конвертируется в валюту расчётов процессинга.
type Currency struct {
	RatesAPIURL        string        `yaml:"rates_api_url"`
	LocalCurrency      string        `yaml:"local_currency" env-default:"RUB"`
	SettlementCurrency string        `yaml:"settlement_currency" env-default:"USD"`
	RateCacheTTL       time.Duration `yaml:"rate_cache_ttl" env-default:"1h"`
	ClientTimeout      time.Duration `yaml:"client_timeout" env-default:"5s"`
}

// RabbitMQ настройки подключения к брокеру уведомлений.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"3s"`
}

// SMTP настройки почтового транспорта.
type SMTP struct {
	SMTPHost   string `yaml:"host"`
	SMTPPort   string `yaml:"port" env-default:"587"`
	SMTPUser   string `yaml:"user"`
	SMTPPass   string `yaml:"pass" env:"SMTP_PASS"`
	AdminEmail string `yaml:"admin_email"`
}

// Notifications настройки задачи рассылки об обновлении курсов.
type Notifications struct {
	MinCourseAge time.Duration `yaml:"min_course_age" env-default:"4h"`
	RetryDelay   time.Duration `yaml:"retry_delay" env-default:"1h"`
}

// Sweeper настройки блокировки неактивных пользователей.
type Sweeper struct {
	InactiveAfter time.Duration `yaml:"inactive_after" env-default:"720h"`
	SweepInterval time.Duration `yaml:"sweep_interval" env-default:"24h"`
}

// MustLoad загружает конфиг по пути из CONFIG_PATH и завершает процесс при ошибке.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
