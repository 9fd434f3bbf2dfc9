package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Log        LogConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Routing    RoutingConfig
	Delivery   DeliveryConfig
	Fleet      FleetConfig
	Simulation SimulationConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type LogConfig struct {
	Level string
}

type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	Stream   string
}

// RoutingConfig - параметры внешнего сервиса дорожной маршрутизации
// и кэша маршрутов
type RoutingConfig struct {
	BaseURL        string
	Profile        string
	RequestTimeout time.Duration
	MaxRoutePoints int
	CacheSize      int
	Workers        int
	BatchTimeout   time.Duration
}

// DeliveryConfig - параметры генерации точек доставки вокруг депо
type DeliveryConfig struct {
	MinDistanceKm float64
	MaxDistanceKm float64
	MaxCustomers  int
}

// FleetConfig - верхние границы размера флота
type FleetConfig struct {
	MaxDrones        int
	MaxTrucksPerKind int
	MaxTotal         int
}

// SimulationConfig - параметры цикла движения
type SimulationConfig struct {
	TickInterval      time.Duration
	PauseBetweenWaves time.Duration
	AutoRestart       bool
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// .env опционален: без файла работаем на переменных окружения и дефолтах
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("API_HOST"),
			Port: viper.GetInt("API_PORT"),
			Env:  viper.GetString("API_ENV"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Enabled:         viper.GetBool("DB_ENABLED"),
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			DBName:          viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConns:        viper.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
		},
		Redis: RedisConfig{
			Enabled:  viper.GetBool("REDIS_ENABLED"),
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			Stream:   viper.GetString("REDIS_TELEMETRY_STREAM"),
		},
		Routing: RoutingConfig{
			BaseURL:        viper.GetString("OSRM_BASE_URL"),
			Profile:        viper.GetString("OSRM_PROFILE"),
			RequestTimeout: time.Duration(viper.GetInt("OSRM_REQUEST_TIMEOUT")) * time.Second,
			MaxRoutePoints: viper.GetInt("ROUTE_MAX_POINTS"),
			CacheSize:      viper.GetInt("ROUTE_CACHE_SIZE"),
			Workers:        viper.GetInt("ROUTE_WORKERS"),
			BatchTimeout:   time.Duration(viper.GetInt("ROUTE_BATCH_TIMEOUT")) * time.Second,
		},
		Delivery: DeliveryConfig{
			MinDistanceKm: viper.GetFloat64("DELIVERY_MIN_DISTANCE_KM"),
			MaxDistanceKm: viper.GetFloat64("DELIVERY_MAX_DISTANCE_KM"),
			MaxCustomers:  viper.GetInt("DELIVERY_MAX_CUSTOMERS"),
		},
		Fleet: FleetConfig{
			MaxDrones:        viper.GetInt("FLEET_MAX_DRONES"),
			MaxTrucksPerKind: viper.GetInt("FLEET_MAX_TRUCKS_PER_KIND"),
			MaxTotal:         viper.GetInt("FLEET_MAX_TOTAL"),
		},
		Simulation: SimulationConfig{
			TickInterval:      time.Duration(viper.GetInt("SIM_TICK_INTERVAL_MS")) * time.Millisecond,
			PauseBetweenWaves: time.Duration(viper.GetInt("SIM_WAVE_PAUSE_MS")) * time.Millisecond,
			AutoRestart:       viper.GetBool("SIM_AUTO_RESTART"),
		},
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults подставляет значения по умолчанию для незаданных параметров
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Redis.Stream == "" {
		cfg.Redis.Stream = "fleet:telemetry"
	}
	if cfg.Routing.BaseURL == "" {
		cfg.Routing.BaseURL = "http://router.project-osrm.org"
	}
	if cfg.Routing.Profile == "" {
		cfg.Routing.Profile = "driving"
	}
	if cfg.Routing.RequestTimeout == 0 {
		cfg.Routing.RequestTimeout = 5 * time.Second
	}
	if cfg.Routing.MaxRoutePoints == 0 {
		cfg.Routing.MaxRoutePoints = 10
	}
	if cfg.Routing.CacheSize == 0 {
		cfg.Routing.CacheSize = 1000
	}
	if cfg.Routing.Workers == 0 {
		cfg.Routing.Workers = 3
	}
	if cfg.Routing.BatchTimeout == 0 {
		cfg.Routing.BatchTimeout = 30 * time.Second
	}
	if cfg.Delivery.MinDistanceKm == 0 {
		cfg.Delivery.MinDistanceKm = 15
	}
	if cfg.Delivery.MaxDistanceKm == 0 {
		cfg.Delivery.MaxDistanceKm = 45
	}
	if cfg.Delivery.MaxCustomers == 0 {
		cfg.Delivery.MaxCustomers = 999
	}
	if cfg.Fleet.MaxDrones == 0 {
		cfg.Fleet.MaxDrones = 100
	}
	if cfg.Fleet.MaxTrucksPerKind == 0 {
		cfg.Fleet.MaxTrucksPerKind = 50
	}
	if cfg.Fleet.MaxTotal == 0 {
		cfg.Fleet.MaxTotal = 200
	}
	if cfg.Simulation.TickInterval == 0 {
		cfg.Simulation.TickInterval = 500 * time.Millisecond
	}
	if cfg.Simulation.PauseBetweenWaves == 0 {
		cfg.Simulation.PauseBetweenWaves = 3 * time.Second
	}
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
