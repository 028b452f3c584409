package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-floorplan/database"
	"github.com/yeremiapane/restaurant-floorplan/models"
)

const (
	StorageSQLite = database.DriverSQLite
	StorageMySQL  = database.DriverMySQL
	StorageRedis  = "redis"

	IDStrategyLength   = "length"
	IDStrategySequence = "sequence"

	OccupancyToggle = "toggle"
	OccupancyOccupy = "occupy"
)

type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"debug"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"sqlite"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"floorplan.db"`
	MySQLDSN      string `env:"MYSQL_DSN"`

	RedisAddr      string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword  string `env:"REDIS_PASSWORD"`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0"`
	RedisKeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"floorplan:"`

	Areas      []string `env:"FLOORPLAN_AREAS" envDefault:"area-1,area-2,area-3" envSeparator:","`
	AreaWidth  float64  `env:"AREA_WIDTH" envDefault:"400"`
	AreaHeight float64  `env:"AREA_HEIGHT" envDefault:"300"`

	TableIDStrategy      string `env:"TABLE_ID_STRATEGY" envDefault:"length"`
	ReservationOccupancy string `env:"RESERVATION_OCCUPANCY" envDefault:"toggle"`

	CORSOrigins    []string `env:"CORS_ORIGINS" envDefault:"http://127.0.0.1:5500" envSeparator:","`
	RateLimitRPS   float64  `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst int      `env:"RATE_LIMIT_BURST" envDefault:"100"`
}

// Load membaca .env (jika ada) lalu environment variable ke Config.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the current environment only.
func Parse() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageSQLite, StorageMySQL, StorageRedis:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be sqlite, mysql or redis, got %q", c.StorageDriver)
	}
	if c.StorageDriver == StorageMySQL && c.MySQLDSN == "" {
		return errors.New("MYSQL_DSN is required when STORAGE_DRIVER=mysql")
	}
	switch c.TableIDStrategy {
	case IDStrategyLength, IDStrategySequence:
	default:
		return fmt.Errorf("TABLE_ID_STRATEGY must be length or sequence, got %q", c.TableIDStrategy)
	}
	switch c.ReservationOccupancy {
	case OccupancyToggle, OccupancyOccupy:
	default:
		return fmt.Errorf("RESERVATION_OCCUPANCY must be toggle or occupy, got %q", c.ReservationOccupancy)
	}
	if len(c.Areas) == 0 {
		return errors.New("FLOORPLAN_AREAS must name at least one area")
	}
	if c.AreaWidth <= 0 || c.AreaHeight <= 0 {
		return errors.New("AREA_WIDTH and AREA_HEIGHT must be positive")
	}
	return nil
}

// FloorAreas builds the area list rendered by the floor plan.
func (c *Config) FloorAreas() []models.Area {
	areas := make([]models.Area, 0, len(c.Areas))
	for _, id := range c.Areas {
		areas = append(areas, models.Area{
			ID:     id,
			Name:   models.AreaName(id),
			Width:  c.AreaWidth,
			Height: c.AreaHeight,
		})
	}
	return areas
}

// InitDB opens the gorm database for the sql storage drivers.
func InitDB(c *Config) (*gorm.DB, error) {
	switch c.StorageDriver {
	case StorageSQLite:
		return database.Open(database.DriverSQLite, c.SQLitePath)
	case StorageMySQL:
		return database.Open(database.DriverMySQL, c.MySQLDSN)
	default:
		return nil, fmt.Errorf("storage driver %q does not use a sql database", c.StorageDriver)
	}
}
