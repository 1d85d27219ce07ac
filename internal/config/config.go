package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sweetslice/cakeshop/internal/models"
)

type Config struct {
	HTTP_ADDR      string
	DB_DRIVER      string
	DB_PATH        string
	DB_HOST        string
	DB_PORT        string
	DB_USER        string
	DB_PASSWORD    string
	DB_NAME        string
	SESSION_SECRET string
	SESSION_TTL    string
	KAFKA_ADDRESS  string
	ES_URL         string
	ES_USER        string
	ES_PASSWORD    string
	LOG_LEVEL      string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		HTTP_ADDR:      os.Getenv("HTTP_ADDR"),
		DB_DRIVER:      os.Getenv("DB_DRIVER"),
		DB_PATH:        os.Getenv("DB_PATH"),
		DB_HOST:        os.Getenv("DB_HOST"),
		DB_PORT:        os.Getenv("DB_PORT"),
		DB_USER:        os.Getenv("DB_USER"),
		DB_PASSWORD:    os.Getenv("DB_PASSWORD"),
		DB_NAME:        os.Getenv("DB_NAME"),
		SESSION_SECRET: os.Getenv("SESSION_SECRET"),
		SESSION_TTL:    os.Getenv("SESSION_TTL"),
		KAFKA_ADDRESS:  os.Getenv("KAFKA_ADDRESS"),
		ES_URL:         os.Getenv("ES_URL"),
		ES_USER:        os.Getenv("ES_USER"),
		ES_PASSWORD:    os.Getenv("ES_PASSWORD"),
		LOG_LEVEL:      os.Getenv("LOG_LEVEL"),
	}

	return config, nil
}

// SessionTTL parses SESSION_TTL as a Go duration, falling back to 24h.
func (c *Config) SessionTTL() time.Duration {
	if c.SESSION_TTL != "" {
		if d, err := time.ParseDuration(c.SESSION_TTL); err == nil && d > 0 {
			return d
		}
		log.Printf("Notice: invalid SESSION_TTL %q, using default", c.SESSION_TTL)
	}
	return 24 * time.Hour
}

// InitDB opens the configured database and migrates the three persistent
// tables. The cart is session state and has no table.
func InitDB(cfg *Config) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch cfg.DB_DRIVER {
	case "postgres":
		dsn := fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=disable",
			cfg.DB_USER, cfg.DB_PASSWORD, cfg.DB_HOST, cfg.DB_PORT, cfg.DB_NAME,
		)
		dial = postgres.Open(dsn)
	default:
		path := cfg.DB_PATH
		if path == "" {
			path = "data/cake_shop.db"
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database dir: %w", err)
			}
		}
		dial = sqlite.Open(path)
	}

	db, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.AutoMigrate(&models.Cake{}, &models.Order{}, &models.OrderItem{}); err != nil {
		return nil, fmt.Errorf("migrate tables: %w", err)
	}
	return db, nil
}
