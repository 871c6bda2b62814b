package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	DefaultAddr        = ":8080"
	DefaultGainPerDay  = 0.8
	DefaultHorizonDays = 90
)

// Config es la configuración principal (archivo YAML + overrides por env).
type Config struct {
	Env      string         `yaml:"env"`
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Storage  StorageConfig  `yaml:"storage"`
	Forecast ForecastConfig `yaml:"forecast"`
	AMQP     AMQPConfig     `yaml:"amqp"`
	Backup   BackupConfig   `yaml:"backup"`
}

type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	App    string `yaml:"app"`
}

// StorageConfig elige el adapter de persistencia: memory | sheet | postgres | mysql | sqlite.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	Path   string `yaml:"path"`
	// Zona horaria de los encabezados de la planilla ("" = Local).
	Location string `yaml:"location"`
}

type ForecastConfig struct {
	DefaultGainPerDay float64 `yaml:"default_gain_per_day"`
	HorizonDays       int     `yaml:"horizon_days"`
}

type AMQPConfig struct {
	DSN      string   `yaml:"dsn"`
	Exchange string   `yaml:"exchange"`
	Tag      string   `yaml:"tag"`
	TLS      bool     `yaml:"tls"`
	Topics   []string `yaml:"topics"`
}

type BackupConfig struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	Prefix    string `yaml:"prefix"`
	PathStyle bool   `yaml:"path_style"`
}

// Load lee .env (si existe), luego el YAML en path (opcional) y por último aplica env.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	c := Config{}
	if p := strings.TrimSpace(path); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&c)
	applyDefaults(&c)

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	switch c.Storage.Driver {
	case "memory":
	case "sheet":
		if strings.TrimSpace(c.Storage.Path) == "" {
			return errors.New("config: storage.path required for sheet driver")
		}
	case "postgres", "mysql":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("config: storage.dsn required for %s driver", c.Storage.Driver)
		}
	case "sqlite":
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Forecast.DefaultGainPerDay <= 0 {
		return errors.New("config: forecast.default_gain_per_day must be > 0")
	}
	if c.Forecast.HorizonDays <= 0 {
		return errors.New("config: forecast.horizon_days must be > 0")
	}
	if _, err := c.Storage.TimeLocation(); err != nil {
		return fmt.Errorf("config: storage.location: %w", err)
	}
	return nil
}

// TimeLocation resuelve storage.location ("" = time.Local).
func (s StorageConfig) TimeLocation() (*time.Location, error) {
	name := strings.TrimSpace(s.Location)
	if name == "" {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

func applyEnv(c *Config) {
	if v := os.Getenv("PORT"); v != "" {
		c.HTTP.Addr = ":" + v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("APP_NAME"); v != "" {
		c.Log.App = v
	}
	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	// DB_DSN sin driver explícito => postgres (igual que antes).
	if v := os.Getenv("DB_DSN"); v != "" {
		c.Storage.DSN = v
		if c.Storage.Driver == "" {
			c.Storage.Driver = "postgres"
		}
	}
	if v := os.Getenv("SHEET_PATH"); v != "" {
		c.Storage.Path = v
		if c.Storage.Driver == "" {
			c.Storage.Driver = "sheet"
		}
	}
	if v := os.Getenv("DEFAULT_GMD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Forecast.DefaultGainPerDay = f
		}
	}
	if v := os.Getenv("AMQP_DSN"); v != "" {
		c.AMQP.DSN = v
	}
	if v := os.Getenv("BACKUP_S3_BUCKET"); v != "" {
		c.Backup.Bucket = v
	}
	if v := os.Getenv("BACKUP_S3_REGION"); v != "" {
		c.Backup.Region = v
	}
	if v := os.Getenv("BACKUP_S3_ENDPOINT"); v != "" {
		c.Backup.Endpoint = v
	}
	if v := os.Getenv("BACKUP_S3_PATH_STYLE"); v != "" {
		c.Backup.PathStyle = strings.EqualFold(v, "true")
	}
}

func applyDefaults(c *Config) {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.Driver == "sqlite" && strings.TrimSpace(c.Storage.Path) == "" {
		c.Storage.Path = "data/weights.db"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = DefaultAddr
	}
	if c.HTTP.ReadTimeout <= 0 {
		c.HTTP.ReadTimeout = 5 * time.Second
	}
	if c.HTTP.WriteTimeout <= 0 {
		c.HTTP.WriteTimeout = 10 * time.Second
	}
	if c.Forecast.DefaultGainPerDay == 0 {
		c.Forecast.DefaultGainPerDay = DefaultGainPerDay
	}
	if c.Forecast.HorizonDays == 0 {
		c.Forecast.HorizonDays = DefaultHorizonDays
	}
	if c.AMQP.Tag == "" {
		c.AMQP.Tag = "weightctl"
	}
	if len(c.AMQP.Topics) == 0 {
		c.AMQP.Topics = []string{"weighings.#"}
	}
	if c.Backup.Prefix == "" {
		c.Backup.Prefix = "weights"
	}
}
