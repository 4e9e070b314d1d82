// Package config arma la configuración del proceso: un YAML opcional
// (CONFIG_FILE) y encima las variables de entorno.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageGorm     = "gorm"
)

type Config struct {
	Port string `yaml:"port"`

	Storage     string `yaml:"storage"`
	DSN         string `yaml:"db_dsn"`
	GormDialect string `yaml:"gorm_dialect"`
	Seed        bool   `yaml:"seed"`

	SecurityEnable bool `yaml:"security_enable"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	AppName   string `yaml:"app_name"`
}

func Default() Config {
	return Config{
		Port:        "8080",
		Storage:     StorageMemory,
		GormDialect: "postgres",
		Seed:        true,
		LogLevel:    "info",
		LogFormat:   "text",
		AppName:     "petclinic",
	}
}

// Load parte de Default, aplica el archivo (si CONFIG_FILE o path vienen) y
// después el entorno. El resultado se valida.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*dst = b
		return nil
	}

	str("PORT", &cfg.Port)
	str("STORAGE", &cfg.Storage)
	str("DB_DSN", &cfg.DSN)
	str("GORM_DIALECT", &cfg.GormDialect)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)
	str("APP_NAME", &cfg.AppName)

	if err := boolean("SEED", &cfg.Seed); err != nil {
		return err
	}
	return boolean("SECURITY_ENABLE", &cfg.SecurityEnable)
}

func (c Config) Validate() error {
	var errs []error

	if _, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Errorf("config: port %q is not a number", c.Port))
	}

	switch c.Storage {
	case StorageMemory:
	case StoragePostgres:
		if c.DSN == "" {
			errs = append(errs, errors.New("config: db_dsn is required for postgres storage"))
		}
	case StorageGorm:
		switch c.GormDialect {
		case "postgres", "sqlite":
		default:
			errs = append(errs, fmt.Errorf("config: unknown gorm_dialect %q", c.GormDialect))
		}
		if c.DSN == "" {
			errs = append(errs, errors.New("config: db_dsn is required for gorm storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown storage %q", c.Storage))
	}

	return errors.Join(errs...)
}

func (c Config) Addr() string {
	return ":" + c.Port
}
