package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the YAML config document. All fields are optional;
// zero values leave the current configuration untouched.
type fileConfig struct {
	Env    string `yaml:"env"`
	Server struct {
		Port              int    `yaml:"port"`
		ShutdownTimeout   string `yaml:"shutdown_timeout"`
		ReadHeaderTimeout string `yaml:"read_header_timeout"`
	} `yaml:"server"`
	Storage struct {
		Backend    string `yaml:"backend"`
		UsersFile  string `yaml:"users_file"`
		SQLitePath string `yaml:"sqlite_path"`
		Postgres   struct {
			Driver          string `yaml:"driver"`
			URL             string `yaml:"url"`
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
			ConnMaxIdleTime string `yaml:"conn_max_idle_time"`
		} `yaml:"postgres"`
	} `yaml:"storage"`
	Auth struct {
		AdminToken string `yaml:"admin_token"`
	} `yaml:"auth"`
}

// applyFile merges the YAML file at path into cfg.
func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.Env, fc.Env)
	if fc.Server.Port != 0 {
		cfg.HTTPPort = fc.Server.Port
	}
	if err := setDuration(&cfg.ShutdownTimeout, fc.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("config file %s: shutdown_timeout: %w", path, err)
	}
	if err := setDuration(&cfg.ReadHeaderTimeout, fc.Server.ReadHeaderTimeout); err != nil {
		return fmt.Errorf("config file %s: read_header_timeout: %w", path, err)
	}

	setString(&cfg.DataBackend, fc.Storage.Backend)
	setString(&cfg.UsersFile, fc.Storage.UsersFile)
	setString(&cfg.SQLitePath, fc.Storage.SQLitePath)

	pg := fc.Storage.Postgres
	setString(&cfg.DatabaseDriver, pg.Driver)
	setString(&cfg.DatabaseURL, pg.URL)
	if pg.MaxOpenConns != 0 {
		cfg.DBMaxOpenConns = pg.MaxOpenConns
	}
	if pg.MaxIdleConns != 0 {
		cfg.DBMaxIdleConns = pg.MaxIdleConns
	}
	if err := setDuration(&cfg.DBConnMaxLifetime, pg.ConnMaxLifetime); err != nil {
		return fmt.Errorf("config file %s: conn_max_lifetime: %w", path, err)
	}
	if err := setDuration(&cfg.DBConnMaxIdleTime, pg.ConnMaxIdleTime); err != nil {
		return fmt.Errorf("config file %s: conn_max_idle_time: %w", path, err)
	}

	setString(&cfg.AdminToken, fc.Auth.AdminToken)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}
