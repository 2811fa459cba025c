// Package config loads service configuration from an optional YAML file with
// environment variable overrides.
//
// .env files are read first, in this order:
//
//  1. ENV_FILE (if set, only this file is loaded)
//  2. .env.local
//  3. .env
//
// Values already present in the process environment are never overwritten by
// .env files. After the YAML file is decoded, every field tagged `env:"NAME"`
// is overridden by a non-empty NAME from the environment. Fields tagged
// `yaml:"-"` are skipped.
//
//	type Config struct {
//	    Port int `yaml:"port" env:"PORT"`
//	}
//
//	cfg, err := config.Load[Config]("config.yml")
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}

	return nil
}

// Load decodes the YAML file at path into a new T and applies env overrides.
// A missing file is not an error: the service can be configured from the
// environment alone.
func Load[T any](path string) (*T, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("load environment files: %w", err)
	}

	var cfg T

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	default:
		if err = yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// LoadWithDefaults is Load followed by setDefaults. Env overrides are applied
// again afterwards so the environment always wins.
func LoadWithDefaults[T any](path string, setDefaults func(*T)) (*T, error) {
	cfg, err := Load[T](path)
	if err != nil {
		return nil, err
	}

	if setDefaults != nil {
		setDefaults(cfg)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// GetConfigPath returns CONFIG_PATH when set, otherwise defaultPath.
func GetConfigPath(defaultPath string) string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return defaultPath
}

func applyEnvOverrides(cfg any) {
	v := reflect.ValueOf(cfg)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	applyEnvToStruct(v)
}

func applyEnvToStruct(v reflect.Value) {
	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := range v.NumField() {
		field := v.Field(i)
		if !field.CanSet() || t.Field(i).Tag.Get("yaml") == "-" {
			continue
		}

		switch {
		case field.Kind() == reflect.Struct:
			applyEnvToStruct(field)
			continue
		case field.Kind() == reflect.Pointer && field.Type().Elem().Kind() == reflect.Struct:
			if field.IsNil() {
				field.Set(reflect.New(field.Type().Elem()))
			}
			applyEnvToStruct(field.Elem())
			continue
		}

		name := t.Field(i).Tag.Get("env")
		if name == "" {
			continue
		}
		if val := os.Getenv(name); val != "" {
			setFieldFromString(field, val)
		}
	}
}

var durationType = reflect.TypeFor[time.Duration]()

func setFieldFromString(field reflect.Value, val string) {
	switch field.Kind() {
	case reflect.String:
		field.SetString(val)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == durationType {
			if d, err := time.ParseDuration(val); err == nil {
				field.SetInt(int64(d))
			}
			return
		}
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			field.SetInt(i)
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if u, err := strconv.ParseUint(val, 10, 64); err == nil {
			field.SetUint(u)
		}

	case reflect.Float32, reflect.Float64:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			field.SetFloat(f)
		}

	case reflect.Bool:
		field.SetBool(parseBool(val))

	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			field.Set(reflect.ValueOf(SplitList(val)))
		}
	}
}

// SplitList splits a comma-separated value, trimming blanks and dropping
// empty entries.
func SplitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}
