package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DBConfig struct {
	Type         string `yaml:"type" json:"type"`
	Host         string `yaml:"host" json:"host"`
	Port         int    `yaml:"port" json:"port"`
	Username     string `yaml:"username" json:"username"`
	Password     string `yaml:"password" json:"password"`
	DatabaseName string `yaml:"database_name" json:"database_name"`
	DSN          string `yaml:"dsn" json:"dsn"` // optional explicit DSN
}

type ServerConfig struct {
	Port int    `yaml:"port" json:"port"`
	Web  string `yaml:"web" json:"web"` // static UI directory
}

type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// LayoutConfig spaces the diagonal seed layout of imported tables.
type LayoutConfig struct {
	XSpacing float64 `yaml:"x_spacing" json:"xSpacing"`
	YSpacing float64 `yaml:"y_spacing" json:"ySpacing"`
}

type ExportConfig struct {
	// Verify runs generated SQL through the sqlite sandbox.
	Verify bool `yaml:"verify" json:"verify"`
	// IncludeModifiers writes UNIQUE, DEFAULT and AUTO_INCREMENT.
	IncludeModifiers bool `yaml:"include_modifiers" json:"includeModifiers"`
}

type AppConfig struct {
	Database DBConfig     `yaml:"database" json:"database"`
	Server   ServerConfig `yaml:"server" json:"server"`
	Log      LogConfig    `yaml:"log" json:"log"`
	Layout   LayoutConfig `yaml:"layout" json:"layout"`
	Export   ExportConfig `yaml:"export" json:"export"`
}

// Default is the configuration used when no file is given.
func Default() AppConfig {
	return AppConfig{
		Server: ServerConfig{Port: 8080, Web: "web"},
		Log:    LogConfig{Level: "info"},
		Layout: LayoutConfig{XSpacing: 400, YSpacing: 200},
	}
}

// LoadFile loads YAML config from path on top of Default. On error the zero
// config is returned.
func LoadFile(path string) (AppConfig, error) {
	cfg := Default()
	f, err := os.ReadFile(path)
	if err != nil {
		return AppConfig{}, err
	}
	if err := yaml.Unmarshal(f, &cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg from ERD_* variables. Dotenv files are read in
// order, later files winning; variables set in the process environment win
// over all of them. Missing files are skipped.
func ApplyEnv(cfg *AppConfig, files ...string) error {
	fileEnv := map[string]string{}
	for _, f := range files {
		m, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", f, err)
		}
		maps.Copy(fileEnv, m)
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	}

	strs := map[string]*string{
		"ERD_DB_TYPE":     &cfg.Database.Type,
		"ERD_DB_HOST":     &cfg.Database.Host,
		"ERD_DB_USERNAME": &cfg.Database.Username,
		"ERD_DB_PASSWORD": &cfg.Database.Password,
		"ERD_DB_NAME":     &cfg.Database.DatabaseName,
		"ERD_DB_DSN":      &cfg.Database.DSN,
		"ERD_WEB_DIR":     &cfg.Server.Web,
		"ERD_LOG_LEVEL":   &cfg.Log.Level,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"ERD_DB_PORT":     &cfg.Database.Port,
		"ERD_SERVER_PORT": &cfg.Server.Port,
	}
	for key, dst := range ints {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = n
		}
	}

	bools := map[string]*bool{
		"ERD_EXPORT_VERIFY":    &cfg.Export.Verify,
		"ERD_EXPORT_MODIFIERS": &cfg.Export.IncludeModifiers,
	}
	for key, dst := range bools {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = b
		}
	}
	return nil
}

// NormalizeDriver maps common aliases to canonical keys (keeps backwards compat).
func NormalizeDriver(d string) string {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "postgresql", "pg", "postgres":
		return "postgres"
	case "mysql", "mariadb":
		return "mysql"
	case "sqlite", "sqlite3":
		return "sqlite"
	case "mssql", "sqlserver":
		return "sqlserver"
	case "godror", "oracle":
		return "godror"
	default:
		return strings.ToLower(d)
	}
}

// BuildDriverAndDSN produces a driver name and DSN string for supported DB types.
func BuildDriverAndDSN(db DBConfig) (driver string, dsn string, err error) {
	// If explicit DSN provided, user must also set Type to choose driver or we guess
	t := NormalizeDriver(db.Type)

	if db.DSN != "" {
		return t, db.DSN, nil
	}

	switch t {
	case "postgres":
		driver = "postgres"
		// simple URL form
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	case "mysql":
		driver = "mysql"
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	case "sqlite":
		driver = "sqlite"
		if db.DatabaseName == "" {
			return "", "", fmt.Errorf("sqlite needs a file path in database_name")
		}
		dsn = fmt.Sprintf("file:%s?mode=ro", db.DatabaseName)
	case "sqlserver":
		driver = "sqlserver"
		dsn = fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	case "godror":
		driver = "godror"
		// simple EZCONNECT style; may need adjustments per environment
		dsn = fmt.Sprintf("%s/%s@%s:%d/%s",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	default:
		err = fmt.Errorf("unsupported database type: %s", db.Type)
	}
	return
}
