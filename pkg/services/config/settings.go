// Package config loads process settings from defaults, an optional config file, a .env file and
// REPORT_ prefixed environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/de-tools/report-atlas/pkg/render/page"
	"github.com/de-tools/report-atlas/pkg/services/cache"
	"github.com/de-tools/report-atlas/pkg/services/document"
	"github.com/de-tools/report-atlas/pkg/store/duckdb"
	"github.com/de-tools/report-atlas/pkg/store/s3cache"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const EnvPrefix = "REPORT"

type Server struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DB struct {
	Path    string `mapstructure:"path"`
	Threads int    `mapstructure:"threads"`
}

type Cache struct {
	Enabled       bool          `mapstructure:"enabled"`
	DefaultTTL    time.Duration `mapstructure:"default_ttl"`
	ExtendedTTL   time.Duration `mapstructure:"extended_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	SweepDelay    time.Duration `mapstructure:"sweep_delay"`
}

type Documents struct {
	MaxAge      time.Duration `mapstructure:"max_age"`
	Brand       string        `mapstructure:"brand"`
	Logo        string        `mapstructure:"logo"`
	DailyWindow int           `mapstructure:"daily_window"`
	// Dir is used when Bucket is empty.
	Dir        string `mapstructure:"dir"`
	Bucket     string `mapstructure:"bucket"`
	Prefix     string `mapstructure:"prefix"`
	AWSProfile string `mapstructure:"aws_profile"`
	AWSRegion  string `mapstructure:"aws_region"`
}

type Warehouse struct {
	// Profiles is the INI file holding warehouse connection profiles.
	Profiles string `mapstructure:"profiles"`
	// Profile selects a warehouse; the embedded database is used when empty.
	Profile string `mapstructure:"profile"`
}

type Settings struct {
	Server    Server    `mapstructure:"server"`
	DB        DB        `mapstructure:"db"`
	Cache     Cache     `mapstructure:"cache"`
	Documents Documents `mapstructure:"documents"`
	Warehouse Warehouse `mapstructure:"warehouse"`
}

func setDefaults(v *viper.Viper) {
	cacheDefaults := cache.DefaultConfig()
	sweeperDefaults := cache.DefaultSweeperConfig()
	documentDefaults := document.DefaultConfig()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("db.path", "report-atlas.db")
	v.SetDefault("db.threads", 4)

	v.SetDefault("cache.enabled", cacheDefaults.Enabled)
	v.SetDefault("cache.default_ttl", cacheDefaults.DefaultTTL)
	v.SetDefault("cache.extended_ttl", cacheDefaults.ExtendedTTL)
	v.SetDefault("cache.sweep_interval", sweeperDefaults.Interval)
	v.SetDefault("cache.sweep_delay", sweeperDefaults.InitialDelay)

	v.SetDefault("documents.max_age", documentDefaults.MaxAge)
	v.SetDefault("documents.brand", page.DefaultBrand)
	v.SetDefault("documents.logo", "assets/logo.png")
	v.SetDefault("documents.daily_window", documentDefaults.DailyWindow)
	v.SetDefault("documents.dir", "documents")
	v.SetDefault("documents.bucket", "")
	v.SetDefault("documents.prefix", "report-atlas/")
	v.SetDefault("documents.aws_profile", "")
	v.SetDefault("documents.aws_region", "")

	v.SetDefault("warehouse.profiles", defaultProfilesPath())
	v.SetDefault("warehouse.profile", "")
}

func defaultProfilesPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".reportatlas.ini"
	}
	return fmt.Sprintf("%s/.reportatlas.ini", home)
}

// Load reads .env from the working directory when present and then resolves the settings.
func Load(configFile string) (*Settings, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}
	return LoadFs(afero.NewOsFs(), configFile)
}

// LoadFs resolves settings reading the optional config file from fs.
func LoadFs(fs afero.Fs, configFile string) (*Settings, error) {
	v := viper.New()
	v.SetFs(fs)
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) Validate() error {
	var errs []error
	if s.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if s.DB.Path == "" {
		errs = append(errs, errors.New("db.path is required"))
	}
	if s.Cache.DefaultTTL <= 0 || s.Cache.ExtendedTTL <= 0 {
		errs = append(errs, errors.New("cache ttls must be positive"))
	}
	if s.Cache.SweepInterval <= 0 {
		errs = append(errs, errors.New("cache.sweep_interval must be positive"))
	}
	if s.Documents.MaxAge <= 0 {
		errs = append(errs, errors.New("documents.max_age must be positive"))
	}
	if s.Documents.DailyWindow <= 0 {
		errs = append(errs, errors.New("documents.daily_window must be positive"))
	}
	if s.Documents.Bucket == "" && s.Documents.Dir == "" {
		errs = append(errs, errors.New("either documents.bucket or documents.dir is required"))
	}
	if s.Documents.Bucket != "" && strings.Trim(s.Documents.Prefix, "/") == "" {
		errs = append(errs, errors.New("documents.prefix is required with documents.bucket"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

func (s *Settings) CacheConfig() cache.Config {
	return cache.Config{
		Enabled:     s.Cache.Enabled,
		DefaultTTL:  s.Cache.DefaultTTL,
		ExtendedTTL: s.Cache.ExtendedTTL,
	}
}

func (s *Settings) SweeperConfig() cache.SweeperConfig {
	return cache.SweeperConfig{
		Interval:     s.Cache.SweepInterval,
		InitialDelay: s.Cache.SweepDelay,
	}
}

func (s *Settings) DocumentConfig() document.Config {
	return document.Config{
		MaxAge:      s.Documents.MaxAge,
		Brand:       s.Documents.Brand,
		DailyWindow: s.Documents.DailyWindow,
	}
}

func (s *Settings) DuckDB() duckdb.Settings {
	return duckdb.Settings{
		DbPath:  s.DB.Path,
		Threads: s.DB.Threads,
	}
}

// UsesS3 reports whether documents are cached in a bucket rather than on local disk.
func (s *Settings) UsesS3() bool {
	return s.Documents.Bucket != ""
}

func (s *Settings) S3() s3cache.Settings {
	return s3cache.Settings{
		Bucket:  s.Documents.Bucket,
		Prefix:  s.Documents.Prefix,
		Profile: s.Documents.AWSProfile,
		Region:  s.Documents.AWSRegion,
	}
}
