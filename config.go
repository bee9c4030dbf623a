package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Default file names of the three collections, without extension.
const (
	BorrowersFileName = "usuarios"
	BooksFileName     = "libros"
	LoansFileName     = "prestamos"
)

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit    string        `yaml:"git_commit" envconfig:"LIBR_GIT_COMMIT"`
	GitTag       string        `yaml:"git_tag" envconfig:"LIBR_GIT_TAG"`
	BuildTime    string        `yaml:"build_time" envconfig:"LIBR_BUILD_TIME"`
	IsProduction bool          `yaml:"is_production" envconfig:"LIBR_IS_PRODUCTION"`
	LogLevel     zapcore.Level `yaml:"log_level" envconfig:"LIBR_LOG_LEVEL"`
	LogFolder    string        `yaml:"log_folder" envconfig:"LIBR_LOG_FOLDER"`
	LogMaxSize   int           `yaml:"log_max_size" envconfig:"LIBR_LOG_MAX_SIZE"` // megabytes
	Storage      StorageConfig `yaml:"storage"`
	Loans        LoansConfig   `yaml:"loans"`
}

type StorageConfig struct {
	Folder      string        `yaml:"folder" envconfig:"LIBR_STORAGE_FOLDER"`
	Format      string        `yaml:"format" envconfig:"LIBR_STORAGE_FORMAT"`
	BoltFile    string        `yaml:"bolt_file" envconfig:"LIBR_STORAGE_BOLT_FILE"`
	BoltTimeout time.Duration `yaml:"bolt_timeout" envconfig:"LIBR_STORAGE_BOLT_TIMEOUT"`
}

type LoansConfig struct {
	PeriodDays int `yaml:"period_days" envconfig:"LIBR_LOANS_PERIOD_DAYS"`
}

// LoadConfigFile provides an instance of config structure for the all application.
func LoadConfigFile(configFile string) (*Config, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	cfg := &Config{}
	yd := yaml.NewDecoder(file)
	err = yd.Decode(cfg)

	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigEnvs reads the environments variables into the App config.
func LoadConfigEnvs(prefix string, config *Config) error {
	return envconfig.Process(prefix, config)
}

// InitConfig setup defaults values for non provided parameters
// and configures build tags values to be used if provided.
func InitConfig(config *Config, gitCommit, gitTag, buildTime string) error {
	if len(gitCommit) != 0 {
		config.GitCommit = gitCommit
	}

	if len(gitTag) != 0 {
		config.GitTag = gitTag
	}

	if len(buildTime) != 0 {
		config.BuildTime = buildTime
	}

	if len(config.LogFolder) == 0 {
		config.LogFolder = "./logs"
	}

	if config.LogMaxSize <= 0 {
		config.LogMaxSize = 10
	}

	if len(config.Storage.Folder) == 0 {
		config.Storage.Folder = "./data"
	}

	if len(config.Storage.Format) == 0 {
		config.Storage.Format = string(FormatJSON)
	}

	format, err := ParseFormat(config.Storage.Format)
	if err != nil {
		return fmt.Errorf("make sure to set a valid storage format (json, csv or bolt): %w", err)
	}
	config.Storage.Format = string(format)

	if len(config.Storage.BoltFile) == 0 {
		config.Storage.BoltFile = "biblioteca.db"
	}

	if config.Storage.BoltTimeout <= 0 {
		config.Storage.BoltTimeout = 2 * time.Second
	}

	if config.Loans.PeriodDays == 0 {
		config.Loans.PeriodDays = 1
	}

	if config.Loans.PeriodDays < 0 {
		return errors.New("make sure to set a positive loan period in configuration file")
	}

	return nil
}

// DataFiles returns the paths of the borrowers, books and loans collections
// for the configured storage format.
func (c *Config) DataFiles() (borrowers, books, loans string) {
	if Format(c.Storage.Format) == FormatBolt {
		db := filepath.Join(c.Storage.Folder, c.Storage.BoltFile)
		return db, db, db
	}
	ext := "." + c.Storage.Format
	return filepath.Join(c.Storage.Folder, BorrowersFileName+ext),
		filepath.Join(c.Storage.Folder, BooksFileName+ext),
		filepath.Join(c.Storage.Folder, LoansFileName+ext)
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data. Both files are optional.
func LoadAndInitConfigs(gitCommit, gitTag, buildTime string) (*Config, error) {
	// Setup the yaml configuration from file.
	config, err := LoadConfigFile("./config.yml")
	if errors.Is(err, os.ErrNotExist) {
		config, err = &Config{}, nil
	}
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from file: %s", err)
	}

	// Set the environment configuration.
	err = godotenv.Load("./config.env")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, fmt.Errorf("failed to set environment configurations: %s", err)
	}

	// Use environment variables with prefix `LIBR`.
	err = LoadConfigEnvs("LIBR", config)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %s", err)
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %s", err)
	}
	return config, nil
}
