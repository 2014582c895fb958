package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix                 = "LAPI"
	DefaultOpenLibraryBaseURL = "https://openlibrary.org"
	DefaultOpenLibraryTimeout = 10 * time.Second
	DefaultAuthRealm          = "books-library"
)

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit          string            `yaml:"git_commit" envconfig:"LAPI_GIT_COMMIT" json:"git_commit"`
	GitTag             string            `yaml:"git_tag" envconfig:"LAPI_GIT_TAG" json:"git_tag"`
	BuildTime          string            `yaml:"build_time" envconfig:"LAPI_BUILD_TIME" json:"build_time"`
	IsProduction       bool              `yaml:"is_production" envconfig:"LAPI_IS_PRODUCTION" json:"is_production"`
	LogLevel           zapcore.Level     `yaml:"log_level" envconfig:"LAPI_LOG_LEVEL" json:"log_level"`
	LogFolder          string            `yaml:"log_folder" envconfig:"LAPI_LOG_FOLDER" json:"log_folder"`
	LogMaxSize         int               `yaml:"log_max_size" envconfig:"LAPI_LOG_MAX_SIZE" json:"log_max_size"`
	OpsEndpointsEnable bool              `yaml:"ops_endpoints_enable" envconfig:"LAPI_OPS_ENDPOINTS_ENABLE" json:"ops_endpoints_enable"`
	ProfilerEnable     bool              `yaml:"profiler_enable" envconfig:"LAPI_PROFILER_ENABLE" json:"profiler_enable"`
	Server             ServerConfig      `yaml:"server" json:"server"`
	Database           DatabaseConfig    `yaml:"database" json:"database"`
	Redis              RedisConfig       `yaml:"redis" json:"redis"`
	BoltDB             BoltDBConfig      `yaml:"boltdb" json:"boltdb"`
	OpenLibrary        OpenLibraryConfig `yaml:"openlibrary" json:"openlibrary"`
	Auth               AuthConfig        `yaml:"auth" json:"auth"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"LAPI_SERVER_HOST" json:"host"`
	Port            string        `yaml:"port" envconfig:"LAPI_SERVER_PORT" json:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"LAPI_SERVER_READ_TIMEOUT" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"LAPI_SERVER_WRITE_TIMEOUT" json:"write_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"LAPI_SERVER_REQUEST_TIMEOUT" json:"request_timeout"` // Time to wait for a request to finish
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"LAPI_SERVER_SHUTDOWN_TIMEOUT" json:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver" envconfig:"LAPI_DATABASE_DRIVER" json:"driver"`
	DSN             string        `yaml:"dsn" envconfig:"LAPI_DATABASE_DSN" json:"-"`
	MaxOpenConns    int           `yaml:"max_open_conns" envconfig:"LAPI_DATABASE_MAX_OPEN_CONNS" json:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" envconfig:"LAPI_DATABASE_MAX_IDLE_CONNS" json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" envconfig:"LAPI_DATABASE_CONN_MAX_LIFETIME" json:"conn_max_lifetime"`
	ConnectRetries  int           `yaml:"connect_retries" envconfig:"LAPI_DATABASE_CONNECT_RETRIES" json:"connect_retries"`
	RetryInterval   time.Duration `yaml:"retry_interval" envconfig:"LAPI_DATABASE_RETRY_INTERVAL" json:"retry_interval"`
	SlowThreshold   time.Duration `yaml:"slow_threshold" envconfig:"LAPI_DATABASE_SLOW_THRESHOLD" json:"slow_threshold"`
}

type RedisConfig struct {
	Host          string        `yaml:"host" envconfig:"LAPI_REDIS_HOST" json:"host"`
	Port          string        `yaml:"port" envconfig:"LAPI_REDIS_PORT" json:"port"`
	DialTimeout   time.Duration `yaml:"dial_timeout" envconfig:"LAPI_REDIS_DIAL_TIMEOUT" json:"dial_timeout"`
	ReadTimeout   time.Duration `yaml:"read_timeout" envconfig:"LAPI_REDIS_READ_TIMEOUT" json:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout" envconfig:"LAPI_REDIS_WRITE_TIMEOUT" json:"write_timeout"`
	PoolSize      int           `yaml:"pool_size" envconfig:"LAPI_REDIS_POOL_SIZE" json:"pool_size"`
	PoolTimeout   time.Duration `yaml:"pool_timeout" envconfig:"LAPI_REDIS_POOL_TIMEOUT" json:"pool_timeout"`
	Username      string        `yaml:"username" envconfig:"LAPI_REDIS_USERNAME" json:"username"`
	Password      string        `yaml:"password" envconfig:"LAPI_REDIS_PASSWORD" json:"-"`
	DatabaseIndex int           `yaml:"db_index" envconfig:"LAPI_REDIS_DATABASE_INDEX" json:"db_index"`
}

type BoltDBConfig struct {
	FilePath   string        `yaml:"filepath" envconfig:"LAPI_BOLTDB_FILE_PATH" json:"filepath"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"LAPI_BOLTDB_TIMEOUT" json:"timeout"`
	BucketName string        `yaml:"bucket_name" envconfig:"LAPI_BOLTDB_BUCKET_NAME" json:"bucket_name"`
}

type OpenLibraryConfig struct {
	BaseURL string        `yaml:"base_url" envconfig:"LAPI_OPENLIBRARY_BASE_URL" json:"base_url"`
	Timeout time.Duration `yaml:"timeout" envconfig:"LAPI_OPENLIBRARY_TIMEOUT" json:"timeout"`
}

type AuthConfig struct {
	Realm      string `yaml:"realm" envconfig:"LAPI_AUTH_REALM" json:"realm"`
	BcryptCost int    `yaml:"bcrypt_cost" envconfig:"LAPI_AUTH_BCRYPT_COST" json:"bcrypt_cost"`
}

// LoadConfigFile provides an instance of config structure for the all application.
func LoadConfigFile(configFile string) (*Config, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	cfg := &Config{}
	if err = yaml.NewDecoder(file).Decode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigEnvs reads the environments variables and overrides the App config.
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

	if len(config.Server.Host) == 0 || len(config.Server.Port) == 0 {
		return errors.New("make sure to set valid server address and port in configuration file")
	}

	if len(config.Redis.Host) == 0 || len(config.Redis.Port) == 0 {
		return errors.New("make sure to set valid redis address and port in configuration file")
	}

	if config.Database.Driver != "sqlite" && len(config.Database.DSN) == 0 {
		return errors.New("make sure to set a valid database dsn in configuration file")
	}

	if config.Database.Driver == "sqlite" && len(config.Database.DSN) == 0 {
		config.Database.DSN = "books.db"
	}

	if len(config.BoltDB.FilePath) == 0 || len(config.BoltDB.BucketName) == 0 {
		return errors.New("make sure to set valid boltdb file path and bucket name in configuration file")
	}

	if config.LogMaxSize <= 0 {
		config.LogMaxSize = 10
	}

	if len(config.OpenLibrary.BaseURL) == 0 {
		config.OpenLibrary.BaseURL = DefaultOpenLibraryBaseURL
	}

	if config.OpenLibrary.Timeout <= 0 {
		config.OpenLibrary.Timeout = DefaultOpenLibraryTimeout
	}

	if len(config.Auth.Realm) == 0 {
		config.Auth.Realm = DefaultAuthRealm
	}

	return nil
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data.
func LoadAndInitConfigs(gitCommit, gitTag, buildTime string) (*Config, error) {
	// Setup the yaml configuration from file.
	config, err := LoadConfigFile("./config.yml")
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from file: %s", err)
	}

	// Set the environment configuration.
	err = godotenv.Load("./config.env")
	if err != nil {
		return config, fmt.Errorf("failed to set environment configurations: %s", err)
	}

	// Use environment variables with prefix `LAPI`.
	err = LoadConfigEnvs(EnvPrefix, config)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %s", err)
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %s", err)
	}
	return config, nil
}
