package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	RepositoryMongo    = "mongo"
	RepositoryPostgres = "postgres"
	RepositoryInMemory = "inmemory"

	envPrefix         = "TODO"
	defaultConfigPath = "config.yml"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Static     StaticConfig     `mapstructure:"static" yaml:"static"`
	Repository RepositoryConfig `mapstructure:"repository" yaml:"repository"`
	Database   DatabaseConfig   `mapstructure:"database" yaml:"database"`
	Mongo      MongoConfig      `mapstructure:"mongo" yaml:"mongo"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
	Health     HealthConfig     `mapstructure:"health" yaml:"health"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port" yaml:"port"`
	Host            string        `mapstructure:"host" yaml:"host"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	RateLimitRPM    int           `mapstructure:"rate_limit_rpm" yaml:"rate_limit_rpm"` // < 0 выключает лимит
	CORSOrigins     []string      `mapstructure:"cors_origins" yaml:"cors_origins"`
}

type StaticConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

type RepositoryConfig struct {
	Type           string        `mapstructure:"type" yaml:"type"` // "mongo", "postgres" или "inmemory"
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout"`
	AtomicReorder  bool          `mapstructure:"atomic_reorder" yaml:"atomic_reorder"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url" yaml:"url"`
	MaxConnections int           `mapstructure:"max_connections" yaml:"max_connections"`
	MinConnections int           `mapstructure:"min_connections" yaml:"min_connections"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
}

type MongoConfig struct {
	URI        string `mapstructure:"uri" yaml:"uri"`
	Database   string `mapstructure:"database" yaml:"database"`
	Collection string `mapstructure:"collection" yaml:"collection"`
}

type LoggingConfig struct {
	Development bool `mapstructure:"development" yaml:"development"`
}

type HealthConfig struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

// keys нужны viper, чтобы переменные окружения попали в Unmarshal без файла
var keys = []string{
	"server.port", "server.host", "server.request_timeout", "server.shutdown_timeout",
	"server.rate_limit_rpm", "server.cors_origins",
	"static.dir",
	"repository.type", "repository.connect_timeout", "repository.atomic_reorder",
	"database.url", "database.max_connections", "database.min_connections", "database.idle_timeout",
	"mongo.uri", "mongo.database", "mongo.collection",
	"logging.development",
	"health.interval",
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            "3000",
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimitRPM:    100,
			CORSOrigins:     []string{"*"},
		},
		Static: StaticConfig{Dir: "./assets"},
		Repository: RepositoryConfig{
			Type:           RepositoryMongo,
			ConnectTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			MaxConnections: 10,
			MinConnections: 2,
			IdleTimeout:    5 * time.Minute,
		},
		Mongo: MongoConfig{
			URI:        "mongodb://localhost:27017",
			Database:   "todo_memo",
			Collection: "todos",
		},
		Health: HealthConfig{Interval: 30 * time.Second},
	}
}

// NewFlagSet описывает флаги командной строки. Значения по умолчанию пустые,
// чтобы не перекрывать файл и окружение.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", defaultConfigPath, "путь к YAML конфигу")
	fs.Bool("print-config", false, "вывести итоговый конфиг и выйти")
	fs.String("port", "", "порт HTTP сервера")
	fs.String("repository", "", "тип хранилища: mongo, postgres, inmemory")
	return fs
}

// Load собирает конфиг: флаги > окружение TODO_* > файл > Default()
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("привязка переменной %s: %w", key, err)
		}
	}

	path := defaultConfigPath
	if fs != nil {
		if err := v.BindPFlag("server.port", fs.Lookup("port")); err != nil {
			return nil, fmt.Errorf("привязка флага port: %w", err)
		}
		if err := v.BindPFlag("repository.type", fs.Lookup("repository")); err != nil {
			return nil, fmt.Errorf("привязка флага repository: %w", err)
		}
		if p, err := fs.GetString("config"); err == nil {
			path = p
		}
	}

	if err := readFile(v, path, fs != nil && fs.Changed("config")); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфига: %w", err)
	}

	if err := mergo.Merge(&cfg, Default()); err != nil {
		return nil, fmt.Errorf("заполнение значений по умолчанию: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// readFile читает файл, если он есть; отсутствие явно указанного файла - ошибка
func readFile(v *viper.Viper, path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("не могу открыть %s: %w", path, err)
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("ошибка парсинга %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Repository.Type {
	case RepositoryMongo:
		if c.Mongo.URI == "" {
			return errors.New("mongo.uri должен быть задан")
		}
	case RepositoryPostgres:
		if c.Database.URL == "" {
			return errors.New("database.url должен быть задан для postgres")
		}
	case RepositoryInMemory:
	default:
		return fmt.Errorf("неизвестный тип хранилища %q", c.Repository.Type)
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// YAML - итоговый конфиг для --print-config
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
