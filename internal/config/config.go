package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver  string `mapstructure:"driver"` // sqlite / postgres
	Path    string `mapstructure:"path"`
	DSN     string `mapstructure:"dsn"`
	LogMode bool   `mapstructure:"log_mode"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type SecurityConfig struct {
	BcryptCost    int    `mapstructure:"bcrypt_cost"`
	EncryptionKey string `mapstructure:"encryption_key"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ClientConfig configures cardctl.
type ClientConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	StatePath      string `mapstructure:"state_path"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	Keyring        bool   `mapstructure:"keyring"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Security SecurityConfig `mapstructure:"security"`
	Log      LogConfig      `mapstructure:"log"`
	Client   ClientConfig   `mapstructure:"client"`
}

var (
	appConfig *Config
	loadErr   error
	once      sync.Once
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/unicom.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.log_mode", false)

	// empty secrets still need a key so UCC_* env vars reach Unmarshal
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "unicom-calc")
	v.SetDefault("jwt.expire_hours", 30*24)

	v.SetDefault("security.bcrypt_cost", 10)
	v.SetDefault("security.encryption_key", "")

	v.SetDefault("log.level", "info")

	v.SetDefault("client.base_url", "http://127.0.0.1:8080")
	v.SetDefault("client.state_path", "data/cardctl.db")
	v.SetDefault("client.timeout_seconds", 15)
	v.SetDefault("client.keyring", false)
}

// Read loads configuration from path (e.g. "config.yaml") on top of the
// built-in defaults. Values from a .env file and UCC_* environment variables
// override the file, e.g. UCC_SERVER_PORT=9000. An empty path looks for
// config.yaml in the working directory and is fine to be missing.
func Read(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("UCC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Load reads the configuration once per process; later calls return the
// first result.
func Load(path string) (*Config, error) {
	once.Do(func() {
		appConfig, loadErr = Read(path)
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return appConfig, nil
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}
