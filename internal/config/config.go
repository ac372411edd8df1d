package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. IRRIGATION_REDIS_ADDR.
const EnvPrefix = "IRRIGATION"

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type StoreConfig struct {
	Type      string `mapstructure:"type"` // redis | bolt | sqlite | memory
	KeyPrefix string `mapstructure:"key_prefix"`
}

type SerialConfig struct {
	Port string `mapstructure:"port"`
	Baud int    `mapstructure:"baud"`
}

type MQTTConfig struct {
	Broker      string `mapstructure:"broker"`
	ClientID    string `mapstructure:"client_id"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
}

type DriverConfig struct {
	Type   string       `mapstructure:"type"` // memory | serial | mqtt
	Serial SerialConfig `mapstructure:"serial"`
	MQTT   MQTTConfig   `mapstructure:"mqtt"`
}

type Config struct {
	Port string `mapstructure:"port"`
	Log  struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"` // console | json
	} `mapstructure:"log"`
	Loop struct {
		Tick time.Duration `mapstructure:"tick"`
	} `mapstructure:"loop"`
	Schedule struct {
		Timezone string `mapstructure:"timezone"`
	} `mapstructure:"schedule"`
	Store StoreConfig `mapstructure:"store"`
	Redis RedisConfig `mapstructure:"redis"`
	Bolt  struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"bolt"`
	DB struct {
		Path      string        `mapstructure:"path"`
		Retention time.Duration `mapstructure:"retention"` // 0 keeps every event
	} `mapstructure:"db"`
	Driver DriverConfig `mapstructure:"driver"`
}

var (
	errUnknownStore  = errors.New("store.type must be redis, bolt, sqlite or memory")
	errUnknownDriver = errors.New("driver.type must be memory, serial or mqtt")
	errTick          = errors.New("loop.tick must be between 10ms and 1m")
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("loop.tick", "100ms")
	v.SetDefault("schedule.timezone", "Local")
	v.SetDefault("store.type", "redis")
	v.SetDefault("store.key_prefix", "irrigation:")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("bolt.path", "irrigation.bolt")
	v.SetDefault("db.path", "app.db")
	v.SetDefault("db.retention", "720h")
	v.SetDefault("driver.type", "memory")
	v.SetDefault("driver.serial.port", "/dev/ttyUSB0")
	v.SetDefault("driver.serial.baud", 9600)
	v.SetDefault("driver.mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("driver.mqtt.client_id", "irrigation-controller")
	v.SetDefault("driver.mqtt.topic_prefix", "irrigation")
	v.SetDefault("driver.mqtt.username", "")
	v.SetDefault("driver.mqtt.password", "")
}

// Load reads config.yml from dir (if present) and applies IRRIGATION_*
// environment overrides on top of the defaults.
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unknown backends and unusable tick intervals.
func (c *Config) Validate() error {
	switch c.Store.Type {
	case "redis", "bolt", "sqlite", "memory":
	default:
		return fmt.Errorf("%w: %q", errUnknownStore, c.Store.Type)
	}
	switch c.Driver.Type {
	case "memory", "serial", "mqtt":
	default:
		return fmt.Errorf("%w: %q", errUnknownDriver, c.Driver.Type)
	}
	if c.Loop.Tick < 10*time.Millisecond || c.Loop.Tick > time.Minute {
		return fmt.Errorf("%w: %v", errTick, c.Loop.Tick)
	}
	return nil
}

// Location resolves schedule.timezone; "Local" and "" mean the host zone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Schedule.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("schedule.timezone: %w", err)
	}
	return loc, nil
}
