package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	MQTT       MQTTConfig
	Shift      ShiftConfig
	Liveness   LivenessConfig
	Retention  RetentionConfig
	Monitoring MonitoringConfig
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	TimescaleDB PostgresConfig `mapstructure:"timescaledb"`
	AppDB       PostgresConfig `mapstructure:"postgres_app"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type MQTTConfig struct {
	BrokerURL      string `mapstructure:"broker_url"`
	ClientIDPrefix string `mapstructure:"client_id_prefix"`
	SensorTopic    string `mapstructure:"sensor_topic"`
	HeartbeatTopic string `mapstructure:"heartbeat_topic"`
	QoS            byte   `mapstructure:"qos"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
}

// ShiftConfig mirrors shiftcal.Config. The overtime hours are plant
// heuristics, kept configurable on purpose.
type ShiftConfig struct {
	DayStartHour        int     `mapstructure:"day_start_hour"`
	MorningEndHour      int     `mapstructure:"morning_end_hour"`
	BaseHours           float64 `mapstructure:"base_hours"`
	OvertimeHours       float64 `mapstructure:"overtime_hours"`
	FridayOvertimeHours float64 `mapstructure:"friday_overtime_hours"`
	MorningOvertimeHour int     `mapstructure:"morning_overtime_hour"`
	NightOvertimeFrom   int     `mapstructure:"night_overtime_from_hour"`
	NightOvertimeTo     int     `mapstructure:"night_overtime_to_hour"`
}

type LivenessConfig struct {
	DeviceTimeout     time.Duration `mapstructure:"device_timeout"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
}

// RetentionConfig controls reading cleanup. MaxAge of zero keeps
// readings indefinitely (the default; readings are append-only facts).
type RetentionConfig struct {
	MaxAge   time.Duration `mapstructure:"max_age"`
	Interval time.Duration `mapstructure:"interval"`
}

type MonitoringConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// Load initializes configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetEnvPrefix("ANDON")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Load config file if exists
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.shutdown_timeout", "30s")
	viper.SetDefault("server.allowed_origins", []string{"*"})

	// Database defaults
	viper.SetDefault("database.timescaledb.sslmode", "disable")
	viper.SetDefault("database.postgres_app.sslmode", "disable")

	// Redis defaults
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.cache_ttl", "5m")

	// MQTT defaults
	viper.SetDefault("mqtt.broker_url", "tcp://localhost:1883")
	viper.SetDefault("mqtt.client_id_prefix", "andonhub")
	viper.SetDefault("mqtt.sensor_topic", "device/sensor_data")
	viper.SetDefault("mqtt.heartbeat_topic", "device/heartbeat")
	viper.SetDefault("mqtt.qos", 1)

	// Shift defaults
	viper.SetDefault("shift.day_start_hour", 7)
	viper.SetDefault("shift.morning_end_hour", 19)
	viper.SetDefault("shift.base_hours", 8.0)
	viper.SetDefault("shift.overtime_hours", 10.5)
	viper.SetDefault("shift.friday_overtime_hours", 10.0)
	viper.SetDefault("shift.morning_overtime_hour", 16)
	viper.SetDefault("shift.night_overtime_from_hour", 4)
	viper.SetDefault("shift.night_overtime_to_hour", 7)

	// Liveness defaults
	viper.SetDefault("liveness.device_timeout", "15s")
	viper.SetDefault("liveness.heartbeat_interval", "5s")

	// Retention defaults: keep everything
	viper.SetDefault("retention.max_age", "0")
	viper.SetDefault("retention.interval", "1h")

	// Monitoring defaults
	viper.SetDefault("monitoring.log_level", "info")
}

func validateConfig(config *Config) error {
	if config.Database.TimescaleDB.Host == "" {
		return fmt.Errorf("timescaledb host is required")
	}
	if config.Database.AppDB.Host == "" {
		return fmt.Errorf("postgres app host is required")
	}
	if config.MQTT.BrokerURL == "" {
		return fmt.Errorf("mqtt broker url is required")
	}
	if config.Shift.DayStartHour < 0 || config.Shift.DayStartHour > 23 {
		return fmt.Errorf("shift day start hour out of range")
	}
	if config.Shift.MorningEndHour <= config.Shift.DayStartHour {
		return fmt.Errorf("morning end hour must be after day start hour")
	}
	return nil
}
