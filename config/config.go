package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig
	DB     DBConfig
	Redis  RedisConfig
	JWT    JWTConfig
	Clinic ClinicConfig
}

type AppConfig struct {
	Port string
	Env  string
}

type DBConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	Name          string
	MigrationsDir string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// ClinicConfig holds the bookable-hours policy. Appointments must start at or
// after OpenHour and finish by CloseHour on the same calendar day.
type ClinicConfig struct {
	OpenHour                int
	CloseHour               int
	SlotMinutes             int
	ConflictScanAllStatuses bool
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	accessExpiry, err := time.ParseDuration(viper.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(viper.GetString("JWT_REFRESH_EXPIRY"))
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	viper.SetDefault("CLINIC_OPEN_HOUR", 9)
	viper.SetDefault("CLINIC_CLOSE_HOUR", 23)
	viper.SetDefault("CLINIC_SLOT_MINUTES", 60)
	viper.SetDefault("CLINIC_CONFLICT_SCAN_ALL_STATUSES", true)
	viper.SetDefault("DB_MIGRATIONS_DIR", "db/migrations")

	config := &Config{
		App: AppConfig{
			Port: viper.GetString("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		DB: DBConfig{
			Host:          viper.GetString("DB_HOST"),
			Port:          viper.GetString("DB_PORT"),
			User:          viper.GetString("DB_USER"),
			Password:      viper.GetString("DB_PASSWORD"),
			Name:          viper.GetString("DB_NAME"),
			MigrationsDir: viper.GetString("DB_MIGRATIONS_DIR"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
		Clinic: ClinicConfig{
			OpenHour:                viper.GetInt("CLINIC_OPEN_HOUR"),
			CloseHour:               viper.GetInt("CLINIC_CLOSE_HOUR"),
			SlotMinutes:             viper.GetInt("CLINIC_SLOT_MINUTES"),
			ConflictScanAllStatuses: viper.GetBool("CLINIC_CONFLICT_SCAN_ALL_STATUSES"),
		},
	}

	return config, nil
}
