package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	DB       *DBconfig
	RabbitMq *RabbitMqconfig
	Srv      *Serviceconfig
	App      *Appconfig
	Log      *Loggerconfig
}

type DBconfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type RabbitMqconfig struct {
	Host     string
	Port     int
	User     string
	Password string
	VHost    string
}

type Serviceconfig struct {
	PickupServicePort  string
	RewardsServicePort string
	AdminServicePort   string
	AuthServicePort    string
}

type Appconfig struct {
	JwtSecret string
}

type Loggerconfig struct {
	Level string
}

// New reads configuration from environment variables (optionally seeded from a
// config file already loaded into viper) and falls back to local-dev defaults.
func New() (*Config, error) {
	viper.AutomaticEnv()

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_USER", "wastecollect_user")
	viper.SetDefault("DB_PASSWORD", "wastecollect_pass")
	viper.SetDefault("DB_NAME", "wastecollect_db")

	viper.SetDefault("RABBITMQ_HOST", "localhost")
	viper.SetDefault("RABBITMQ_PORT", 5672)
	viper.SetDefault("RABBITMQ_USER", "guest")
	viper.SetDefault("RABBITMQ_PASSWORD", "guest")
	viper.SetDefault("RABBITMQ_VHOST", "")

	viper.SetDefault("PICKUP_SERVICE_PORT", "3000")
	viper.SetDefault("REWARDS_SERVICE_PORT", "3001")
	viper.SetDefault("ADMIN_SERVICE_PORT", "3002")
	viper.SetDefault("AUTH_SERVICE_PORT", "3003")

	viper.SetDefault("JWT_SECRET", "local-dev-secret")
	viper.SetDefault("LOG_LEVEL", "INFO")

	cnf := &Config{
		DB: &DBconfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetInt("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_NAME"),
		},
		RabbitMq: &RabbitMqconfig{
			Host:     viper.GetString("RABBITMQ_HOST"),
			Port:     viper.GetInt("RABBITMQ_PORT"),
			User:     viper.GetString("RABBITMQ_USER"),
			Password: viper.GetString("RABBITMQ_PASSWORD"),
			VHost:    viper.GetString("RABBITMQ_VHOST"),
		},
		Srv: &Serviceconfig{
			PickupServicePort:  viper.GetString("PICKUP_SERVICE_PORT"),
			RewardsServicePort: viper.GetString("REWARDS_SERVICE_PORT"),
			AdminServicePort:   viper.GetString("ADMIN_SERVICE_PORT"),
			AuthServicePort:    viper.GetString("AUTH_SERVICE_PORT"),
		},
		App: &Appconfig{
			JwtSecret: viper.GetString("JWT_SECRET"),
		},
		Log: &Loggerconfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	return cnf, nil
}
