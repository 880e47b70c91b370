package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode   string `mapstructure:"mode"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Repositories struct {
		Postgres struct {
			Host     string `mapstructure:"host"`
			Password string `mapstructure:"password"`
			Port     string `mapstructure:"port"`
			Username string `mapstructure:"username"`
			DB       string `mapstructure:"db"`
			SSLMode  string `mapstructure:"sslmode"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	JWT       JWTConfig `mapstructure:"jwt"`
	Providers struct {
		OSRM struct {
			BaseURL string        `mapstructure:"baseURL"`
			Timeout time.Duration `mapstructure:"timeout"`
		} `mapstructure:"osrm"`
		Nominatim struct {
			BaseURL      string        `mapstructure:"baseURL"`
			UserAgent    string        `mapstructure:"userAgent"`
			CountryCodes string        `mapstructure:"countryCodes"`
			Timeout      time.Duration `mapstructure:"timeout"`
		} `mapstructure:"nominatim"`
		OpenWeather struct {
			BaseURL string        `mapstructure:"baseURL"`
			APIKey  string        `mapstructure:"apiKey"`
			Timeout time.Duration `mapstructure:"timeout"`
		} `mapstructure:"openweather"`
	} `mapstructure:"providers"`
	OAuth struct {
		Google struct {
			ClientID     string `mapstructure:"clientID"`
			ClientSecret string `mapstructure:"clientSecret"`
			CallbackURL  string `mapstructure:"callbackURL"`
		} `mapstructure:"google"`
	} `mapstructure:"oauth"`
	Planner struct {
		HistoryWindowMonths int `mapstructure:"historyWindowMonths"`
	} `mapstructure:"planner"`
}

type JWTConfig struct {
	SecretKey        string        `mapstructure:"secretKey"`
	RefreshSecretKey string        `mapstructure:"refreshSecretKey"`
	Issuer           string        `mapstructure:"issuer"`
	Audience         string        `mapstructure:"audience"`
	AccessTTL        time.Duration `mapstructure:"accessTTL"`
	RefreshTTL       time.Duration `mapstructure:"refreshTTL"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}

	// Secrets come from the environment, never from the yml.
	if s := os.Getenv("JWT_SECRET_KEY"); s != "" {
		config.JWT.SecretKey = s
	}
	if s := os.Getenv("JWT_REFRESH_SECRET_KEY"); s != "" {
		config.JWT.RefreshSecretKey = s
	}
	if s := os.Getenv("POSTGRES_PASSWORD"); s != "" {
		config.Repositories.Postgres.Password = s
	}
	if s := os.Getenv("OPENWEATHER_API_KEY"); s != "" {
		config.Providers.OpenWeather.APIKey = s
	}
	if s := os.Getenv("GOOGLE_CLIENT_ID"); s != "" {
		config.OAuth.Google.ClientID = s
	}
	if s := os.Getenv("GOOGLE_CLIENT_SECRET"); s != "" {
		config.OAuth.Google.ClientSecret = s
	}

	return config, nil
}
