package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port      string
	DBUrl     string
	JWTSecret string
	Supabase  string
	AnonKey   string

	Storage    StorageConfig
	Redis      RedisConfig
	Agent      AgentConfig
	Assistant  AssistantConfig
	RateLimit  int
	Production bool
}

// StorageConfig choisit le fournisseur d'upload ("s3" ou "cloudinary")
type StorageConfig struct {
	Provider            string
	AWSBucket           string
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled indique si Redis est configuré (relais multi-instances + rate limit)
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type AgentConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

type AssistantConfig struct {
	AgentName       string
	WhatsAppNumber  string
	RefreshInterval time.Duration
}

func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Les variables d'environnement (et le .env chargé par godotenv) priment
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("lecture config: %w", err)
		}
	}

	cfg := &Config{
		Port:      v.GetString("PORT"),
		DBUrl:     v.GetString("SUPABASE_DB_URL"),
		JWTSecret: v.GetString("JWT_SECRET"),
		Supabase:  v.GetString("NEXT_PUBLIC_SUPABASE_URL"),
		AnonKey:   v.GetString("SUPABASE_ANON_KEY"),
		Storage: StorageConfig{
			Provider:            strings.ToLower(v.GetString("STORAGE_PROVIDER")),
			AWSBucket:           v.GetString("AWS_BUCKET_NAME"),
			AWSRegion:           v.GetString("AWS_REGION"),
			AWSAccessKeyID:      v.GetString("AWS_ACCESS_KEY_ID"),
			AWSSecretAccessKey:  v.GetString("AWS_SECRET_ACCESS_KEY"),
			CloudinaryCloudName: v.GetString("CLOUDINARY_CLOUD_NAME"),
			CloudinaryAPIKey:    v.GetString("CLOUDINARY_API_KEY"),
			CloudinaryAPISecret: v.GetString("CLOUDINARY_API_SECRET"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Agent: AgentConfig{
			URL:     v.GetString("AGENT_URL"),
			APIKey:  v.GetString("AGENT_API_KEY"),
			Timeout: v.GetDuration("AGENT_TIMEOUT"),
		},
		Assistant: AssistantConfig{
			AgentName:       v.GetString("AGENT_NAME"),
			WhatsAppNumber:  v.GetString("WHATSAPP_NUMBER"),
			RefreshInterval: v.GetDuration("CONVERSATION_REFRESH_INTERVAL"),
		},
		RateLimit:  v.GetInt("RATE_LIMIT_PER_MINUTE"),
		Production: v.GetString("APP_ENV") == "production",
	}

	if cfg.DBUrl == "" {
		return nil, fmt.Errorf("SUPABASE_DB_URL manquant")
	}
	// Sans secret, n'importe qui pourrait signer un token HS256 avec une clé vide
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET manquant")
	}
	if cfg.Storage.Provider != "s3" && cfg.Storage.Provider != "cloudinary" {
		return nil, fmt.Errorf("STORAGE_PROVIDER invalide: %q", cfg.Storage.Provider)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("STORAGE_PROVIDER", "s3")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("AGENT_TIMEOUT", "60s")
	v.SetDefault("AGENT_NAME", "assistente_nutricao")
	v.SetDefault("CONVERSATION_REFRESH_INTERVAL", "5s")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 30)
	v.SetDefault("APP_ENV", "development")
}
