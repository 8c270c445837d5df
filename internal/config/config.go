package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort   string
	DataFile     string
	StoreBackend string // "file" or "postgres"

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	KafkaBrokers []string
	KafkaTopic   string

	// Client side.
	APIBase   string
	TokenFile string

	AssistantEndpoint string
	AssistantAPIKey   string
	AssistantModel    string
}

// Load reads the environment, trying a .env file in the working directory
// and its parents first. Missing variables fall back to development
// defaults.
func Load() *Config {
	loadEnv()

	cfg := &Config{
		ServerPort:        getenv("SERVER_PORT", "4000"),
		DataFile:          getenv("DATA_FILE", "data/db.json"),
		StoreBackend:      getenv("STORE_BACKEND", "file"),
		DBHost:            getenv("DB_HOST", "localhost"),
		DBPort:            getenv("DB_PORT", "5432"),
		DBUser:            getenv("DB_USER", "postgres"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            getenv("DB_NAME", "companyplus"),
		KafkaTopic:        getenv("KAFKA_TOPIC", "companyplus.audit"),
		APIBase:           getenv("API_BASE", "http://localhost:4000/api"),
		TokenFile:         os.Getenv("TOKEN_FILE"),
		AssistantEndpoint: getenv("ASSISTANT_ENDPOINT", "https://api.openai.com/v1/chat/completions"),
		AssistantAPIKey:   os.Getenv("ASSISTANT_API_KEY"),
		AssistantModel:    getenv("ASSISTANT_MODEL", "gpt-4o-mini"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	return cfg
}

func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

func loadEnv() {
	wd, err := os.Getwd()
	if err != nil {
		return
	}

	for _, envPath := range []string{
		filepath.Join(wd, ".env"),
		filepath.Join(wd, "..", ".env"),
		filepath.Join(wd, "..", "..", ".env"),
	} {
		if err := godotenv.Load(envPath); err == nil {
			return
		}
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
