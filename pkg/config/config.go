package config

import "os"

type Config struct {
	Port          string
	Env           string
	MongoURI      string
	PostgresURL   string
	JWTSecret     string
	CloudinaryURL string
}

func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		MongoURI:      getEnv("MONGO_URI", ""),
		PostgresURL:   getEnv("POSTGRES_CONN_STR", ""),
		JWTSecret:     getEnv("JWT_SECRET", "supersecretjwtkey"),
		CloudinaryURL: getEnv("CLOUDINARY_URL", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
