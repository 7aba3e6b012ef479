package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr           string        `yaml:"addr"`
	JWTSecret      string        `yaml:"jwt_secret"`
	APITimeout     time.Duration `yaml:"timeout"`
	TokenDuration  time.Duration `yaml:"token_duration"`
	DatabasePath   string        `yaml:"database_path"`
	UploadDir      string        `yaml:"upload_dir"`
	AdminEmail     string        `yaml:"admin_email"`
	AdminPassword  string        `yaml:"admin_password"`
	QuizDuration   time.Duration `yaml:"quiz_duration"`
	PromotionDelay time.Duration `yaml:"promotion_delay"`
	WorkerCount    int           `yaml:"worker_count"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:           getEnv("ONBOARD_ADDR", ":8080"),
		JWTSecret:      getEnv("ONBOARD_JWT_SECRET", "supersecretkey"),
		APITimeout:     15 * time.Second,
		TokenDuration:  1 * time.Hour,
		DatabasePath:   getEnv("ONBOARD_DATABASE_PATH", "onboard.db"),
		UploadDir:      getEnv("ONBOARD_UPLOAD_DIR", "uploads"),
		AdminEmail:     getEnv("ONBOARD_ADMIN_EMAIL", "admin@sholas.io"),
		AdminPassword:  getEnv("ONBOARD_ADMIN_PASSWORD", "admin123"),
		QuizDuration:   600 * time.Second,
		PromotionDelay: 30 * time.Second,
		WorkerCount:    2,
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
