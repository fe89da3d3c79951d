package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort      string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL   string `env:"DATABASE_URL,required"`
	JWTSecret     string `env:"JWT_SECRET,required"`
	JWTTTLMinutes int    `env:"JWT_TTL_MINUTES" envDefault:"60"`
	ClaudeAPIKey  string `env:"CLAUDE_API_KEY,required"`
	ClaudeBaseURL string `env:"CLAUDE_BASE_URL" envDefault:"https://api.anthropic.com"`
	ClaudeModel   string `env:"CLAUDE_MODEL" envDefault:"claude-3-haiku-20240307"`
	BaseURL       string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	FrontendURL   string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	UploadDir     string `env:"UPLOAD_DIR" envDefault:"uploads"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
