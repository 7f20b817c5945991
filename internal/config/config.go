package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Trivia struct {
		TTL string `yaml:"ttl"`
	} `yaml:"trivia"`
	Gemini struct {
		APIKey  string `yaml:"apiKey"`
		Model   string `yaml:"model"`
		Timeout string `yaml:"timeout"`
	} `yaml:"gemini"`
	Toast struct {
		TTL string `yaml:"ttl"`
	} `yaml:"toast"`
	Confetti struct {
		Particles int `yaml:"particles"`
		Frames    int `yaml:"frames"`
		FPS       int `yaml:"fps"`
	} `yaml:"confetti"`
}

// LoadEnv reads a .env file into the process environment if one exists.
func LoadEnv(paths ...string) {
	if err := godotenv.Load(paths...); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
}

// Load reads YAML config from path. Secrets missing from the file fall back
// to the environment.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
