package config

import (
	"os"
	"time"
)

type Config struct {
	ProjectID      string
	Region         string
	LogLevel       string
	Port           string
	KMSKeyName     string
	VertexModel    string
	NATSURL        string
	NATSSubject    string
	PatternTimeout time.Duration
}

func New() *Config {
	return &Config{
		ProjectID:      os.Getenv("PROJECTID"),
		Region:         os.Getenv("REGION"),
		LogLevel:       os.Getenv("LOGLEVEL"),
		Port:           getOr("PORT", "8080"),
		KMSKeyName:     os.Getenv("KMSKEYNAME"),
		VertexModel:    os.Getenv("VERTEXMODEL"),
		NATSURL:        os.Getenv("NATSURL"),
		NATSSubject:    os.Getenv("NATSSUBJECT"),
		PatternTimeout: getDuration(os.Getenv("PATTERNTIMEOUT")),
	}
}

func getOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getDuration parses values like "5s"; anything unparseable yields 0, which means the default.
func getDuration(raw string) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0
	}
	return d
}
