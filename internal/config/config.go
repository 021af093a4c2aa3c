package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	Server   ServerConfig
	AWS      AWSConfig
	Services ServicesConfig
	// Env is the deployment mode ("dev" or "prod"). Dev mode widens CORS
	// and includes diagnostic detail in 500 responses.
	Env string
	// JWTSecret enables bearer-token verification on the audit routes
	// when non-empty.
	JWTSecret string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type AWSConfig struct {
	Region string
}

// ServicesConfig holds the base URLs of the two identity services used
// during enrichment.
type ServicesConfig struct {
	AuditoriaMidURL string // role resolution (WSO2 token service)
	TercerosCrudURL string // person identification records
}

var requiredVars = []string{"API_PORT", "ENV", "AWS_REGION", "API_AUDITORIA_MID", "API_TERCEROS_CRUD"}

func LoadConfig() (*Config, error) {
	for _, v := range requiredVars {
		if os.Getenv(v) == "" {
			return nil, fmt.Errorf("%s environment variable not found", v)
		}
	}

	serverConfig := ServerConfig{
		Port:         os.Getenv("API_PORT"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // the query poll alone may take up to 60s
		IdleTimeout:  60 * time.Second,
	}

	return &Config{
		Server: serverConfig,
		AWS: AWSConfig{
			Region: os.Getenv("AWS_REGION"),
		},
		Services: ServicesConfig{
			AuditoriaMidURL: os.Getenv("API_AUDITORIA_MID"),
			TercerosCrudURL: os.Getenv("API_TERCEROS_CRUD"),
		},
		Env:       os.Getenv("ENV"),
		JWTSecret: os.Getenv("JWT_SECRET"),
	}, nil
}

// IsDev reports whether the service runs in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

// AllowedOrigins returns the CORS origins for the deployment mode.
func (c *Config) AllowedOrigins() []string {
	if c.IsDev() {
		return []string{"*"}
	}
	return []string{"https://*.udistrital.edu.co"}
}
