package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	Environment    string
	DatabaseURL    string
	JWTSigningKey  string
	AllowedOrigins []string
	RequestTimeout time.Duration

	Office Office
}

// Office holds the deployment-fixed letterhead and signature block content
// stamped on every issued certificate.
type Office struct {
	Republic       string
	Department     string
	Name           string
	Address        string
	Signatory      string
	SignatoryTitle string
	ORSeriesPrefix string
}

// FromEnv builds a Server config from environment variables so main stays lean.
// A local .env file is loaded first when present; real environment wins.
func FromEnv() Server {
	_ = godotenv.Load()

	timeout := 30 * time.Second
	if v := os.Getenv("FISCALIA_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			timeout = d
		}
	}

	jwtSigningKey := os.Getenv("FISCALIA_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	origins := []string{"*"}
	if v := os.Getenv("FISCALIA_ALLOWED_ORIGINS"); v != "" {
		origins = origins[:0]
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				origins = append(origins, part)
			}
		}
	}

	return Server{
		Addr:           getenv("FISCALIA_ADDR", ":8080"),
		Environment:    getenv("FISCALIA_ENV", "development"),
		DatabaseURL:    os.Getenv("FISCALIA_DATABASE_URL"),
		JWTSigningKey:  jwtSigningKey,
		AllowedOrigins: origins,
		RequestTimeout: timeout,
		Office: Office{
			Republic:       getenv("FISCALIA_OFFICE_REPUBLIC", "Republic of the Philippines"),
			Department:     getenv("FISCALIA_OFFICE_DEPARTMENT", "Department of Justice"),
			Name:           getenv("FISCALIA_OFFICE_NAME", "Office of the City Prosecutor"),
			Address:        getenv("FISCALIA_OFFICE_ADDRESS", "City Hall Complex"),
			Signatory:      getenv("FISCALIA_OFFICE_SIGNATORY", "City Prosecutor"),
			SignatoryTitle: getenv("FISCALIA_OFFICE_SIGNATORY_TITLE", "City Prosecutor"),
			ORSeriesPrefix: getenv("FISCALIA_OR_PREFIX", "OR"),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
