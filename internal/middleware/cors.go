package middleware

import (
	"log"
	"net/http"
	"strings"

	"cottonwood-backend/internal/config"

	"github.com/rs/cors"
)

// NewCORS builds the CORS layer for the staff dashboard. Roster exports are
// downloads, so Content-Disposition must be readable by the browser.
func NewCORS(cfg *config.Config) func(http.Handler) http.Handler {
	origins := cfg.Server.CorsAllowedOrigins
	wildcard := false
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
	}

	// Browsers refuse credentialed responses to a wildcard origin
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   cfg.Server.CorsAllowedMethods,
		AllowedHeaders:   cfg.Server.CorsAllowedHeaders,
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: !wildcard,
		MaxAge:           300, // 5 minutes
	})

	log.Printf("[CORS] Allowed origins: %s", strings.Join(origins, ", "))
	return c.Handler
}
