package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/config"
)

// CORS lets the back-office frontend call the API from its own origin.
//
// Origins resolve as follows: an explicit list is used as is, "*" reflects any
// origin, and an empty list reflects any origin on development hosts while
// denying every cross-origin call elsewhere.
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	devHost := environment == "" || environment == "development" || environment == "local"
	switch {
	case containsString(cfg.AllowedOrigins, "*"):
		if !devHost {
			logger.Warn("CORS reflects any origin outside development", zap.String("environment", environment))
		}
		options.AllowOriginFunc = anyOrigin
	case len(cfg.AllowedOrigins) > 0:
		options.AllowedOrigins = cfg.AllowedOrigins
		logger.Info("CORS origins", zap.Strings("origins", cfg.AllowedOrigins))
	case devHost:
		options.AllowOriginFunc = anyOrigin
		logger.Info("CORS reflects any origin in development")
	default:
		// an empty AllowedOrigins would mean "*" to the cors package
		options.AllowOriginFunc = func(*http.Request, string) bool { return false }
		logger.Warn("CORS has no allowed origins, cross-origin requests are denied",
			zap.String("environment", environment))
	}

	return cors.Handler(options)
}

func anyOrigin(_ *http.Request, origin string) bool {
	return origin != ""
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
