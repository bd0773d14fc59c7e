package controllers

import (
	"net/http"

	"github.com/velumart/velumart-backend/api/responses"
	"github.com/velumart/velumart-backend/pkg/config"
	"github.com/velumart/velumart-backend/pkg/db"
	"github.com/velumart/velumart-backend/pkg/errors"
	"github.com/velumart/velumart-backend/pkg/logger"
	"github.com/velumart/velumart-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-VeluMart-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when both the database and redis answer.
func HealthReady(cfg *config.Config, database db.Pinger, cache redis.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-VeluMart-Env", cfg.App.Env)

		if err := database.Ping(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, errors.Wrap(errors.CodeDependency, err, "database not reachable"))
			return
		}
		if err := cache.Ping(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, errors.Wrap(errors.CodeDependency, err, "redis not reachable"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
