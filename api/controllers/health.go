package controllers

import (
	"net/http"

	"github.com/TheRealPress1/roamiii-backend/api/responses"
	"github.com/TheRealPress1/roamiii-backend/pkg/config"
	"github.com/TheRealPress1/roamiii-backend/pkg/db"
	pkgerrors "github.com/TheRealPress1/roamiii-backend/pkg/errors"
	"github.com/TheRealPress1/roamiii-backend/pkg/logger"
	"github.com/TheRealPress1/roamiii-backend/pkg/redis"
)

const envHeader = "X-Roamiii-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady verifies the API's backing stores before reporting ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
				return
			}
		}
		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
