package controllers

import (
	"context"
	"net/http"

	"github.com/ateliernord/commandes/api/responses"
	"github.com/ateliernord/commandes/pkg/config"
	pkgerrors "github.com/ateliernord/commandes/pkg/errors"
	"github.com/ateliernord/commandes/pkg/logger"
)

// Pinger is the readiness check the sqlite client satisfies.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Commandes-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Commandes-Env", cfg.App.Env)

		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "database not ready"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
