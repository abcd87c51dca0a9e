package controllers

import (
	"net/http"

	"go.uber.org/multierr"

	"github.com/retailware/tillpoint-backend/api/responses"
	"github.com/retailware/tillpoint-backend/pkg/db"
	pkgerrors "github.com/retailware/tillpoint-backend/pkg/errors"
	"github.com/retailware/tillpoint-backend/pkg/logger"
	pkgredis "github.com/retailware/tillpoint-backend/pkg/redis"
)

// HealthLive reports process liveness only.
func HealthLive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// HealthReady reports readiness by pinging the backing stores.
func HealthReady(database db.Pinger, cache pkgredis.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var err error
		if database != nil {
			if pingErr := database.Ping(ctx); pingErr != nil {
				err = multierr.Append(err, pkgerrors.Wrap(pkgerrors.CodeDependency, pingErr, "database unreachable"))
			}
		}
		if cache != nil {
			if pingErr := cache.Ping(ctx); pingErr != nil {
				err = multierr.Append(err, pkgerrors.Wrap(pkgerrors.CodeDependency, pingErr, "redis unreachable"))
			}
		}

		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "service not ready"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
