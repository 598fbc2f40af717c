package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/secureguard-backend/api/responses"
	"github.com/angelmondragon/secureguard-backend/internal/admins"
	"github.com/angelmondragon/secureguard-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/secureguard-backend/pkg/errors"
	"github.com/angelmondragon/secureguard-backend/pkg/logger"
)

// SchemaResetter drops and recreates the database schema.
type SchemaResetter func(ctx context.Context) error

// ResetDatabase rebuilds the schema and seeds the initial admin again.
func ResetDatabase(reset SchemaResetter, svc admins.Service, bootstrap config.BootstrapConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := reset(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reset database"))
			return
		}
		if logg != nil {
			logg.Warn(r.Context(), "database.reset")
		}

		result, err := svc.Seed(r.Context(), seedRequest(bootstrap), true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"message": "database reset",
			"admin":   result.Admin,
		})
	}
}
