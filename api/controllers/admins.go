package controllers

import (
	"net/http"

	"github.com/angelmondragon/secureguard-backend/api/responses"
	"github.com/angelmondragon/secureguard-backend/api/validators"
	"github.com/angelmondragon/secureguard-backend/internal/admins"
	"github.com/angelmondragon/secureguard-backend/pkg/config"
	"github.com/angelmondragon/secureguard-backend/pkg/logger"
)

func AdminList(svc admins.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminCreate serves both the authenticated create route and the
// non-production bootstrap route.
func AdminCreate(svc admins.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body admins.CreateAdminRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func AdminUpdate(svc admins.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body admins.UpdateAdminRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func AdminDelete(svc admins.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), principal.ID, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, "admin removed")
	}
}

// AdminSeed re-seeds the configured initial admin, resetting its password.
func AdminSeed(svc admins.Service, bootstrap config.BootstrapConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.Seed(r.Context(), seedRequest(bootstrap), true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func seedRequest(bootstrap config.BootstrapConfig) admins.SeedRequest {
	return admins.SeedRequest{
		Email:    bootstrap.AdminEmail,
		Password: bootstrap.AdminPassword,
		Name:     bootstrap.AdminName,
	}
}
