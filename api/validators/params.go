package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/secureguard-backend/pkg/errors"
	"github.com/go-chi/chi/v5"
)

// PathID parses a positive integer route parameter.
func PathID(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid %s", key).WithDetails(map[string]any{"field": key})
	}
	return id, nil
}
