package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// PathUUID validates a UUID path parameter, responding 404 on garbage so
// malformed ids and missing rows are indistinguishable to the caller.
func PathUUID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := chi.URLParam(r, name)
	if _, err := uuid.Parse(raw); err != nil {
		Error(w, http.StatusNotFound, "Not found")
		return "", false
	}
	return raw, true
}
