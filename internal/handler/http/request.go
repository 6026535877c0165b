package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// maxBodyBytes bounds request bodies; batch requests carry at most a list of employee ids.
const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// queryInt returns the integer query parameter, or ok=false when absent or malformed.
func queryInt(r *http.Request, key string) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func queryIntPtr(r *http.Request, key string) *int {
	if n, ok := queryInt(r, key); ok {
		return &n
	}
	return nil
}

func queryStringPtr(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

// uuidParam reads a UUID path parameter, answering 400 itself when it is missing or malformed.
func uuidParam(w http.ResponseWriter, r *http.Request, key, label string) (string, bool) {
	raw := chi.URLParam(r, key)
	if raw == "" {
		response.BadRequest(w, label+" is required", nil)
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.BadRequest(w, label+" must be a UUID", nil)
		return "", false
	}
	return id.String(), true
}
