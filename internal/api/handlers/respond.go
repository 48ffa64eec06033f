package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/lpellerin/invento/internal/apperr"
	"github.com/rs/zerolog/log"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// writeError maps a service error onto the API's error taxonomy. Internal
// errors are logged and kept out of the response body.
func writeError(w http.ResponseWriter, err error) {
	status := apperr.Status(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("Request failed")
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]string{"message": msg})
}

// decodeStrict decodes a JSON body into dst, rejecting unknown fields.
func decodeStrict(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
