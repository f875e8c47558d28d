package utilities

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// ErrInvalidJSON is returned by DecodeJSON for bodies that are not a JSON value.
var ErrInvalidJSON = errors.New("invalid JSON body")

// WriteJSON writes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the {"error": msg} body used by every endpoint.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

// DecodeJSON reads at most limit bytes of r's body into v. Unknown fields are
// ignored.
func DecodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	body := r.Body
	if limit > 0 {
		body = http.MaxBytesReader(w, r.Body, limit)
	}
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrInvalidJSON
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return ErrInvalidJSON
	}
	return nil
}
