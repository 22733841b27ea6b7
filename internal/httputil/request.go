package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"dataroom/internal/domain"
)

// maxJSONBodyBytes caps JSON request bodies
const maxJSONBodyBytes = 1 << 20

// ParseJSON decodes JSON from the request body into the given destination.
// Malformed bodies are reported as validation errors.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dest); err != nil {
		return &domain.ValidationError{Message: fmt.Sprintf("invalid JSON: %v", err)}
	}

	return nil
}

// PathID parses a positive integer path value such as {id}
func PathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.ValidationError{Message: fmt.Sprintf("invalid %s %q", name, raw)}
	}
	return id, nil
}

// OptionalID parses an optional positive integer form value.
// Empty, "null" and "None" mean absent.
func OptionalID(raw, name string) (*int64, error) {
	switch raw {
	case "", "null", "None":
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("invalid %s %q", name, raw)}
	}
	return &id, nil
}
