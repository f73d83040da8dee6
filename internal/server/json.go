package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
)

const maxBodyBytes = 1 << 20

// decodeJSONBody decodes a single JSON object into dst. On failure it writes
// a 4xx response and returns false.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(dst)
	if err == nil && decoder.More() {
		err = errTrailingData
	}
	if err == nil {
		return true
	}

	status, msg := describeDecodeError(err)
	respondWithError(w, status, msg)
	return false
}

var errTrailingData = errors.New("trailing data after JSON object")

// describeDecodeError turns a decoder failure into a status and a message
// that is safe to show to the caller.
func describeDecodeError(err error) (int, string) {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		sizeErr   *http.MaxBytesError
	)
	switch {
	case errors.Is(err, io.EOF):
		return http.StatusBadRequest, "Request body is empty"
	case errors.Is(err, errTrailingData):
		return http.StatusBadRequest, "Request body holds more than one JSON value"
	case errors.As(err, &sizeErr):
		return http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body exceeds %d bytes", sizeErr.Limit)
	case errors.As(err, &syntaxErr):
		return http.StatusBadRequest, fmt.Sprintf("Malformed JSON near byte %d", syntaxErr.Offset)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return http.StatusBadRequest, "Malformed JSON"
	case errors.As(err, &typeErr):
		return http.StatusBadRequest, fmt.Sprintf("Field %q has the wrong type", typeErr.Field)
	}

	// encoding/json has no typed error for DisallowUnknownFields.
	if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		return http.StatusBadRequest, "Unknown field " + field
	}

	// Failures from custom unmarshalers such as time.Time.
	log.Printf("Rejected request body: %v", err)
	return http.StatusBadRequest, "Request body holds an invalid value"
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling JSON response: %v", err)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal server error preparing response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
