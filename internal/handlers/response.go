// Package handlers exposes the Lucky Draw services over HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/luckydraw/backend/internal/services"
)

const maxBodyBytes = 1_048_576

// decodeJSON reads exactly one JSON object into dst. It writes the error
// response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	return decodeBody(w, r, dst, false)
}

// decodeOptionalJSON is decodeJSON for endpoints whose fields are all
// optional: an empty body leaves dst at its zero value.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	return decodeBody(w, r, dst, true)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any, optional bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return true
		}
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return false
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return false
	}

	return true
}

// pathParam returns the decoded value of a route parameter. chi matches
// on RawPath when the request carries one, leaving segments such as
// "A%2FB" escaped.
func pathParam(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	value := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return value, true
	}

	decoded, err := url.PathUnescape(value)
	if err != nil {
		services.SendErrorResponse(w, "Invalid path parameter", http.StatusBadRequest, nil)
		return "", false
	}
	return decoded, true
}

// writeServiceError maps a service error onto the HTTP error envelope.
// Storage failures are logged with their cause; clients only see the
// generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var svcErr *services.ServiceError
	if !errors.As(err, &svcErr) {
		logger.Error("unhandled error", "path", r.URL.Path, "error", err)
		services.SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, nil)
		return
	}

	switch svcErr.Code {
	case services.ErrCodeValidation:
		services.SendErrorResponse(w, svcErr.Message, http.StatusBadRequest, nil)
	case services.ErrCodeConflict:
		services.SendErrorResponse(w, svcErr.Message, http.StatusConflict, nil)
	case services.ErrCodeNotFound:
		services.SendErrorResponse(w, svcErr.Message, http.StatusNotFound, nil)
	default:
		logger.Error(svcErr.Message, "path", r.URL.Path, "error", svcErr.Err)
		services.SendErrorResponse(w, svcErr.Message, http.StatusInternalServerError, nil)
	}
}
