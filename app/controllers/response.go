package controllers

import (
	"encoding/json"
	"net/http"

	"postboard/app/middleware"
	"postboard/app/services"

	"github.com/pkg/errors"
)

const internalErrorMessage = "Something went wrong"

// Helper functions for consistent response handling

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func sendMessage(w http.ResponseWriter, status int, message string) {
	sendJSON(w, status, map[string]string{"message": message})
}

// sendError maps a service error to its status. Internal errors are logged
// and replaced with a generic message.
func sendError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		middleware.LoggerFrom(r.Context()).WithError(err).Error("request failed")
		sendMessage(w, status, internalErrorMessage)
		return
	}
	sendMessage(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads the request body into dst, answering 400 or 413 itself
// when the body is unusable.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		sendMessage(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return false
	}
	sendMessage(w, http.StatusBadRequest, "Invalid JSON body")
	return false
}

// NotFound answers requests that match no route.
func NotFound(w http.ResponseWriter, r *http.Request) {
	sendMessage(w, http.StatusNotFound, "Route not found")
}

// MethodNotAllowed answers requests whose path matches but method does not.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	sendMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
}
