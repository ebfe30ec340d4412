// Package controllers holds the HTTP handlers. Each handler is a closure
// over its service so routing stays declarative in api/routes.
package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/meditrack-ph/meditrack-backend/pkg/errors"
)

func timeoutContext(r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), timeout)
}

// parseLimit reads an optional positive integer limit query parameter.
func parseLimit(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer")
	}
	return value, nil
}
