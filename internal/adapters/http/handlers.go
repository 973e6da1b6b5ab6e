package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mydaylog/internal/adapters/http/middleware"
	"mydaylog/internal/adapters/storage"
	"mydaylog/internal/application/orchestrators"
	"mydaylog/internal/application/projections"
	"mydaylog/internal/domain/account"
	"mydaylog/internal/domain/meal"
	"mydaylog/internal/domain/usersettings"
)

// maxBodyBytes caps request bodies; a full-year bulk patch fits comfortably.
const maxBodyBytes = 1 << 20

// errorStatus maps domain errors to the HTTP status they are reported with.
var errorStatus = []struct {
	err    error
	status int
}{
	{orchestrators.ErrInvalidCredentials, http.StatusUnauthorized},
	{account.ErrRefreshInvalid, http.StatusUnauthorized},
	{account.ErrWrongPIN, http.StatusForbidden},
	{account.ErrGuestNotEditable, http.StatusForbidden},
	{account.ErrEmailAlreadyTaken, http.StatusConflict},
	{account.ErrAccountLocked, http.StatusLocked},
	{storage.ErrNotFound, http.StatusNotFound},

	{account.ErrEmptyEmail, http.StatusBadRequest},
	{account.ErrInvalidEmail, http.StatusBadRequest},
	{account.ErrEmailTooLong, http.StatusBadRequest},
	{account.ErrEmptyFullName, http.StatusBadRequest},
	{account.ErrFullNameTooLong, http.StatusBadRequest},
	{account.ErrInvalidFullName, http.StatusBadRequest},
	{account.ErrInvalidPIN, http.StatusBadRequest},
	{account.ErrPINMismatch, http.StatusBadRequest},
	{meal.ErrInvalidDate, http.StatusBadRequest},
	{meal.ErrInvalidSlot, http.StatusBadRequest},
	{meal.ErrInvalidStatus, http.StatusBadRequest},
	{meal.ErrInvalidMark, http.StatusBadRequest},
	{meal.ErrReasonTooLong, http.StatusBadRequest},
	{meal.ErrEmptyPatch, http.StatusBadRequest},
	{orchestrators.ErrNoPatches, http.StatusBadRequest},
	{orchestrators.ErrTooManyPatches, http.StatusBadRequest},
	{orchestrators.ErrFutureDate, http.StatusBadRequest},
	{projections.ErrInvalidRange, http.StatusBadRequest},
	{usersettings.ErrInvalidTheme, http.StatusBadRequest},
	{usersettings.ErrInvalidWeekStart, http.StatusBadRequest},
	{usersettings.ErrInvalidReminderTime, http.StatusBadRequest},
	{usersettings.ErrDisplayNameTooLong, http.StatusBadRequest},
	{usersettings.ErrEmptyPatch, http.StatusBadRequest},
}

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode_failed", "error", err)
	}
}

// writeError writes {"message": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeOK writes {"ok": true}.
func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleError reports a known domain error with its status and message, and
// anything else as a generic 500.
func handleError(w http.ResponseWriter, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			writeError(w, e.status, err.Error())
			return
		}
	}
	internalError(w, err)
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

// session returns the authenticated session; routes behind RequireAuth always have one.
func session(r *http.Request) middleware.Session {
	s, _ := middleware.GetSessionFromContext(r.Context())
	return s
}

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

// handleHealth handles GET /healthz
func handleHealth(w http.ResponseWriter, r *http.Request) {
	if opts.Health != nil {
		if err := opts.Health(r.Context()); err != nil {
			slog.Error("health_check_failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, "Unavailable")
			return
		}
	}
	writeOK(w)
}

// handlePerf handles GET /debug/perf?minutes=N
func handlePerf(w http.ResponseWriter, r *http.Request) {
	if perfCollector == nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	minutes := 15
	if n, err := strconv.Atoi(r.URL.Query().Get("minutes")); err == nil && n > 0 {
		minutes = n
	}
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(time.Now().Add(-time.Duration(minutes)*time.Minute), 10))
}
