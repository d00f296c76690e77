package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/domain"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/httpserver/deps"
)

// envelope is the response wrapper the client firmware expects on every
// device-facing endpoint.
type envelope struct {
	ErrNo     int     `json:"errNo"`
	ErrMsg    string  `json:"errMsg"`
	Cost      float64 `json:"cost"`
	LogID     string  `json:"logId"`
	RequestID string  `json:"requestId"`
	Data      any     `json:"data"`
}

func writeClientOK(w http.ResponseWriter, d deps.Deps, data any) {
	now := timeNow(d)
	stamp := strconv.FormatInt(now.UnixMilli(), 10)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(envelope{
		ErrNo:     0,
		ErrMsg:    "succ",
		Cost:      0.01,
		LogID:     stamp,
		RequestID: stamp,
		Data:      data,
	})
}

func writeClientErr(w http.ResponseWriter, d deps.Deps, errNo int, msg string) {
	now := timeNow(d)
	stamp := strconv.FormatInt(now.UnixMilli(), 10)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(envelope{
		ErrNo:     errNo,
		ErrMsg:    msg,
		Cost:      0.01,
		LogID:     stamp,
		RequestID: stamp,
		Data:      nil,
	})
}

func timeNow(d deps.Deps) time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}

// apiError is the error body on admin endpoints.
type apiError struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainErr maps core error kinds onto HTTP statuses. Anything
// unrecognized is a store I/O failure and surfaces as 500.
func writeDomainErr(w http.ResponseWriter, err error) {
	var snConflict *domain.SNConflictError
	var limitBelow *domain.LimitBelowUsageError

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrQuotaExceeded),
		errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.As(err, &snConflict),
		errors.Is(err, domain.ErrDuplicateID),
		errors.Is(err, domain.ErrAccountExists),
		errors.As(err, &limitBelow):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTarget):
		status = http.StatusBadRequest
	}

	writeJSON(w, status, apiError{Error: err.Error()})
}
