package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/soaringjerry/SheHuMaan/internal/middleware"
	"github.com/soaringjerry/SheHuMaan/internal/nav"
	"github.com/soaringjerry/SheHuMaan/internal/services"
	"github.com/soaringjerry/SheHuMaan/internal/utils"
)

// NotificationView is a notification resolved for the caller's locale.
type NotificationView struct {
	Level   nav.Level `json:"level"`
	Key     string    `json:"key"`
	Message string    `json:"message"`
}

func renderNotification(locale string, n nav.Notification) NotificationView {
	return NotificationView{Level: n.Level, Key: n.Key, Message: utils.T(locale, n.Key)}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(code services.ErrorCode) int {
	switch code {
	case services.ErrorValidation, services.ErrorInvalid:
		return http.StatusBadRequest
	case services.ErrorInProgress:
		return http.StatusConflict
	case services.ErrorTransport, services.ErrorMalformedResult:
		return http.StatusBadGateway
	case services.ErrorMissingResult, services.ErrorNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// writeError renders err with a localized notification. Errors that are not
// ServiceErrors are logged and reported as storage failures.
func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	se, ok := services.AsServiceError(err)
	if !ok {
		rt.log.Error("Unhandled error", zap.String("path", r.URL.Path), zap.Error(err))
		se = &services.ServiceError{Code: services.ErrorStorage, Message: err.Error(), Err: err}
	}
	locale := middleware.LocaleFromContext(r.Context())
	body := map[string]any{
		"error":        se.Message,
		"code":         se.Code,
		"notification": renderNotification(locale, nav.Notification{Level: nav.LevelError, Key: se.NotificationKey()}),
	}
	if len(se.Fields) > 0 {
		body["fields"] = se.Fields
	}
	if se.Code == services.ErrorMissingResult {
		body["redirect"] = string(nav.Intake)
	}
	writeJSON(w, statusFor(se.Code), body)
}
