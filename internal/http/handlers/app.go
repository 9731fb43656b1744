package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"crowdfund/internal/auth"
	"crowdfund/internal/contact"
	"crowdfund/internal/domain"
	"crowdfund/internal/faq"
	"crowdfund/internal/funding"
	"crowdfund/internal/middleware"
	"crowdfund/internal/onboarding"
	"crowdfund/internal/realtime"
	"crowdfund/internal/review"
)

// maxBodyBytes leaves room for base64 documents of storage.DefaultMaxBytes.
const maxBodyBytes = 16 << 20

// Pinger reports database reachability for the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	Auth       *auth.Service
	Onboarding *onboarding.Service
	Funding    *funding.Service
	Review     *review.Service
	Contact    *contact.Service
	FAQ        *faq.Matcher
	Stats      domain.AnalyticsRepository
	Hub        *realtime.Hub
	Upgrader   *websocket.Upgrader
	DB         Pinger
	Logger     zerolog.Logger

	DefaultCurrency string

	// Shutdown is cancelled when the server starts draining. Hijacked
	// websocket connections are not tracked by http.Server, so live feeds
	// watch it to close themselves.
	Shutdown context.Context
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, msg string) {
	a.json(w, status, map[string]errorBody{"error": {Code: code, Message: msg}})
}

// fail maps service errors onto the JSON error envelope.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		a.json(w, http.StatusUnprocessableEntity, map[string]errorBody{"error": {
			Code:    "validation_failed",
			Message: verr.Error(),
			Fields:  verr.Fields,
		}})
	case errors.Is(err, domain.ErrInvalidInput):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, "unauthorized", "authentication required")
	case errors.Is(err, domain.ErrNotVerified):
		a.error(w, http.StatusForbidden, "not_verified", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domain.ErrDuplicateEmail):
		a.error(w, http.StatusConflict, "duplicate_email", err.Error())
	case errors.Is(err, domain.ErrCampaignNotActive):
		a.error(w, http.StatusConflict, "campaign_not_active", err.Error())
	case errors.Is(err, domain.ErrExpenseExceedsRaised):
		a.error(w, http.StatusConflict, "expense_exceeds_raised", err.Error())
	case errors.Is(err, onboarding.ErrSessionExpired):
		a.error(w, http.StatusGone, "session_expired", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		a.error(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, auth.ErrGoogleDisabled):
		a.error(w, http.StatusServiceUnavailable, "unavailable", err.Error())
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to write.
	default:
		a.Logger.Error().Err(err).
			Str("path", r.URL.Path).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// decode reads a JSON body into v. It writes the error response itself and
// reports whether the handler should continue.
func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			a.error(w, http.StatusRequestEntityTooLarge, "too_large", "request body too large")
		case errors.Is(err, io.EOF):
			a.error(w, http.StatusBadRequest, "bad_request", "empty body")
		default:
			a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		}
		return false
	}
	return true
}

func (a *App) actor(r *http.Request) domain.Actor {
	return domain.Actor{
		UserID: middleware.UserIDFromContext(r.Context()),
		Role:   middleware.RoleFromContext(r.Context()),
	}
}

func pageParams(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	limit, _ = strconv.Atoi(q.Get("limit"))
	offset, _ = strconv.Atoi(q.Get("offset"))
	return limit, offset
}

type listResponse[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

func list[T any](items []T, limit, offset int) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Items: items, Limit: limit, Offset: offset}
}
