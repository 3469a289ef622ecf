package authhandler

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"rhmaster/internal/domain/auth"
	"rhmaster/internal/requestctx"
	"rhmaster/internal/transport/http/api"
	"rhmaster/internal/transport/http/middleware"
	"rhmaster/internal/transport/http/shared"
)

type Handler struct {
	Operator auth.Operator
	Secret   string
	TokenTTL time.Duration
	// Enabled is false in demo mode, where login always succeeds.
	Enabled bool
}

func NewHandler(operator auth.Operator, secret string, ttl time.Duration, enabled bool) *Handler {
	return &Handler{Operator: operator, Secret: secret, TokenTTL: ttl, Enabled: enabled}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string     `json:"accessToken,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	Operator    string     `json:"operator"`
	Demo        bool       `json:"demo"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.Enabled {
		api.Success(w, loginResponse{Operator: middleware.DemoOperator, Demo: true}, middleware.GetRequestID(r.Context()))
		return
	}

	var payload loginRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Operator.Authenticate(payload.Email, payload.Password); err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			requestctx.Logger(r.Context()).Error("authenticate operator", zap.Error(err))
		}
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{Email: h.Operator.Email, Role: auth.RoleOperator}, h.TokenTTL)
	if err != nil {
		requestctx.Logger(r.Context()).Error("sign token", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "token_failed", "failed to issue token", middleware.GetRequestID(r.Context()))
		return
	}
	expires := time.Now().Add(h.TokenTTL).UTC()
	api.Success(w, loginResponse{
		AccessToken: token,
		ExpiresAt:   &expires,
		Operator:    h.Operator.Email,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	api.Success(w, map[string]any{
		"operator": middleware.GetOperator(r.Context()),
		"demo":     !h.Enabled,
	}, middleware.GetRequestID(r.Context()))
}
