package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"log/slog"

	"github.com/cleancodehq/usermgmt/internal/auth"
	"github.com/cleancodehq/usermgmt/internal/domain/users"
)

const signupTokenTTL = 24 * time.Hour

// registerPublicRoutes exposes unauthenticated endpoints for self-service signup.
func registerPublicRoutes(mux *http.ServeMux, logger *slog.Logger, service users.Service) {
	mux.HandleFunc("/public/signup", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var payload struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			respondError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}

		user, err := service.Create(users.CreateInput{
			Name:  payload.Name,
			Email: payload.Email,
		})
		if err != nil {
			switch {
			case errors.Is(err, users.ErrEmailExists):
				respondError(w, http.StatusConflict, "email already in use")
			case errors.Is(err, users.ErrInvalidInput):
				respondError(w, http.StatusBadRequest, err.Error())
			default:
				logger.Error("signup failed", "err", err)
				respondError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		logger.Info("public signup", "user_id", user.ID, "email", user.Email)

		token := auth.IssueToken(signupTokenTTL)

		respondJSON(w, http.StatusCreated, map[string]any{
			"user": toUserResponse(user),
			"token": map[string]any{
				"access_token": token.AccessToken,
				"token_type":   token.TokenType,
				"expires_at":   token.ExpiresAt,
			},
		})
	})
}
