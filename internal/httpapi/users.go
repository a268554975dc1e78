package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"github.com/cleancodehq/usermgmt/internal/auth"
	"github.com/cleancodehq/usermgmt/internal/domain/users"
)

type userResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(u users.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func registerUserRoutes(mux *http.ServeMux, logger *slog.Logger, service users.Service, guard *auth.Guard) {
	mux.HandleFunc("/v1/users", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handleUserList(w, r, logger, service)
		case http.MethodPost:
			handleUserCreate(w, r, logger, service)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/v1/users/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/v1/users/")
		idPart, action, _ := strings.Cut(rest, "/")
		if idPart == "" {
			respondError(w, http.StatusBadRequest, "missing user id")
			return
		}
		id, err := strconv.ParseInt(idPart, 10, 64)
		if err != nil || id <= 0 {
			respondError(w, http.StatusBadRequest, "invalid user id")
			return
		}

		switch {
		case action == "" && r.Method == http.MethodGet:
			handleUserGet(w, logger, service, id)
		case action == "" && r.Method == http.MethodPatch:
			handleUserUpdate(w, r, logger, service, id)
		case action == "" && r.Method == http.MethodDelete:
			if !guard.Authorize(r.Header.Get("Authorization")) {
				respondError(w, http.StatusUnauthorized, "admin token required")
				return
			}
			handleUserDeactivate(w, logger, service, id)
		case action == "reactivate" && r.Method == http.MethodPost:
			if !guard.Authorize(r.Header.Get("Authorization")) {
				respondError(w, http.StatusUnauthorized, "admin token required")
				return
			}
			handleUserReactivate(w, logger, service, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

func handleUserList(w http.ResponseWriter, r *http.Request, logger *slog.Logger, service users.Service) {
	// Active-only is the default; ?active=false returns everything.
	activeOnly := true
	if v := r.URL.Query().Get("active"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid active parameter")
			return
		}
		activeOnly = parsed
	}

	results, err := service.List(activeOnly)
	if err != nil {
		if errors.Is(err, users.ErrNotImplemented) {
			respondError(w, http.StatusNotImplemented, "list users not yet implemented")
			return
		}
		logger.Error("list users failed", "err", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	data := make([]userResponse, 0, len(results))
	for _, u := range results {
		data = append(data, toUserResponse(u))
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"data":  data,
		"count": len(data),
	})
}

func handleUserCreate(w http.ResponseWriter, r *http.Request, logger *slog.Logger, service users.Service) {
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
		case errors.Is(err, users.ErrNotImplemented):
			respondError(w, http.StatusNotImplemented, "create user not yet implemented")
		default:
			logger.Error("create user failed", "err", err)
			respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	respondJSON(w, http.StatusCreated, toUserResponse(user))
}

func handleUserGet(w http.ResponseWriter, logger *slog.Logger, service users.Service, id int64) {
	user, err := service.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrNotImplemented):
			respondError(w, http.StatusNotImplemented, "get user not yet implemented")
		case errors.Is(err, users.ErrNotFound):
			respondError(w, http.StatusNotFound, "user not found")
		default:
			logger.Error("get user failed", "err", err)
			respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	respondJSON(w, http.StatusOK, toUserResponse(user))
}

func handleUserUpdate(w http.ResponseWriter, r *http.Request, logger *slog.Logger, service users.Service, id int64) {
	var payload struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if payload.Name == nil && payload.Email == nil {
		respondError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	user, err := service.Update(id, users.UpdateInput{
		Name:  payload.Name,
		Email: payload.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, users.ErrNotFound):
			respondError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, users.ErrEmailExists):
			respondError(w, http.StatusConflict, "email already in use")
		case errors.Is(err, users.ErrInvalidInput):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			logger.Error("update user failed", "id", id, "err", err)
			respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	respondJSON(w, http.StatusOK, toUserResponse(user))
}

func handleUserDeactivate(w http.ResponseWriter, logger *slog.Logger, service users.Service, id int64) {
	if err := service.Deactivate(id); err != nil {
		switch {
		case errors.Is(err, users.ErrNotFound):
			respondError(w, http.StatusNotFound, "user not found")
		default:
			logger.Error("deactivate user failed", "id", id, "err", err)
			respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handleUserReactivate(w http.ResponseWriter, logger *slog.Logger, service users.Service, id int64) {
	if err := service.Reactivate(id); err != nil {
		switch {
		case errors.Is(err, users.ErrNotFound):
			respondError(w, http.StatusNotFound, "user not found")
		default:
			logger.Error("reactivate user failed", "id", id, "err", err)
			respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	user, err := service.Get(id)
	if err != nil {
		logger.Error("fetch reactivated user failed", "id", id, "err", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(user))
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// The status line is already written; logging is all that's left.
		slog.Default().Error("failed to encode response", "err", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
