package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"resonanceAPI/internal/logger"
	"resonanceAPI/internal/types/user"
	"resonanceAPI/middleware"
	"resonanceAPI/services"
)

// UserStore is the part of the user service the HTTP layer needs.
type UserStore interface {
	GetOrCreateUser(ctx context.Context, clerkID string) (*user.User, error)
	UpdateProfile(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error)
	DeleteUserByClerkID(ctx context.Context, clerkID string) error
}

var validate = validator.New()

type UserHandler struct {
	users  UserStore
	logger logger.Logger
}

func NewUserHandler(users UserStore, log logger.Logger) *UserHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &UserHandler{
		users:  users,
		logger: log,
	}
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, ok := currentUser(ctx, w, h.users, h.logger)
	if !ok {
		return
	}

	respondWithJSON(w, http.StatusOK, u)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req user.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	// make sure the row exists before the first profile edit
	if _, ok := currentUser(ctx, w, h.users, h.logger); !ok {
		return
	}

	updated, err := h.users.UpdateProfile(ctx, clerkID, &req)
	if err != nil {
		h.logger.Errorf("UpdateProfile: clerk_id=%s: %v", clerkID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.users.DeleteUserByClerkID(ctx, clerkID); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			respondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Errorf("DeleteAccount: clerk_id=%s: %v", clerkID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to delete account")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// currentUser resolves the authenticated caller, writing the error response
// itself when it cannot.
func currentUser(ctx context.Context, w http.ResponseWriter, users UserStore, log logger.Logger) (*user.User, bool) {
	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return nil, false
	}

	u, err := users.GetOrCreateUser(ctx, clerkID)
	if err != nil {
		log.Errorf("failed to resolve user clerk_id=%s: %v", clerkID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to load user")
		return nil, false
	}
	return u, true
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
