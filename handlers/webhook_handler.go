package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"resonanceAPI/internal/logger"
	"resonanceAPI/internal/types/clerk"
	"resonanceAPI/internal/types/user"
	"resonanceAPI/services"
)

const (
	maxWebhookBody      = int64(65536)
	webhookTolerance    = 5 * time.Minute
	webhookSecretPrefix = "whsec_"
)

var errInvalidSignature = errors.New("invalid webhook signature")

type WebhookUserStore interface {
	CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error)
	UpdateProfile(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error)
	DeleteUserByClerkID(ctx context.Context, clerkID string) error
}

// WebhookHandler keeps the users table in sync with Clerk.
type WebhookHandler struct {
	users  WebhookUserStore
	secret string
	logger logger.Logger
	now    func() time.Time
}

// NewWebhookHandler takes the Clerk signing secret. An empty secret skips
// verification and should only be used in development.
func NewWebhookHandler(users WebhookUserStore, secret string, log logger.Logger) *WebhookHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &WebhookHandler{
		users:  users,
		secret: secret,
		logger: log,
		now:    time.Now,
	}
}

func (h *WebhookHandler) HandleClerkWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		h.logger.Warnf("Error reading webhook body: %v", err)
		http.Error(w, "Error reading body", http.StatusBadRequest)
		return
	}

	if err := h.verifySignature(r.Header, body); err != nil {
		h.logger.Warnf("Rejected webhook: %v", err)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	var event clerk.ClerkWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Warnf("Error parsing webhook: %v", err)
		http.Error(w, "Error parsing webhook", http.StatusBadRequest)
		return
	}

	h.logger.Infof("Received webhook event: %s", event.Type)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	switch event.Type {
	case "user.created":
		err = h.handleUserCreated(ctx, event.Data)
	case "user.updated":
		err = h.handleUserUpdated(ctx, event.Data)
	case "user.deleted":
		err = h.handleUserDeleted(ctx, event.Data)
	default:
		h.logger.Debugf("Unhandled webhook event type: %s", event.Type)
	}
	if err != nil {
		h.logger.Errorf("Error handling %s: %v", event.Type, err)
		http.Error(w, "Error processing webhook", http.StatusInternalServerError)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func createRequest(data clerk.ClerkUserData) *user.CreateUserRequest {
	username := data.Username
	if username == "" {
		username = data.FirstName + data.LastName
	}
	return &user.CreateUserRequest{
		ClerkID:   data.ID,
		Email:     data.PrimaryEmail(),
		Username:  username,
		FirstName: data.FirstName,
		LastName:  data.LastName,
		ImageURL:  data.Image(),
	}
}

func (h *WebhookHandler) handleUserCreated(ctx context.Context, data json.RawMessage) error {
	var userData clerk.ClerkUserData
	if err := json.Unmarshal(data, &userData); err != nil {
		return fmt.Errorf("failed to unmarshal user data: %w", err)
	}

	u, err := h.users.CreateUser(ctx, createRequest(userData))
	if err != nil {
		return fmt.Errorf("failed to create user in database: %w", err)
	}

	h.logger.Infof("Successfully created user: %s (Clerk ID: %s)", u.ID, u.ClerkID)
	return nil
}

func (h *WebhookHandler) handleUserUpdated(ctx context.Context, data json.RawMessage) error {
	var userData clerk.ClerkUserData
	if err := json.Unmarshal(data, &userData); err != nil {
		return fmt.Errorf("failed to unmarshal user data: %w", err)
	}

	req := createRequest(userData)
	_, err := h.users.UpdateProfile(ctx, userData.ID, &user.UpdateProfileRequest{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		ImageURL:  req.ImageURL,
	})
	if errors.Is(err, services.ErrUserNotFound) {
		// the created event was missed or arrived out of order
		_, err = h.users.CreateUser(ctx, req)
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	h.logger.Infof("Successfully updated user: Clerk ID: %s", userData.ID)
	return nil
}

func (h *WebhookHandler) handleUserDeleted(ctx context.Context, data json.RawMessage) error {
	var userData struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &userData); err != nil {
		return fmt.Errorf("failed to unmarshal user data: %w", err)
	}

	err := h.users.DeleteUserByClerkID(ctx, userData.ID)
	if err != nil && !errors.Is(err, services.ErrUserNotFound) {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	h.logger.Infof("Successfully deleted user: Clerk ID: %s", userData.ID)
	return nil
}

// verifySignature checks a Svix signature: base64 HMAC-SHA256 over
// "id.timestamp.body", keyed with the base64 part of the whsec_ secret.
func (h *WebhookHandler) verifySignature(header http.Header, body []byte) error {
	if h.secret == "" {
		return nil
	}

	svixID := header.Get("svix-id")
	svixTimestamp := header.Get("svix-timestamp")
	svixSignature := header.Get("svix-signature")
	if svixID == "" || svixTimestamp == "" || svixSignature == "" {
		return fmt.Errorf("%w: missing headers", errInvalidSignature)
	}

	ts, err := strconv.ParseInt(svixTimestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp", errInvalidSignature)
	}
	sent := time.Unix(ts, 0)
	if d := h.now().Sub(sent); d > webhookTolerance || d < -webhookTolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", errInvalidSignature)
	}

	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(h.secret, webhookSecretPrefix))
	if err != nil {
		return fmt.Errorf("decode webhook secret: %w", err)
	}

	expected := sign(key, svixID, svixTimestamp, body)
	for _, candidate := range strings.Fields(svixSignature) {
		version, sig, ok := strings.Cut(candidate, ",")
		if !ok || version != "v1" {
			continue
		}
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return errInvalidSignature
}

func sign(key []byte, id, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(id + "." + timestamp + "."))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
