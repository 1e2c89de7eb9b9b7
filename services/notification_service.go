package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"monkArcAPI/internal/types/notification"
)

// PushProvider delivers a push to a set of devices. The FCM client
// implements it; tests can swap in a fake.
type PushProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

type NotificationService struct {
	db   *pgxpool.Pool
	push PushProvider
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	return &NotificationService{db: db}
}

func (s *NotificationService) SetPushProvider(p PushProvider) {
	s.push = p
}

func (s *NotificationService) RegisterDevice(ctx context.Context, clerkID string, req *notification.RegisterDeviceRequest) error {
	if req.Token == "" {
		return fmt.Errorf("%w: token is required", ErrValidation)
	}

	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to resolve user: %w", err)
	}

	query := `
	INSERT INTO device_tokens (id, user_id, token, platform, created_at)
	VALUES ($1, $2, $3, $4, NOW())
	ON CONFLICT (token)
	DO UPDATE SET user_id = $2, platform = $4
	`

	_, err = s.db.Exec(ctx, query, uuid.New(), userID, req.Token, req.Platform)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}

	return nil
}

// NotifyJourneyEvent sends a lifecycle push to all of the user's devices.
// Best-effort: failures are logged and never surfaced to the caller.
func (s *NotificationService) NotifyJourneyEvent(ctx context.Context, userID uuid.UUID, notifType notification.Type, title, body string, data map[string]any) {
	if s.push == nil {
		return
	}

	rows, err := s.db.Query(ctx, `
	SELECT id, user_id, token, platform, created_at
	FROM device_tokens
	WHERE user_id = $1`, userID)
	if err != nil {
		log.Printf("NotifyJourneyEvent: failed to load device tokens for %s: %v", userID, err)
		return
	}
	defer rows.Close()

	var tokens []notification.DeviceToken
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.ID, &t.UserID, &t.Token, &t.Platform, &t.CreatedAt); err != nil {
			log.Printf("NotifyJourneyEvent: failed to scan device token for %s: %v", userID, err)
			continue
		}
		tokens = append(tokens, t)
	}
	if err = rows.Err(); err != nil {
		log.Printf("NotifyJourneyEvent: error iterating device tokens for %s: %v", userID, err)
	}

	if len(tokens) == 0 {
		return
	}

	if data == nil {
		data = map[string]any{}
	}
	data["type"] = string(notifType)

	if err := s.push.SendPush(ctx, tokens, title, body, data); err != nil {
		log.Printf("NotifyJourneyEvent: push failed for %s: %v", userID, err)
	}
}
