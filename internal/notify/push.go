package notify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/budgetbolt/backend/internal/logger"
	"github.com/budgetbolt/backend/internal/model"
	"github.com/budgetbolt/backend/internal/store"
)

// Sender is the part of the FCM client used for delivery.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushNotifier sends notices to every device a user registered.
// Tokens live at users/{uid}/pushTokens/{key}.
type PushNotifier struct {
	store  store.Store
	sender Sender
	link   string
}

// NewPushNotifier creates a push notifier. link is opened when the
// notification is clicked; it may be empty.
func NewPushNotifier(st store.Store, sender Sender, link string) *PushNotifier {
	return &PushNotifier{store: st, sender: sender, link: link}
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])[:16]
}

// RegisterToken records an FCM device token for the user.
func (p *PushNotifier) RegisterToken(ctx context.Context, uid, token string) error {
	path := store.DocPath(store.UserCollection(uid, store.PushTokens), tokenKey(token))
	err := p.store.Set(ctx, path, map[string]any{
		"token":     token,
		"createdAt": model.Timestamp(time.Now()),
	})
	if err != nil {
		return fmt.Errorf("failed to register push token: %w", err)
	}
	logger.Log.Info().Str("component", "push").Str("user", logger.HashUserID(uid)).Msg("registered push token")
	return nil
}

// UnregisterToken removes a device token.
func (p *PushNotifier) UnregisterToken(ctx context.Context, uid, token string) error {
	path := store.DocPath(store.UserCollection(uid, store.PushTokens), tokenKey(token))
	if err := p.store.Delete(ctx, path); err != nil {
		return fmt.Errorf("failed to unregister push token: %w", err)
	}
	return nil
}

// Notify sends the notice to each registered device. Tokens FCM reports
// as unregistered are removed. Errors are logged and never returned.
func (p *PushNotifier) Notify(ctx context.Context, uid string, n Notice) {
	if p.sender == nil {
		return
	}
	log := logger.Log.With().Str("component", "push").Str("user", logger.HashUserID(uid)).Logger()

	docs, err := p.store.List(ctx, store.Query{Collection: store.UserCollection(uid, store.PushTokens)})
	if err != nil {
		log.Warn().Err(err).Msg("failed to load push tokens")
		return
	}

	for _, doc := range docs {
		token, _ := doc.Data["token"].(string)
		if token == "" {
			continue
		}
		msg := &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: n.Title,
				Body:  n.Body,
			},
			Data: map[string]string{
				"noticeId": n.ID,
				"level":    string(n.Level),
			},
		}
		if p.link != "" {
			msg.Webpush = &messaging.WebpushConfig{
				FCMOptions: &messaging.WebpushFCMOptions{Link: p.link},
			}
		}

		if _, err := p.sender.Send(ctx, msg); err != nil {
			if messaging.IsUnregistered(err) {
				_ = p.store.Delete(ctx, doc.Path)
				log.Info().Msg("dropped unregistered push token")
				continue
			}
			log.Warn().Err(err).Msg("failed to send push")
		}
	}
}
