package services

import (
	"context"
	"errors"
	"log"

	"brewshop/internal/models"
	"brewshop/internal/notify"

	"gorm.io/gorm"
)

// Viewer is the identity a request acts as.
type Viewer struct {
	Owner  models.Owner
	UserID uint
	Email  string
	Staff  bool
}

func UserViewer(user *models.User) Viewer {
	return Viewer{Owner: models.UserOwner(user.ID), UserID: user.ID, Email: user.Email, Staff: user.IsStaff}
}

func SessionViewer(sessionKey string) Viewer {
	return Viewer{Owner: models.SessionOwner(sessionKey)}
}

// Name identifies the viewer in audit columns.
func (v Viewer) Name() string {
	if v.Email != "" {
		return v.Email
	}
	return v.Owner.String()
}

// translate maps gorm's not-found error to a service sentinel.
func translate(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}

// publish queues notifications. Failures are logged and never returned:
// the caller's write has already committed.
func publish(ctx context.Context, queue notify.Queue, msgs ...notify.Message) {
	if queue == nil || len(msgs) == 0 {
		return
	}
	if err := queue.Enqueue(ctx, msgs...); err != nil {
		for _, msg := range msgs {
			log.Printf("Warning: failed to queue %s notification to %s: %v", msg.Kind, msg.To, err)
		}
	}
}

func logSkipped(kind string, orderID uint, err error) {
	log.Printf("Warning: skipping %s notification for order %d: %v", kind, orderID, err)
}
