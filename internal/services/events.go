// internal/services/events.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/catalog-api/internal/events"
	"github.com/javajoker/catalog-api/internal/utils"
)

const publishTimeout = 5 * time.Second

// publish runs after commit. The write already succeeded, so failures are
// logged and dropped.
func publish(ctx context.Context, publisher events.Publisher, eventType events.Type, key string, payload interface{}) {
	if publisher == nil {
		return
	}

	requestID := utils.RequestIDFromContext(ctx)
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err := publisher.Publish(pubCtx, events.Event{
		Type:      eventType,
		Key:       key,
		Payload:   payload,
		RequestID: requestID,
		At:        time.Now().UTC(),
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"request_id": requestID,
			"event":      eventType,
			"key":        key,
		}).WithError(err).Warn("failed to publish event")
	}
}

func productKey(id uint) string {
	return fmt.Sprintf("product:%d", id)
}
