// Package events publishes domain events after a transaction commits.
package events

import (
	"context"
	"time"
)

type Type string

const (
	TypeReviewCreated  Type = "review.created"
	TypeRatingDeleted  Type = "rating.deleted"
	TypeProductCreated Type = "product.created"
	TypeProductUpdated Type = "product.updated"
	TypeProductDeleted Type = "product.deleted"
)

type Event struct {
	Type      Type        `json:"type"`
	Key       string      `json:"key"`
	Payload   interface{} `json:"payload"`
	RequestID string      `json:"request_id,omitempty"`
	At        time.Time   `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }
