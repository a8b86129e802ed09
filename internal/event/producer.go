// Package event publishes auth domain events.
package event

import (
	"context"
	"fmt"

	"github.com/Apie237/mern-chatapp/internal/domain"
	"github.com/Apie237/mern-chatapp/pkg/kafka"
	"github.com/Apie237/mern-chatapp/pkg/logger"
)

// Topics for auth domain events.
var (
	TopicUserSignedUp   = kafka.Topic("auth", "user_signed_up")
	TopicProfileUpdated = kafka.Topic("auth", "profile_updated")
)

// AggregateTypeUser is the aggregate type of every auth event.
const AggregateTypeUser = "user"

// SourceAuthService identifies this service in the event envelope.
const SourceAuthService = "auth-service"

// UserSignedUpData is the payload of a user_signed_up event.
type UserSignedUpData struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// ProfileUpdatedData is the payload of a profile_updated event.
type ProfileUpdatedData struct {
	ID         string `json:"id"`
	ProfilePic string `json:"profilePic"`
}

// publisher is the part of *kafka.Producer used here.
type publisher interface {
	Publish(ctx context.Context, topic string, event *kafka.Event) error
}

// Producer publishes auth events to Kafka.
type Producer struct {
	kafka publisher
}

// NewProducer creates a Producer over a Kafka producer.
func NewProducer(p *kafka.Producer) *Producer {
	return &Producer{kafka: p}
}

// PublishUserSignedUp publishes a user_signed_up event for u.
func (p *Producer) PublishUserSignedUp(ctx context.Context, u *domain.User) error {
	return p.publish(ctx, TopicUserSignedUp, u.ID, UserSignedUpData{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
	})
}

// PublishProfileUpdated publishes a profile_updated event.
func (p *Producer) PublishProfileUpdated(ctx context.Context, update *domain.ProfileUpdate) error {
	return p.publish(ctx, TopicProfileUpdated, update.UserID, ProfileUpdatedData{
		ID:         update.UserID,
		ProfilePic: update.ProfilePic,
	})
}

func (p *Producer) publish(ctx context.Context, topic, userID string, data any) error {
	ev, err := kafka.NewEvent(topic, userID, AggregateTypeUser, SourceAuthService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	ev.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, topic, ev); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}

// NopPublisher discards every event. It is used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishUserSignedUp(context.Context, *domain.User) error { return nil }

func (NopPublisher) PublishProfileUpdated(context.Context, *domain.ProfileUpdate) error { return nil }
