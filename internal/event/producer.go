package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/emmanuelnwankwo/api-template/internal/domain"
	pkgkafka "github.com/emmanuelnwankwo/api-template/pkg/kafka"
	"github.com/emmanuelnwankwo/api-template/pkg/logger"
)

// Kafka topic constants for account domain events.
const (
	TopicUserRegistered    = "account.user.registered"
	TopicUserVerified      = "account.user.verified"
	TopicUserUpdated       = "account.user.updated"
	TopicUserPasswordReset = "account.user.password_reset"
)

// Aggregate type constant.
const AggregateTypeUser = "user"

// Source identifier for events originating from this service.
const SourceAccountService = "account-service"

// UserData is the payload for user lifecycle events.
type UserData struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	IsVerified bool   `json:"isVerified"`
}

// PasswordResetData is the payload for an account.user.password_reset event.
type PasswordResetData struct {
	Email string `json:"email"`
}

// Publisher publishes account domain events. Publish failures are advisory:
// callers log them and carry on.
type Publisher interface {
	PublishUserRegistered(ctx context.Context, user *domain.User) error
	PublishUserVerified(ctx context.Context, user *domain.User) error
	PublishUserUpdated(ctx context.Context, user *domain.User) error
	PublishUserPasswordReset(ctx context.Context, email string) error
}

// Producer publishes account domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes an account.user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	return p.publishUser(ctx, TopicUserRegistered, user)
}

// PublishUserVerified publishes an account.user.verified event.
func (p *Producer) PublishUserVerified(ctx context.Context, user *domain.User) error {
	return p.publishUser(ctx, TopicUserVerified, user)
}

// PublishUserUpdated publishes an account.user.updated event.
func (p *Producer) PublishUserUpdated(ctx context.Context, user *domain.User) error {
	return p.publishUser(ctx, TopicUserUpdated, user)
}

// PublishUserPasswordReset publishes an account.user.password_reset event.
// The payload carries only the email; the new credential never leaves the
// service.
func (p *Producer) PublishUserPasswordReset(ctx context.Context, email string) error {
	data := PasswordResetData{Email: email}

	event, err := pkgkafka.NewEvent(TopicUserPasswordReset, email, AggregateTypeUser, SourceAccountService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", TopicUserPasswordReset, err)
	}
	event.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, TopicUserPasswordReset, event); err != nil {
		return fmt.Errorf("publish %s event: %w", TopicUserPasswordReset, err)
	}

	return nil
}

func (p *Producer) publishUser(ctx context.Context, topic string, user *domain.User) error {
	data := UserData{
		ID:         user.ID,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		IsVerified: user.IsVerified,
	}

	event, err := pkgkafka.NewEvent(topic, user.ID, AggregateTypeUser, SourceAccountService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	event.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published account event",
		slog.String("topic", topic),
		slog.String("user_id", user.ID),
	)

	return nil
}
