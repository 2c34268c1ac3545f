package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/phamminhquan/stock-ledger/internal/storage/mq"
)

// Service consumes the ledger's own domain events. The handlers only log for
// now; they exist so downstream processing has a place to land.
type Service struct {
	logger     *slog.Logger
	mqConsumer mq.Consumer
}

// New creates a new event service.
func New(
	logger *slog.Logger,
	mqConsumer mq.Consumer,
) *Service {
	return &Service{
		logger:     logger,
		mqConsumer: mqConsumer,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	if err := s.mqConsumer.RegisterHandler(
		TopicProductCreated,
		func(ctx context.Context, topic string, payload []byte) error {
			var ev ProductCreatedEvent
			if err := json.Unmarshal(payload, &ev); err != nil {
				return fmt.Errorf("unmarshal product created event: %w", err)
			}

			s.handleProductCreated(ctx, ev)
			return nil
		},
	); err != nil {
		return nil, fmt.Errorf("register product created event handler: %w", err)
	}

	if err := s.mqConsumer.RegisterHandler(
		TopicTransactionRecorded,
		func(ctx context.Context, topic string, payload []byte) error {
			var ev TransactionRecordedEvent
			if err := json.Unmarshal(payload, &ev); err != nil {
				return fmt.Errorf("unmarshal transaction recorded event: %w", err)
			}

			s.handleTransactionRecorded(ctx, ev)
			return nil
		},
	); err != nil {
		return nil, fmt.Errorf("register transaction recorded event handler: %w", err)
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	return func() {
		mqCleanup()
	}, nil
}

func (s *Service) handleProductCreated(ctx context.Context, ev ProductCreatedEvent) {
	s.logger.InfoContext(ctx, "handling product created event", slog.Any("event", ev))
}

func (s *Service) handleTransactionRecorded(ctx context.Context, ev TransactionRecordedEvent) {
	s.logger.InfoContext(ctx, "handling transaction recorded event", slog.Any("event", ev))
}
