// Package services orchestrates the repositories, the conversion
// service and the export pipeline behind the HTTP handlers and
// workers.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"carteira/internal/amqp"
	"carteira/internal/backend"
	"carteira/internal/core"
	applog "carteira/internal/log"
)

// TransactionService persists transactions and publishes sync events.
// The AMQP client is optional; without it writes still succeed and the
// polling sync processor picks the rows up later.
type TransactionService struct {
	repo       backend.Repository
	amqpClient *amqp.Client
	audit      *applog.StructuredLogger
}

func NewTransactionService(repo backend.Repository, amqpClient *amqp.Client) *TransactionService {
	return &TransactionService{
		repo:       repo,
		amqpClient: amqpClient,
		audit: applog.NewStructuredLogger(
			applog.New(applog.Config{Component: applog.ComponentTransaction})),
	}
}

// Create validates the transaction and its references, saves it and
// publishes a sync message. A failed publish never fails the request;
// the transaction is already durable locally.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}
	if err := s.checkReferences(ctx, t); err != nil {
		return core.Transaction{}, err
	}

	saved, err := s.repo.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.audit.LogTransactionCreated(ctx, saved.Description, string(saved.Type), saved.Amount.Cents, saved.AccountID)

	if err := s.publishSyncMessage(ctx, saved.ID, 1); err != nil {
		s.audit.LogError(ctx, "Failed to publish sync message", err,
			applog.ComponentTransaction, applog.OpSync,
			applog.NewFields().WithTransaction(saved.Description, string(saved.Type), saved.Amount.Cents, saved.AccountID))
	}

	return saved, nil
}

// Update rewrites the transaction and publishes a sync message with a
// bumped version so the export worker re-mirrors the row.
func (s *TransactionService) Update(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("validate transaction: %w", err)
	}
	if err := s.checkReferences(ctx, t); err != nil {
		return err
	}

	if err := s.repo.UpdateTransaction(ctx, t); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	if err := s.publishSyncMessage(ctx, t.ID, 2); err != nil {
		s.audit.LogError(ctx, "Failed to publish sync message", err,
			applog.ComponentTransaction, applog.OpSync,
			applog.NewFields().WithTransaction(t.Description, string(t.Type), t.Amount.Cents, t.AccountID))
	}

	return nil
}

// Delete removes the transaction locally and publishes a delete
// message for the export backend.
func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	if err := s.publishDeleteMessage(ctx, id); err != nil {
		s.audit.LogError(ctx, "Failed to publish delete message", err,
			applog.ComponentTransaction, applog.OpDelete, applog.NewFields())
	}

	return nil
}

// checkReferences verifies the source account, destination account and
// tag all exist before the row is written.
func (s *TransactionService) checkReferences(ctx context.Context, t core.Transaction) error {
	if _, err := s.repo.GetAccount(ctx, t.AccountID); err != nil {
		return fmt.Errorf("source account: %w", err)
	}
	if t.DestinationID != nil {
		if _, err := s.repo.GetAccount(ctx, *t.DestinationID); err != nil {
			return fmt.Errorf("destination account: %w", err)
		}
	}
	if t.TagID != nil {
		if _, err := s.repo.GetTag(ctx, *t.TagID); err != nil {
			return fmt.Errorf("tag: %w", err)
		}
	}
	return nil
}

func (s *TransactionService) publishSyncMessage(ctx context.Context, id, version int64) error {
	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}
	return s.amqpClient.PublishTransactionSync(ctx, id, version)
}

func (s *TransactionService) publishDeleteMessage(ctx context.Context, id int64) error {
	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping delete message")
		return nil
	}
	return s.amqpClient.PublishTransactionDelete(ctx, id)
}

// Close closes both storage and AMQP connections.
func (s *TransactionService) Close() error {
	var errs []error

	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	return errors.Join(errs...)
}
