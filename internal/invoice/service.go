// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Billfold Contributors

package invoice

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// Service coordinates invoice creation and lifecycle changes.
type Service struct {
	invoices Repository
	logger   *slog.Logger
}

// NewService creates an invoice service with a default logger.
func NewService(invoices Repository) (*Service, error) {
	return NewServiceWithLogger(invoices, slog.Default())
}

// NewServiceWithLogger creates an invoice service with the given logger.
func NewServiceWithLogger(invoices Repository, logger *slog.Logger) (*Service, error) {
	if invoices == nil {
		return nil, oops.Code("INVOICE_INVALID_DEPENDENCY").Errorf("invoice repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{invoices: invoices, logger: logger}, nil
}

// Create validates the input, builds the invoice with defaults applied and
// persists it. Returns the stored invoice with its ID set.
func (s *Service) Create(ctx context.Context, params NewInvoiceParams) (*Invoice, error) {
	inv, err := NewInvoice(params)
	if err != nil {
		return nil, err
	}

	id, err := s.invoices.Insert(ctx, inv)
	if err != nil {
		return nil, oops.Code("INVOICE_CREATE_FAILED").
			With("user_id", inv.UserID).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "invoice created",
		"invoice_id", id,
		"invoice_number", inv.Number,
		"user_id", inv.UserID,
	)
	return s.invoices.GetByID(ctx, id)
}

// Get retrieves an invoice by its hex object ID.
func (s *Service) Get(ctx context.Context, id string) (*Invoice, error) {
	return s.invoices.GetByID(ctx, id)
}

// Update applies a partial update to an invoice. An empty update is a no-op.
func (s *Service) Update(ctx context.Context, id string, update Update) error {
	if update.IsEmpty() {
		return nil
	}
	if update.Status != "" && !update.Status.Valid() {
		return oops.Code("INVOICE_INVALID_INPUT").
			With("status", string(update.Status)).
			Errorf("status must be OPEN or PAID")
	}
	if update.TaxRate < 0 {
		return oops.Code("INVOICE_INVALID_INPUT").
			With("tax_rate", update.TaxRate).
			Errorf("tax rate cannot be negative")
	}

	modified, err := s.invoices.Update(ctx, id, update)
	if err != nil {
		return oops.Code("INVOICE_UPDATE_FAILED").With("invoice_id", id).Wrap(err)
	}
	if !modified {
		return oops.Code("INVOICE_NOT_FOUND").With("invoice_id", id).Wrap(ErrNotFound)
	}
	return nil
}

// Delete removes an invoice by its hex object ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.invoices.Delete(ctx, id)
	if err != nil {
		return oops.Code("INVOICE_DELETE_FAILED").With("invoice_id", id).Wrap(err)
	}
	if !deleted {
		return oops.Code("INVOICE_NOT_FOUND").With("invoice_id", id).Wrap(ErrNotFound)
	}

	s.logger.InfoContext(ctx, "invoice deleted", "invoice_id", id)
	return nil
}
