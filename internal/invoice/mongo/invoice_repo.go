// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Billfold Contributors

// Package mongo implements the invoice repository on the document store.
package mongo

import (
	"context"
	"errors"

	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/billfold/billfold/internal/invoice"
)

// InvoiceRepository implements invoice.Repository using a mongo collection.
type InvoiceRepository struct {
	coll *mongo.Collection
}

// NewInvoiceRepository creates an InvoiceRepository on the given collection.
func NewInvoiceRepository(coll *mongo.Collection) *InvoiceRepository {
	return &InvoiceRepository{coll: coll}
}

// Insert stores a new invoice and returns its hex object ID.
func (r *InvoiceRepository) Insert(ctx context.Context, inv *invoice.Invoice) (string, error) {
	result, err := r.coll.InsertOne(ctx, inv)
	if err != nil {
		return "", oops.Code("INVOICE_INSERT_FAILED").
			With("operation", "insert invoice").
			With("invoice_number", inv.Number).
			Wrap(err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", oops.Code("INVOICE_INSERT_FAILED").
			Errorf("unexpected inserted ID type %T", result.InsertedID)
	}
	return oid.Hex(), nil
}

// GetByID retrieves an invoice by its hex object ID.
func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*invoice.Invoice, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, oops.Code("INVOICE_INVALID_ID").With("id", id).Wrap(err)
	}

	var inv invoice.Invoice
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&inv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, oops.Code("INVOICE_NOT_FOUND").With("id", id).Wrap(invoice.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("INVOICE_GET_FAILED").
			With("operation", "get invoice by id").
			With("id", id).
			Wrap(err)
	}
	return &inv, nil
}

// Update applies a partial update. Returns true if a record was modified.
func (r *InvoiceRepository) Update(ctx context.Context, id string, update invoice.Update) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, oops.Code("INVOICE_INVALID_ID").With("id", id).Wrap(err)
	}

	set := bson.M{}
	if update.Status != "" {
		set["status"] = update.Status
	}
	if update.ExtraInfo != "" {
		set["extra_info"] = update.ExtraInfo
	}
	if update.TaxRate != 0 {
		set["tax_rate"] = update.TaxRate
	}
	if len(set) == 0 {
		return false, nil
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return false, oops.Code("INVOICE_UPDATE_FAILED").
			With("operation", "update invoice").
			With("id", id).
			Wrap(err)
	}
	return result.ModifiedCount > 0, nil
}

// Delete removes an invoice. Returns true if a record was deleted.
func (r *InvoiceRepository) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, oops.Code("INVOICE_INVALID_ID").With("id", id).Wrap(err)
	}

	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, oops.Code("INVOICE_DELETE_FAILED").
			With("operation", "delete invoice").
			With("id", id).
			Wrap(err)
	}
	return result.DeletedCount > 0, nil
}
