// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Billfold Contributors

// Package invoice provides the invoice records and their persistence glue.
// There is no algorithmic content here: validate, default, persist.
package invoice

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultTaxRate applies when an invoice carries no explicit rate.
const DefaultTaxRate = 0.15

// Status is the payment state of an invoice.
type Status string

// Invoice statuses.
const (
	StatusOpen Status = "OPEN"
	StatusPaid Status = "PAID"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusOpen || s == StatusPaid
}

// Address is a billing or shipping address.
type Address struct {
	FirstName string `bson:"first_name" json:"firstName" validate:"omitempty,min=2,max=64"`
	LastName  string `bson:"last_name" json:"lastName" validate:"omitempty,min=2,max=64"`
	Street    string `bson:"street" json:"street" validate:"omitempty,min=2,max=64"`
	Number    int    `bson:"number" json:"number" validate:"omitempty,gt=0"`
	ZipCode   string `bson:"zip_code" json:"zipCode"`
	City      string `bson:"city" json:"city"`
	Country   string `bson:"country" json:"country"`
}

// Item is a billable product line.
type Item struct {
	PriceInCent int64  `bson:"price_in_cent" json:"priceInCent" validate:"gt=0"`
	Name        string `bson:"name" json:"name" validate:"min=1,max=128"`
}

// OrderItem is an item with a quantity.
type OrderItem struct {
	Quantity int  `bson:"quantity" json:"quantity" validate:"gt=0"`
	Item     Item `bson:"item" json:"item"`
}

// Invoice is an invoice record as stored in the document store.
type Invoice struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Number          string             `bson:"invoice_number" json:"invoiceNumber"`
	Items           []OrderItem        `bson:"items" json:"items"`
	BillingAddress  Address            `bson:"billing_address" json:"billingAddress"`
	ShippingAddress Address            `bson:"shipping_address" json:"shippingAddress"`
	UserID          string             `bson:"user_id" json:"userId"`
	TaxRate         float64            `bson:"tax_rate" json:"taxRate"`
	IssuedAt        time.Time          `bson:"issued_at" json:"issuedAt"`
	ExtraInfo       string             `bson:"extra_info" json:"extraInfo"`
	Status          Status             `bson:"status" json:"status"`
}

// TotalInCent returns the invoice total including tax, rounded down.
func (inv *Invoice) TotalInCent() int64 {
	var net int64
	for _, oi := range inv.Items {
		net += int64(oi.Quantity) * oi.Item.PriceInCent
	}
	return net + int64(float64(net)*inv.TaxRate)
}

// NewInvoiceParams carries inbound invoice input.
type NewInvoiceParams struct {
	Items           []OrderItem `validate:"required,min=1,dive"`
	BillingAddress  Address
	ShippingAddress Address
	UserID          string `validate:"required"`
	TaxRate         float64
	IssuedAt        time.Time
	ExtraInfo       string
	Status          Status
}

// NewInvoice validates params, applies defaults (tax rate, issue time, OPEN
// status) and assigns a fresh invoice number. Invoice numbers are ULIDs, so
// they sort by issue time.
func NewInvoice(params NewInvoiceParams) (*Invoice, error) {
	if err := validate.Struct(params); err != nil {
		return nil, oops.Code("INVOICE_INVALID_INPUT").Wrap(err)
	}

	status := params.Status
	if status == "" {
		status = StatusOpen
	}
	if !status.Valid() {
		return nil, oops.Code("INVOICE_INVALID_INPUT").
			With("status", string(status)).
			Errorf("status must be OPEN or PAID")
	}

	taxRate := params.TaxRate
	if taxRate == 0 {
		taxRate = DefaultTaxRate
	}
	if taxRate < 0 {
		return nil, oops.Code("INVOICE_INVALID_INPUT").
			With("tax_rate", taxRate).
			Errorf("tax rate cannot be negative")
	}

	issuedAt := params.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now().UTC()
	}

	return &Invoice{
		Number:          ulid.Make().String(),
		Items:           params.Items,
		BillingAddress:  params.BillingAddress,
		ShippingAddress: params.ShippingAddress,
		UserID:          params.UserID,
		TaxRate:         taxRate,
		IssuedAt:        issuedAt,
		ExtraInfo:       params.ExtraInfo,
		Status:          status,
	}, nil
}

// Update is a partial update of an invoice record. Zero fields are left
// untouched.
type Update struct {
	Status    Status
	ExtraInfo string
	TaxRate   float64
}

// IsEmpty reports whether the update would touch nothing.
func (u Update) IsEmpty() bool {
	return u.Status == "" && u.ExtraInfo == "" && u.TaxRate == 0
}

// Repository manages invoice persistence in the document store.
type Repository interface {
	// Insert stores a new invoice and returns its hex object ID.
	Insert(ctx context.Context, inv *Invoice) (string, error)

	// GetByID retrieves an invoice by its hex object ID.
	// Returns ErrNotFound if no invoice has the given ID.
	GetByID(ctx context.Context, id string) (*Invoice, error)

	// Update applies a partial update. Returns true if a record was modified.
	Update(ctx context.Context, id string, update Update) (bool, error)

	// Delete removes an invoice. Returns true if a record was deleted.
	Delete(ctx context.Context, id string) (bool, error)
}
