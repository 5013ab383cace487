package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// LineField names an editable line-item field whose change drives a
// recalculation.
type LineField string

const (
	FieldItemCode LineField = "item_code"
	FieldQty      LineField = "qty"
	FieldRate     LineField = "rate"
	FieldSTAmount LineField = "st_amount"
	FieldSTRate   LineField = "st_rate"
	FieldFTRate   LineField = "ft_rate"
)

// Service loads invoices, routes field-change events into the tax engine
// and persists the recomputed document.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Invoice, error)
	Get(ctx context.Context, id string) (*Invoice, error)

	// Recompute recalculates every line and rebuilds the tax summary.
	Recompute(ctx context.Context, id string) (*Invoice, error)

	// ApplyLineEvent applies a single field change to one line, runs the
	// appropriate calculation mode and rebuilds the summary.
	ApplyLineEvent(ctx context.Context, req LineEventRequest) (*Invoice, error)
}

type CreateRequest struct {
	DocType           DocType
	CompanyID         string
	IsReturn          bool
	PartySTStatus     RegistrationStatus
	InvoiceType       string
	SalesTaxInvoice   *bool
	ChargesTemplateID *string
	FreightRule       *string
	FreightAmount     decimal.Decimal
	Currency          string
	Items             []CreateLineRequest
}

type CreateLineRequest struct {
	ItemCode          string
	Qty               decimal.Decimal
	Rate              decimal.Decimal
	TemplateID        *string
	TaxClassification *string
}

type LineEventRequest struct {
	InvoiceID string
	LineID    string
	Field     LineField

	// Value is the new field value. For item_code it is the code; for the
	// numeric fields it is the decimal representation.
	Value string
}
