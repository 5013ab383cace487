package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	invoicedomain "github.com/spotledger/taxcore/internal/invoice/domain"
)

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrNotFound         = errors.New("not_found")
	ErrInvalidParty     = errors.New("invalid_party")
	ErrInvalidDirection = errors.New("invalid_payment_type")
	ErrEmptyReferences  = errors.New("empty_references")
)

// Fetcher reads withholding reference data. Not-found is (nil, nil).
type Fetcher interface {
	Section(ctx context.Context, name string) (*WHTSection, error)
	Supplier(ctx context.Context, id string) (*Supplier, error)
}

// Repository extends Fetcher with writes for reference data.
type Repository interface {
	Fetcher
	UpsertSection(ctx context.Context, section *WHTSection) error
	UpsertSupplier(ctx context.Context, supplier *Supplier) error
}

// Service creates payment entries and recomputes their withholding.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*PaymentEntry, error)
	Get(ctx context.Context, id string) (*PaymentEntry, error)

	// Recompute reruns the withholding calculation over the entry's
	// references and rebuilds the deduction rows.
	Recompute(ctx context.Context, id string) (*PaymentEntry, error)
}

type CreateRequest struct {
	PartyType      PartyType
	PartyID        string
	PartyFBRStatus *FBRStatus
	PaymentType    PaymentType
	References     []CreateReferenceRequest
}

type CreateReferenceRequest struct {
	ReferenceDocType invoicedomain.DocType
	InvoiceID        string
	Section          *string
	AllocatedAmount  decimal.Decimal
}
