package domain

import (
	"context"
	"errors"
)

var (
	ErrInvalidKey      = errors.New("invalid_key")
	ErrInvalidKind     = errors.New("invalid_template_kind")
	ErrInvalidCategory = errors.New("invalid_tax_category")
)

// Fetcher is the engine's read boundary to the host's reference records.
// Implementations return (nil, nil) when a record does not exist; callers
// treat both a miss and an error as "no tax applies" and degrade.
type Fetcher interface {
	Item(ctx context.Context, code string) (*Item, error)
	Template(ctx context.Context, id string) (*TaxTemplate, error)
	Company(ctx context.Context, id string) (*Company, error)
	TransactionType(ctx context.Context, name string) (*TransactionType, error)
}

// Repository extends Fetcher with the write side used by the admin API.
type Repository interface {
	Fetcher

	UpsertItem(ctx context.Context, item *Item) error
	UpsertTemplate(ctx context.Context, template *TaxTemplate) error
	UpsertCompany(ctx context.Context, company *Company) error
	UpsertTransactionType(ctx context.Context, tt *TransactionType) error
}
