package domain

import "errors"

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
	ErrInvalidDocType  = errors.New("invalid_doc_type")
	ErrInvalidCompany  = errors.New("invalid_company")
	ErrUnknownLine     = errors.New("unknown_line_item")
	ErrUnknownField    = errors.New("unknown_field")
	ErrEmptyItems      = errors.New("empty_items")
	ErrInvalidQuantity = errors.New("invalid_quantity")
)
