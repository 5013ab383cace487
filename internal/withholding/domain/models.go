// Package domain contains payment-entry withholding tax models: WHT
// sections with their taxpayer-status rates and the payment entries whose
// invoice references attract section 153-style withholding.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/spotledger/taxcore/internal/invoice/domain"
)

// PartyType is the payment counterparty kind. Withholding applies only to
// supplier and customer payments.
type PartyType string

const (
	PartySupplier PartyType = "SUPPLIER"
	PartyCustomer PartyType = "CUSTOMER"
	PartyEmployee PartyType = "EMPLOYEE"
)

// PaymentType is the payment direction. It selects which of a section's
// account heads the deduction row posts to.
type PaymentType string

const (
	PaymentPay     PaymentType = "PAY"
	PaymentReceive PaymentType = "RECEIVE"
)

// FBRStatus is the party's taxpayer status on the FBR active taxpayer list.
type FBRStatus string

const (
	FBRActive   FBRStatus = "Active"
	FBRInActive FBRStatus = "InActive"
)

// ChargeTypeActual and AddDeduct mirror the host ERP's charge row fields.
const (
	ChargeTypeActual = "Actual"
	AddDeductDeduct  = "Deduct"
)

// WHTSection is a statutory withholding section with its rate pair. The
// inactive-taxpayer rate is the penalty rate for parties off the active
// taxpayer list.
type WHTSection struct {
	Name string `gorm:"primaryKey;type:text"`

	AccountHead              string `gorm:"type:text"`
	TaxReceivableAccountHead string `gorm:"type:text"`

	ActiveTaxpayerRate   decimal.Decimal `gorm:"type:numeric(9,4)"`
	InactiveTaxpayerRate decimal.Decimal `gorm:"type:numeric(9,4)"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (WHTSection) TableName() string { return "wht_sections" }

// Supplier carries the default WHT section applied to purchase-invoice
// references that name none of their own.
type Supplier struct {
	ID   string `gorm:"primaryKey;type:text"`
	Name string `gorm:"type:text;not null"`

	DefaultWHTSection *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Supplier) TableName() string { return "suppliers" }

// PaymentEntry is a payment against one or more invoices. Taxes is rebuilt
// by the withholding calculator on every recompute.
type PaymentEntry struct {
	ID snowflake.ID `gorm:"primaryKey"`

	PartyType PartyType `gorm:"type:text;not null"`
	PartyID   string    `gorm:"type:text;not null"`

	// PartyFBRStatus selects the section rate. Nil means status unknown,
	// which yields no withholding at all.
	PartyFBRStatus *FBRStatus `gorm:"type:text"`

	PaymentType PaymentType `gorm:"type:text;not null"`

	// TotalWHT is the sum of all deduction rows.
	TotalWHT decimal.Decimal `gorm:"type:numeric(18,6)"`

	References []PaymentReference `gorm:"foreignKey:PaymentEntryID"`
	Taxes      []WHTChargeRow     `gorm:"foreignKey:PaymentEntryID"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PaymentEntry) TableName() string { return "payment_entries" }

// PaymentReference allocates part of the payment to one invoice. WHTRate
// and WHTAmount are computed outputs.
type PaymentReference struct {
	ID             snowflake.ID `gorm:"primaryKey"`
	PaymentEntryID snowflake.ID `gorm:"not null;index"`

	ReferenceDocType invoicedomain.DocType `gorm:"type:text;not null"`
	InvoiceID        snowflake.ID          `gorm:"not null"`

	// Section names the WHT section, defaulted from the supplier when empty.
	Section *string `gorm:"type:text"`

	AllocatedAmount decimal.Decimal `gorm:"type:numeric(18,6);not null"`

	WHTRate   decimal.Decimal `gorm:"type:numeric(9,4)"`
	WHTAmount decimal.Decimal `gorm:"type:numeric(18,6)"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PaymentReference) TableName() string { return "payment_references" }

// WHTChargeRow is one aggregated deduction row on the payment entry,
// grouped per section.
type WHTChargeRow struct {
	ID             snowflake.ID `gorm:"primaryKey"`
	PaymentEntryID snowflake.ID `gorm:"not null;index"`

	ChargeType  string          `gorm:"type:text;not null;default:'Actual'"`
	AddDeduct   string          `gorm:"type:text;not null;default:'Deduct'"`
	AccountHead string          `gorm:"type:text;not null"`
	Description string          `gorm:"type:text"`
	Amount      decimal.Decimal `gorm:"type:numeric(18,6);not null"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (WHTChargeRow) TableName() string { return "payment_wht_charges" }
