// Package domain contains persistence models for purchase and sales
// invoices and their tax charge rows.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	refdomain "github.com/spotledger/taxcore/internal/refdata/domain"
	"gorm.io/datatypes"
)

// DocType distinguishes purchase from sales invoices.
type DocType string

const (
	DocTypePurchase DocType = "PURCHASE"
	DocTypeSales    DocType = "SALES"
)

// RegistrationStatus is the counterparty's sales-tax registration status:
// the supplier's on a purchase invoice, the customer's on a sales invoice.
type RegistrationStatus string

const (
	StatusRegistered   RegistrationStatus = "REGISTERED"
	StatusUnregistered RegistrationStatus = "UNREGISTERED"
)

// InvoiceTypeImport suppresses all tax computation for the document.
const InvoiceTypeImport = "Import"

// FreightRulePaidByCustomer gates the freight charge row on sales invoices.
const FreightRulePaidByCustomer = "Paid By Customer"

// ChargeTypeActual is the only charge type the aggregator emits.
const ChargeTypeActual = "Actual"

// Invoice is the document header. Taxes is rebuilt by the summary
// aggregator; Items' computed fields are owned by the line calculator.
type Invoice struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	DocType   DocType      `gorm:"type:text;not null;index"`
	CompanyID string       `gorm:"type:text;not null"`

	IsReturn bool `gorm:"not null;default:false"`

	// PartySTStatus is the counterparty registration status. On purchase
	// invoices an unregistered supplier zeroes all line taxes; on sales
	// invoices an unregistered customer attracts further tax.
	PartySTStatus RegistrationStatus `gorm:"type:text;not null;default:'REGISTERED'"`

	// InvoiceType carries special document flavors such as Import.
	InvoiceType string `gorm:"type:text"`

	// SalesTaxInvoice marks the document as a tax invoice. When false all
	// line taxes are zeroed.
	SalesTaxInvoice bool `gorm:"not null;default:true"`

	// ChargesTemplateID is the document-level taxes-and-charges template,
	// the advance-tax source for sales invoices.
	ChargesTemplateID *string `gorm:"type:text"`

	FreightRule   *string         `gorm:"type:text"`
	FreightAmount decimal.Decimal `gorm:"type:numeric(18,6)"`

	Currency string `gorm:"type:text;not null;default:'PKR'"`

	// TotalTaxes is the invoice grand total of taxes: ST + FT + advance.
	TotalTaxes decimal.Decimal `gorm:"type:numeric(18,6)"`

	Items []LineItem     `gorm:"foreignKey:InvoiceID"`
	Taxes []TaxChargeRow `gorm:"foreignKey:InvoiceID"`

	Metadata  datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Invoice) TableName() string { return "invoices" }

// Sign returns the direction multiplier applied once to monetary outputs.
func (inv *Invoice) Sign() decimal.Decimal {
	if inv.IsReturn {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

// Item returns the line with the given ID, or nil.
func (inv *Invoice) Item(id snowflake.ID) *LineItem {
	for i := range inv.Items {
		if inv.Items[i].ID == id {
			return &inv.Items[i]
		}
	}
	return nil
}

// LineItem is one invoice line. The tax fields below Qty/Rate are computed
// outputs, overwritten on every recalculation.
type LineItem struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	InvoiceID snowflake.ID `gorm:"not null;index"`

	ItemCode string          `gorm:"type:text;not null"`
	Qty      decimal.Decimal `gorm:"type:numeric(18,6);not null"`
	Rate     decimal.Decimal `gorm:"type:numeric(18,6);not null"`

	// TemplateID is the explicit item tax template, first stop of the
	// resolution chain.
	TemplateID *string `gorm:"type:text"`

	// TaxClassification overrides the item master's FBR classification.
	TaxClassification *string `gorm:"type:text"`

	STRate          decimal.Decimal `gorm:"type:numeric(18,6)"`
	STAmount        decimal.Decimal `gorm:"type:numeric(18,6)"`
	FTRate          decimal.Decimal `gorm:"type:numeric(18,6)"`
	FTAmount        decimal.Decimal `gorm:"type:numeric(18,6)"`
	AdvanceAmount   decimal.Decimal `gorm:"type:numeric(18,6)"`
	ExSalesTaxValue decimal.Decimal `gorm:"type:numeric(18,6)"`
	TotalInclTax    decimal.Decimal `gorm:"type:numeric(18,6)"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (LineItem) TableName() string { return "invoice_items" }

// BaseAmount is |qty| * rate, before sign.
func (li *LineItem) BaseAmount() decimal.Decimal {
	return li.Qty.Abs().Mul(li.Rate)
}

// TaxChargeRow is one aggregated, account-tagged tax line on the invoice
// header.
type TaxChargeRow struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	InvoiceID snowflake.ID `gorm:"not null;index"`

	ChargeType  string                `gorm:"type:text;not null;default:'Actual'"`
	AccountHead string                `gorm:"type:text;not null"`
	Description string                `gorm:"type:text"`
	Amount      decimal.Decimal       `gorm:"type:numeric(18,6);not null"`
	Category    refdomain.TaxCategory `gorm:"type:text;not null"`
	Rate        decimal.Decimal       `gorm:"type:numeric(9,4)"`
	CostCenter  string                `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (TaxChargeRow) TableName() string { return "invoice_tax_charges" }
