// Package domain contains the read-only reference records the tax engine
// resolves against: items, tax templates, companies and FBR transaction
// types. These records are owned by the host ERP; the engine only reads them.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// TaxCategory classifies a template tax row.
type TaxCategory string

const (
	CategorySalesTax   TaxCategory = "Sales Tax"
	CategoryFurtherTax TaxCategory = "Further Sales Tax"
	CategoryAdvance    TaxCategory = "236G"
	CategoryFreight    TaxCategory = "Freight"
)

// ClassificationThirdSchedule marks items taxed on their notified or retail
// price instead of the transaction rate.
const ClassificationThirdSchedule = "3rd Schedule Goods"

// TemplateKind distinguishes item-level templates from the document-level
// taxes-and-charges templates.
type TemplateKind string

const (
	TemplateKindItem     TemplateKind = "ITEM"
	TemplateKindSales    TemplateKind = "SALES"
	TemplateKindPurchase TemplateKind = "PURCHASE"
)

// Item is the item master record.
type Item struct {
	Code string `gorm:"primaryKey;type:text"`
	Name string `gorm:"type:text"`

	// TaxClassification links the item to an FBR transaction type.
	TaxClassification *string `gorm:"type:text"`

	// FixedNotifiedValue and RetailPrice feed the 3rd Schedule taxable base.
	FixedNotifiedValue decimal.Decimal `gorm:"type:numeric(18,6)"`
	RetailPrice        decimal.Decimal `gorm:"type:numeric(18,6)"`

	Taxes []ItemTaxRule `gorm:"foreignKey:ItemCode;references:Code"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Item) TableName() string { return "items" }

// ItemTaxRule is a row of the item master's taxes table, pointing a tax
// category at a template.
type ItemTaxRule struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	ItemCode   string       `gorm:"type:text;not null;index"`
	Category   TaxCategory  `gorm:"type:text;not null"`
	TemplateID *string      `gorm:"type:text"`
	Idx        int          `gorm:"not null;default:0"`
}

func (ItemTaxRule) TableName() string { return "item_tax_rules" }

// TaxTemplate is an ordered list of tax rate rows. Item tax templates and
// sales/purchase taxes-and-charges templates share this shape.
type TaxTemplate struct {
	ID    string       `gorm:"primaryKey;type:text"`
	Kind  TemplateKind `gorm:"type:text;not null"`
	Title string       `gorm:"type:text"`

	Taxes []TemplateTaxRow `gorm:"foreignKey:TemplateID"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (TaxTemplate) TableName() string { return "tax_templates" }

// TemplateTaxRow is one rate line of a template. Rate is a percentage.
type TemplateTaxRow struct {
	ID          snowflake.ID    `gorm:"primaryKey"`
	TemplateID  string          `gorm:"type:text;not null;index"`
	Category    TaxCategory     `gorm:"type:text;not null"`
	Rate        decimal.Decimal `gorm:"type:numeric(9,4)"`
	AccountHead string          `gorm:"type:text"`
	Idx         int             `gorm:"not null;default:0"`
}

func (TemplateTaxRow) TableName() string { return "tax_template_rows" }

// TransactionType is the FBR transaction type a tax classification resolves
// to. Its template reference closes the hierarchical fallback chain.
type TransactionType struct {
	Name       string  `gorm:"primaryKey;type:text"`
	TemplateID *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (TransactionType) TableName() string { return "transaction_types" }

// Company carries the default ledger accounts used by the company-level
// account resolution variant.
type Company struct {
	ID   string `gorm:"primaryKey;type:text"`
	Name string `gorm:"type:text;not null"`

	SalesTaxAccount          string `gorm:"type:text"`
	FurtherTaxAccount        string `gorm:"type:text"`
	AdvanceTaxAccount        string `gorm:"type:text"`
	FreightExpenseAccount    string `gorm:"type:text"`
	FreightOnPurchaseAccount string `gorm:"type:text"`
	CostCenter               string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Company) TableName() string { return "companies" }
