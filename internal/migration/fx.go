// Package migration creates the schema on startup so the service is usable
// out of the box for local and self-hosted environments.
package migration

import (
	invoicedomain "github.com/spotledger/taxcore/internal/invoice/domain"
	refdomain "github.com/spotledger/taxcore/internal/refdata/domain"
	whtdomain "github.com/spotledger/taxcore/internal/withholding/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(AutoMigrate),
)

func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&refdomain.Item{},
		&refdomain.ItemTaxRule{},
		&refdomain.TaxTemplate{},
		&refdomain.TemplateTaxRow{},
		&refdomain.TransactionType{},
		&refdomain.Company{},
		&invoicedomain.Invoice{},
		&invoicedomain.LineItem{},
		&invoicedomain.TaxChargeRow{},
		&whtdomain.WHTSection{},
		&whtdomain.Supplier{},
		&whtdomain.PaymentEntry{},
		&whtdomain.PaymentReference{},
		&whtdomain.WHTChargeRow{},
	)
}
