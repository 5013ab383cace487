package taxengine

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/spotledger/taxcore/internal/config"
	invoicedomain "github.com/spotledger/taxcore/internal/invoice/domain"
	refdomain "github.com/spotledger/taxcore/internal/refdata/domain"
	"github.com/spotledger/taxcore/pkg/money"
	"go.uber.org/zap"
)

// Aggregator rebuilds the invoice's tax charge rows from the lines' computed
// tax fields. It fully regenerates the collection on every pass, except
// manually entered 236G rows on purchase invoices, which survive the rebuild
// whenever no template-derived advance tax replaces them.
type Aggregator struct {
	fetch         refdomain.Fetcher
	resolver      *TemplateResolver
	accounts      *AccountResolver
	node          *snowflake.Node
	accountSource string
	precision     int32
	log           *zap.Logger
}

func NewAggregator(fetch refdomain.Fetcher, resolver *TemplateResolver, accounts *AccountResolver, node *snowflake.Node, accountSource string, precision int32, log *zap.Logger) *Aggregator {
	if precision <= 0 {
		precision = money.DefaultPrecision
	}
	return &Aggregator{
		fetch:         fetch,
		resolver:      resolver,
		accounts:      accounts,
		node:          node,
		accountSource: accountSource,
		precision:     precision,
		log:           log.Named("taxengine.summary"),
	}
}

// advanceTax is the resolved invoice-level 236G rate and account.
type advanceTax struct {
	Rate        decimal.Decimal
	AccountHead string
}

// Rebuild recomputes the invoice's tax charge rows and the tax grand total.
// Lines must already carry current computed fields; the aggregator only
// reads them. Idempotent for unchanged line data and templates.
func (a *Aggregator) Rebuild(ctx context.Context, sess *Session, inv *invoicedomain.Invoice) {
	var totalST, totalFT, totalInclusive decimal.Decimal
	for i := range inv.Items {
		totalST = totalST.Add(inv.Items[i].STAmount)
		totalFT = totalFT.Add(inv.Items[i].FTAmount)
		totalInclusive = totalInclusive.Add(inv.Items[i].TotalInclTax)
	}

	taxed := lo.Filter(inv.Items, func(li invoicedomain.LineItem, _ int) bool {
		return !li.STAmount.IsZero() || !li.FTAmount.IsZero()
	})

	set := a.resolveAccounts(ctx, sess, inv, taxed)
	adv := a.resolveAdvance(ctx, sess, inv, taxed)

	advAmount := decimal.Zero
	if !adv.Rate.IsZero() {
		advAmount = a.round(money.Percent(totalInclusive, adv.Rate))
	}

	// Manual 236G rows on a purchase invoice survive the rebuild only when
	// no template-derived advance tax is about to replace them.
	var preserved []invoicedomain.TaxChargeRow
	if inv.DocType == invoicedomain.DocTypePurchase && adv.Rate.IsZero() {
		preserved = lo.Filter(inv.Taxes, func(row invoicedomain.TaxChargeRow, _ int) bool {
			return row.Category == refdomain.CategoryAdvance
		})
	}

	inv.Taxes = inv.Taxes[:0]

	totalST = a.round(totalST)
	totalFT = a.round(totalFT)

	if totalST.IsPositive() {
		a.appendRow(inv, set.SalesTax, refdomain.CategorySalesTax, totalST, decimal.Zero)
	}
	if totalFT.IsPositive() {
		a.appendRow(inv, set.FurtherTax, refdomain.CategoryFurtherTax, totalFT, decimal.Zero)
	}

	appliedAdvance := decimal.Zero
	if !advAmount.IsZero() {
		head := adv.AccountHead
		if head == "" {
			head = set.Advance
		}
		a.appendRow(inv, head, refdomain.CategoryAdvance, advAmount, adv.Rate)
		appliedAdvance = advAmount
	} else {
		for _, row := range preserved {
			inv.Taxes = append(inv.Taxes, row)
			appliedAdvance = appliedAdvance.Add(row.Amount)
		}
	}

	a.appendFreight(ctx, inv)

	inv.TotalTaxes = a.round(totalST.Add(totalFT).Add(appliedAdvance))
	inv.UpdatedAt = time.Now()
}

// resolveAccounts picks the account set per the configured variant. The
// template variant walks the first taxed line's resolution chain; with no
// taxed line it falls back to the company defaults.
func (a *Aggregator) resolveAccounts(ctx context.Context, sess *Session, inv *invoicedomain.Invoice, taxed []invoicedomain.LineItem) AccountSet {
	if a.accountSource == config.AccountSourceTemplate && len(taxed) > 0 {
		set := a.accounts.ForLine(ctx, sess, a.resolver, &taxed[0])
		if set.FurtherTax == "" {
			set.FurtherTax = set.SalesTax
		}
		if set != (AccountSet{}) {
			return set
		}
		a.log.Warn("template account resolution came up empty, using company defaults",
			zap.String("item_code", taxed[0].ItemCode),
		)
	}
	return a.accounts.FromCompany(ctx, inv.CompanyID)
}

// resolveAdvance finds the invoice-level 236G rate and account. Sales
// invoices read the document's taxes-and-charges template; purchase invoices
// walk the first taxed item's template hierarchy.
func (a *Aggregator) resolveAdvance(ctx context.Context, sess *Session, inv *invoicedomain.Invoice, taxed []invoicedomain.LineItem) advanceTax {
	var tpl *refdomain.TaxTemplate

	switch inv.DocType {
	case invoicedomain.DocTypeSales:
		if inv.ChargesTemplateID == nil || *inv.ChargesTemplateID == "" {
			return advanceTax{}
		}
		fetched, err := a.fetch.Template(ctx, *inv.ChargesTemplateID)
		if err != nil {
			a.log.Warn("charges template fetch failed",
				zap.String("template_id", *inv.ChargesTemplateID),
				zap.Error(err),
			)
			return advanceTax{}
		}
		tpl = fetched
	case invoicedomain.DocTypePurchase:
		if len(taxed) == 0 {
			return advanceTax{}
		}
		tpl = a.resolver.Resolve(ctx, sess, &taxed[0])
	}

	if tpl == nil {
		return advanceTax{}
	}
	info := ExtractRates(tpl, refdomain.CategoryAdvance)[refdomain.CategoryAdvance]
	return advanceTax{Rate: info.Rate, AccountHead: info.AccountHead}
}

// appendFreight adds the freight charge row. Freight is a pass-through
// charge, never preserved and never counted into the tax grand total.
func (a *Aggregator) appendFreight(ctx context.Context, inv *invoicedomain.Invoice) {
	if inv.FreightAmount.Sign() <= 0 {
		return
	}
	if inv.DocType == invoicedomain.DocTypeSales {
		if inv.FreightRule == nil || *inv.FreightRule != invoicedomain.FreightRulePaidByCustomer {
			return
		}
	}

	company, err := a.fetch.Company(ctx, inv.CompanyID)
	if err != nil || company == nil {
		a.log.Warn("freight charge skipped, company unavailable",
			zap.String("company_id", inv.CompanyID),
			zap.Error(err),
		)
		return
	}

	account := company.FreightExpenseAccount
	if inv.DocType == invoicedomain.DocTypePurchase {
		account = company.FreightOnPurchaseAccount
	}
	if account == "" {
		a.log.Warn("freight charge row suppressed, no freight account configured",
			zap.String("company_id", inv.CompanyID),
		)
		return
	}

	inv.Taxes = append(inv.Taxes, invoicedomain.TaxChargeRow{
		ID:          a.node.Generate(),
		InvoiceID:   inv.ID,
		ChargeType:  invoicedomain.ChargeTypeActual,
		AccountHead: account,
		Description: string(refdomain.CategoryFreight),
		Amount:      a.round(inv.FreightAmount.Mul(inv.Sign())),
		Category:    refdomain.CategoryFreight,
		CostCenter:  company.CostCenter,
	})
}

// appendRow adds one aggregated charge row. A missing account suppresses the
// itemized row but never the amount's contribution to the grand total.
func (a *Aggregator) appendRow(inv *invoicedomain.Invoice, account string, category refdomain.TaxCategory, amount, rate decimal.Decimal) {
	if account == "" {
		a.log.Warn("charge row suppressed, no ledger account resolved",
			zap.String("category", string(category)),
			zap.String("amount", amount.String()),
		)
		return
	}
	inv.Taxes = append(inv.Taxes, invoicedomain.TaxChargeRow{
		ID:          a.node.Generate(),
		InvoiceID:   inv.ID,
		ChargeType:  invoicedomain.ChargeTypeActual,
		AccountHead: account,
		Description: string(category),
		Amount:      amount,
		Category:    category,
		Rate:        rate,
	})
}

func (a *Aggregator) round(v decimal.Decimal) decimal.Decimal {
	return money.Round(v, a.precision)
}
