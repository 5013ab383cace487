package taxengine

import (
	"context"

	"github.com/shopspring/decimal"
	invoicedomain "github.com/spotledger/taxcore/internal/invoice/domain"
	refdomain "github.com/spotledger/taxcore/internal/refdata/domain"
	"github.com/spotledger/taxcore/pkg/money"
	"go.uber.org/zap"
)

// Mode selects the calculation path for one line.
type Mode string

const (
	// ModeNormal derives everything from the resolved template.
	ModeNormal Mode = "normal"
	// ModeOverrideAmount treats the line's sales-tax amount as
	// authoritative and reverse-derives the rate.
	ModeOverrideAmount Mode = "override_amount"
	// ModeOverrideRate treats the line's sales-tax rate as authoritative
	// and derives the amount.
	ModeOverrideRate Mode = "override_rate"
	// ModeOverrideFTRate treats the line's further-tax rate as
	// authoritative; the sales-tax amount is kept as is.
	ModeOverrideFTRate Mode = "override_ft_rate"
)

// LineResult is the computed output for one line. Skipped means the
// document suppresses computation entirely (Import) and the line's fields
// must be left untouched.
type LineResult struct {
	Skipped bool

	STRate          decimal.Decimal
	STAmount        decimal.Decimal
	FTRate          decimal.Decimal
	FTAmount        decimal.Decimal
	AdvanceAmount   decimal.Decimal
	ExSalesTaxValue decimal.Decimal
	TotalInclTax    decimal.Decimal
}

// ApplyTo writes the computed fields onto the line. No-op when Skipped.
func (res LineResult) ApplyTo(line *invoicedomain.LineItem) {
	if res.Skipped {
		return
	}
	line.STRate = res.STRate
	line.STAmount = res.STAmount
	line.FTRate = res.FTRate
	line.FTAmount = res.FTAmount
	line.AdvanceAmount = res.AdvanceAmount
	line.ExSalesTaxValue = res.ExSalesTaxValue
	line.TotalInclTax = res.TotalInclTax
}

// Calculator computes per-line taxes. Quantity is taken absolute; the
// invoice sign is applied once to the monetary outputs. Advance tax is
// never computed at line level; it enters only through the summary.
type Calculator struct {
	fetch     refdomain.Fetcher
	resolver  *TemplateResolver
	precision int32
	log       *zap.Logger
}

func NewCalculator(fetch refdomain.Fetcher, resolver *TemplateResolver, precision int32, log *zap.Logger) *Calculator {
	if precision <= 0 {
		precision = money.DefaultPrecision
	}
	return &Calculator{
		fetch:     fetch,
		resolver:  resolver,
		precision: precision,
		log:       log.Named("taxengine.calculator"),
	}
}

// Compute runs the calculation mode for one line against the invoice
// header. It never fails: missing references degrade to zero tax.
func (c *Calculator) Compute(ctx context.Context, sess *Session, inv *invoicedomain.Invoice, line *invoicedomain.LineItem, mode Mode) LineResult {
	if inv.InvoiceType == invoicedomain.InvoiceTypeImport {
		return LineResult{Skipped: true}
	}

	sign := inv.Sign()
	base := line.BaseAmount()
	signedBase := sign.Mul(base)

	if inv.DocType == invoicedomain.DocTypePurchase && inv.PartySTStatus == invoicedomain.StatusUnregistered {
		return c.zeroed(signedBase)
	}
	if !inv.SalesTaxInvoice {
		return c.zeroed(signedBase)
	}

	if line.TaxClassification != nil && *line.TaxClassification == refdomain.ClassificationThirdSchedule {
		return c.computeThirdSchedule(ctx, sess, inv, line, sign, signedBase)
	}

	switch mode {
	case ModeOverrideAmount:
		return c.computeOverrideAmount(ctx, sess, inv, line, sign, base, signedBase)
	case ModeOverrideRate:
		return c.computeOverrideRate(ctx, sess, inv, line, sign, base, signedBase)
	case ModeOverrideFTRate:
		return c.computeOverrideFTRate(inv, line, sign, base, signedBase)
	default:
		return c.computeNormal(ctx, sess, inv, line, sign, base, signedBase)
	}
}

func (c *Calculator) computeNormal(ctx context.Context, sess *Session, inv *invoicedomain.Invoice, line *invoicedomain.LineItem, sign, base, signedBase decimal.Decimal) LineResult {
	tpl := c.resolver.Resolve(ctx, sess, line)
	if tpl == nil {
		c.log.Debug("no tax template resolved", zap.String("item_code", line.ItemCode))
		return c.zeroed(signedBase)
	}

	rates := ExtractRates(tpl, refdomain.CategorySalesTax, refdomain.CategoryFurtherTax)

	stRate := rates[refdomain.CategorySalesTax].Rate
	st := c.round(sign.Mul(money.Percent(base, stRate)))

	ftRate, ft := c.furtherTax(inv, rates[refdomain.CategoryFurtherTax].Rate, sign, base)

	return LineResult{
		STRate:       c.round(stRate),
		STAmount:     st,
		FTRate:       c.round(ftRate),
		FTAmount:     ft,
		TotalInclTax: c.round(signedBase.Add(st).Add(ft)),
	}
}

func (c *Calculator) computeOverrideAmount(ctx context.Context, sess *Session, inv *invoicedomain.Invoice, line *invoicedomain.LineItem, sign, base, signedBase decimal.Decimal) LineResult {
	st := c.round(line.STAmount)
	stRate := c.round(money.RateOf(st, signedBase))

	ftRate, ft := c.templateFurtherTax(ctx, sess, inv, line, sign, base)

	return LineResult{
		STRate:       stRate,
		STAmount:     st,
		FTRate:       c.round(ftRate),
		FTAmount:     ft,
		TotalInclTax: c.round(signedBase.Add(st).Add(ft)),
	}
}

func (c *Calculator) computeOverrideRate(ctx context.Context, sess *Session, inv *invoicedomain.Invoice, line *invoicedomain.LineItem, sign, base, signedBase decimal.Decimal) LineResult {
	stRate := c.round(line.STRate)
	st := c.round(sign.Mul(money.Percent(base, stRate)))

	ftRate, ft := c.templateFurtherTax(ctx, sess, inv, line, sign, base)

	return LineResult{
		STRate:       stRate,
		STAmount:     st,
		FTRate:       c.round(ftRate),
		FTAmount:     ft,
		TotalInclTax: c.round(signedBase.Add(st).Add(ft)),
	}
}

func (c *Calculator) computeOverrideFTRate(inv *invoicedomain.Invoice, line *invoicedomain.LineItem, sign, base, signedBase decimal.Decimal) LineResult {
	ftRate := c.round(line.FTRate)
	ft := c.round(sign.Mul(money.Percent(base, ftRate)))
	st := c.round(line.STAmount)

	return LineResult{
		STRate:       line.STRate,
		STAmount:     st,
		FTRate:       ftRate,
		FTAmount:     ft,
		TotalInclTax: c.round(signedBase.Add(st).Add(ft)),
	}
}

// computeThirdSchedule taxes the line on the higher of the item's fixed
// notified value and retail price. The non-tax portion of the total still
// uses the ordinary transaction base.
func (c *Calculator) computeThirdSchedule(ctx context.Context, sess *Session, inv *invoicedomain.Invoice, line *invoicedomain.LineItem, sign, signedBase decimal.Decimal) LineResult {
	item, err := c.fetch.Item(ctx, line.ItemCode)
	if err != nil {
		c.log.Warn("item fetch failed for 3rd schedule line",
			zap.String("item_code", line.ItemCode),
			zap.Error(err),
		)
	}
	if item == nil {
		return c.zeroed(signedBase)
	}

	taxBase := decimal.Max(item.FixedNotifiedValue, item.RetailPrice)
	if taxBase.Sign() <= 0 {
		c.log.Warn("3rd schedule item has no notified or retail value",
			zap.String("item_code", line.ItemCode),
		)
		return c.zeroed(signedBase)
	}

	tpl := c.resolver.Resolve(ctx, sess, line)
	if tpl == nil {
		return c.zeroed(signedBase)
	}

	taxable := line.Qty.Abs().Mul(taxBase)
	rates := ExtractRates(tpl, refdomain.CategorySalesTax, refdomain.CategoryFurtherTax)

	stRate := rates[refdomain.CategorySalesTax].Rate
	st := c.round(sign.Mul(money.Percent(taxable, stRate)))

	ftRate, ft := c.furtherTax(inv, rates[refdomain.CategoryFurtherTax].Rate, sign, taxable)

	return LineResult{
		STRate:          c.round(stRate),
		STAmount:        st,
		FTRate:          c.round(ftRate),
		FTAmount:        ft,
		ExSalesTaxValue: c.round(sign.Mul(taxable)),
		TotalInclTax:    c.round(signedBase.Add(st).Add(ft)),
	}
}

// furtherTax applies the further-tax gate: sales invoice to an
// unregistered customer. Purchase documents never attract further tax.
func (c *Calculator) furtherTax(inv *invoicedomain.Invoice, rate, sign, base decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if inv.DocType != invoicedomain.DocTypeSales || inv.PartySTStatus != invoicedomain.StatusUnregistered {
		return decimal.Zero, decimal.Zero
	}
	if rate.Sign() == 0 {
		return decimal.Zero, decimal.Zero
	}
	return rate, c.round(sign.Mul(money.Percent(base, rate)))
}

// templateFurtherTax re-resolves the template to recompute further tax
// during a sales-tax override: the override touches only the sales-tax
// pair, further tax stays template-driven.
func (c *Calculator) templateFurtherTax(ctx context.Context, sess *Session, inv *invoicedomain.Invoice, line *invoicedomain.LineItem, sign, base decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	tpl := c.resolver.Resolve(ctx, sess, line)
	if tpl == nil {
		return decimal.Zero, decimal.Zero
	}
	rates := ExtractRates(tpl, refdomain.CategoryFurtherTax)
	return c.furtherTax(inv, rates[refdomain.CategoryFurtherTax].Rate, sign, base)
}

func (c *Calculator) zeroed(signedBase decimal.Decimal) LineResult {
	return LineResult{
		STRate:          decimal.Zero,
		STAmount:        decimal.Zero,
		FTRate:          decimal.Zero,
		FTAmount:        decimal.Zero,
		AdvanceAmount:   decimal.Zero,
		ExSalesTaxValue: decimal.Zero,
		TotalInclTax:    c.round(signedBase),
	}
}

func (c *Calculator) round(v decimal.Decimal) decimal.Decimal {
	return money.Round(v, c.precision)
}
