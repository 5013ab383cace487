package taxengine

import (
	"context"

	invoicedomain "github.com/spotledger/taxcore/internal/invoice/domain"
	refdomain "github.com/spotledger/taxcore/internal/refdata/domain"
	"go.uber.org/zap"
)

// AccountSet holds the ledger account heads for the three tax categories.
// Empty entries suppress the corresponding charge row without touching the
// invoice tax total.
type AccountSet struct {
	SalesTax   string
	FurtherTax string
	Advance    string
}

// AccountResolver maps tax categories to ledger account heads, either from
// the company's configured defaults or from a resolved template's rows.
type AccountResolver struct {
	fetch refdomain.Fetcher
	log   *zap.Logger
}

func NewAccountResolver(fetch refdomain.Fetcher, log *zap.Logger) *AccountResolver {
	return &AccountResolver{fetch: fetch, log: log.Named("taxengine.accounts")}
}

// FromCompany reads the company's default tax accounts. The further-tax
// account falls back to the sales-tax account when unset. A missing
// company degrades to an empty set.
func (r *AccountResolver) FromCompany(ctx context.Context, companyID string) AccountSet {
	company, err := r.fetch.Company(ctx, companyID)
	if err != nil {
		r.log.Warn("company fetch failed", zap.String("company_id", companyID), zap.Error(err))
		return AccountSet{}
	}
	if company == nil {
		return AccountSet{}
	}

	further := company.FurtherTaxAccount
	if further == "" {
		further = company.SalesTaxAccount
	}
	return AccountSet{
		SalesTax:   company.SalesTaxAccount,
		FurtherTax: further,
		Advance:    company.AdvanceTaxAccount,
	}
}

// FromTemplate scans a template's rows mapping each tax category to its
// account head, last non-empty match winning.
func FromTemplate(tpl *refdomain.TaxTemplate) AccountSet {
	var set AccountSet
	if tpl == nil {
		return set
	}
	for _, row := range tpl.Taxes {
		if row.AccountHead == "" {
			continue
		}
		switch row.Category {
		case refdomain.CategorySalesTax:
			set.SalesTax = row.AccountHead
		case refdomain.CategoryFurtherTax:
			set.FurtherTax = row.AccountHead
		case refdomain.CategoryAdvance:
			set.Advance = row.AccountHead
		}
	}
	return set
}

// ForLine resolves accounts through the line's template chain: the session
// cache first, then the full hierarchical resolution.
func (r *AccountResolver) ForLine(ctx context.Context, sess *Session, resolver *TemplateResolver, line *invoicedomain.LineItem) AccountSet {
	if tpl, ok := sess.Template(line.ItemCode); ok {
		return FromTemplate(tpl)
	}
	return FromTemplate(resolver.Resolve(ctx, sess, line))
}
