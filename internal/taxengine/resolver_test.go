package taxengine

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	invoicedomain "github.com/spotledger/taxcore/internal/invoice/domain"
	refdomain "github.com/spotledger/taxcore/internal/refdata/domain"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func salesTaxTemplate(id string, rate int64) *refdomain.TaxTemplate {
	return &refdomain.TaxTemplate{
		ID:   id,
		Kind: refdomain.TemplateKindItem,
		Taxes: []refdomain.TemplateTaxRow{
			{Category: refdomain.CategorySalesTax, Rate: decimal.NewFromInt(rate), AccountHead: "ST - Test"},
		},
	}
}

func TestResolvePrefersLineTemplate(t *testing.T) {
	fetch := newStubFetcher()
	fetch.templates["TPL-LINE"] = salesTaxTemplate("TPL-LINE", 17)
	fetch.templates["TPL-ITEM"] = salesTaxTemplate("TPL-ITEM", 18)
	fetch.items["WIDGET"] = &refdomain.Item{
		Code: "WIDGET",
		Taxes: []refdomain.ItemTaxRule{
			{Category: refdomain.CategorySalesTax, TemplateID: strptr("TPL-ITEM")},
		},
	}

	r := NewTemplateResolver(fetch, zap.NewNop())
	sess := NewSession()

	line := &invoicedomain.LineItem{ItemCode: "WIDGET", TemplateID: strptr("TPL-LINE")}
	tpl := r.Resolve(context.Background(), sess, line)

	assert.NotNil(t, tpl)
	assert.Equal(t, "TPL-LINE", tpl.ID)

	cached, ok := sess.Template("WIDGET")
	assert.True(t, ok)
	assert.Equal(t, "TPL-LINE", cached.ID)
}

func TestResolveFallsBackToItemTaxesTable(t *testing.T) {
	fetch := newStubFetcher()
	fetch.templates["TPL-ITEM"] = salesTaxTemplate("TPL-ITEM", 18)
	fetch.items["WIDGET"] = &refdomain.Item{
		Code: "WIDGET",
		Taxes: []refdomain.ItemTaxRule{
			{Category: refdomain.CategoryFurtherTax, TemplateID: strptr("TPL-FT")},
			{Category: refdomain.CategorySalesTax, TemplateID: strptr("TPL-ITEM")},
			{Category: refdomain.CategorySalesTax, TemplateID: strptr("TPL-OTHER")},
		},
	}

	r := NewTemplateResolver(fetch, zap.NewNop())
	tpl := r.Resolve(context.Background(), NewSession(), &invoicedomain.LineItem{ItemCode: "WIDGET"})

	assert.NotNil(t, tpl)
	assert.Equal(t, "TPL-ITEM", tpl.ID)
}

func TestResolveFallsBackToTransactionType(t *testing.T) {
	fetch := newStubFetcher()
	fetch.templates["TPL-TT"] = salesTaxTemplate("TPL-TT", 18)
	fetch.items["WIDGET"] = &refdomain.Item{
		Code:              "WIDGET",
		TaxClassification: strptr("Retail Supplies"),
	}
	fetch.txtypes["Retail Supplies"] = &refdomain.TransactionType{
		Name:       "Retail Supplies",
		TemplateID: strptr("TPL-TT"),
	}

	r := NewTemplateResolver(fetch, zap.NewNop())

	// Item-master classification applies when the line carries none.
	tpl := r.Resolve(context.Background(), NewSession(), &invoicedomain.LineItem{ItemCode: "WIDGET"})
	assert.NotNil(t, tpl)
	assert.Equal(t, "TPL-TT", tpl.ID)

	// The line's own classification wins over the item master's.
	fetch.txtypes["Line Class"] = &refdomain.TransactionType{
		Name:       "Line Class",
		TemplateID: strptr("TPL-TT"),
	}
	tpl = r.Resolve(context.Background(), NewSession(), &invoicedomain.LineItem{
		ItemCode:          "WIDGET",
		TaxClassification: strptr("Line Class"),
	})
	assert.NotNil(t, tpl)
}

func TestResolveNothingMatches(t *testing.T) {
	fetch := newStubFetcher()
	r := NewTemplateResolver(fetch, zap.NewNop())

	tpl := r.Resolve(context.Background(), NewSession(), &invoicedomain.LineItem{ItemCode: "UNKNOWN"})
	assert.Nil(t, tpl)
}

func TestResolveFetchFailureDegradesToNone(t *testing.T) {
	fetch := newStubFetcher()
	fetch.failWith = errors.New("connection refused")

	r := NewTemplateResolver(fetch, zap.NewNop())
	tpl := r.Resolve(context.Background(), NewSession(), &invoicedomain.LineItem{
		ItemCode:   "WIDGET",
		TemplateID: strptr("TPL-LINE"),
	})
	assert.Nil(t, tpl)
}
