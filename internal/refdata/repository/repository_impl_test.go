package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	refdomain "github.com/spotledger/taxcore/internal/refdata/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupRepo(t *testing.T) (refdomain.Repository, *gorm.DB) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&refdomain.Item{},
		&refdomain.ItemTaxRule{},
		&refdomain.TaxTemplate{},
		&refdomain.TemplateTaxRow{},
		&refdomain.TransactionType{},
		&refdomain.Company{},
	))

	repo := NewRepository(Params{DB: conn, Log: zap.NewNop(), TTL: time.Minute})
	return repo, conn
}

func TestFetchNotFoundReturnsNilNil(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	item, err := repo.Item(ctx, "MISSING")
	assert.NoError(t, err)
	assert.Nil(t, item)

	tpl, err := repo.Template(ctx, "MISSING")
	assert.NoError(t, err)
	assert.Nil(t, tpl)

	company, err := repo.Company(ctx, "MISSING")
	assert.NoError(t, err)
	assert.Nil(t, company)

	tt, err := repo.TransactionType(ctx, "MISSING")
	assert.NoError(t, err)
	assert.Nil(t, tt)
}

func TestFetchEmptyKeyRejected(t *testing.T) {
	repo, _ := setupRepo(t)

	_, err := repo.Item(context.Background(), "  ")
	assert.ErrorIs(t, err, refdomain.ErrInvalidKey)
}

func TestTemplateRoundTripOrdersRows(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertTemplate(ctx, &refdomain.TaxTemplate{
		ID:   "TPL-1",
		Kind: refdomain.TemplateKindItem,
		Taxes: []refdomain.TemplateTaxRow{
			{TemplateID: "TPL-1", Category: refdomain.CategoryFurtherTax, Rate: decimal.NewFromInt(4), Idx: 1},
			{TemplateID: "TPL-1", Category: refdomain.CategorySalesTax, Rate: decimal.NewFromInt(18), Idx: 0},
		},
	}))

	tpl, err := repo.Template(ctx, "TPL-1")
	require.NoError(t, err)
	require.NotNil(t, tpl)
	require.Len(t, tpl.Taxes, 2)
	assert.Equal(t, refdomain.CategorySalesTax, tpl.Taxes[0].Category)
	assert.Equal(t, refdomain.CategoryFurtherTax, tpl.Taxes[1].Category)
}

func TestUpsertTemplateRejectsUnknownKind(t *testing.T) {
	repo, _ := setupRepo(t)

	err := repo.UpsertTemplate(context.Background(), &refdomain.TaxTemplate{ID: "TPL-X", Kind: "MONTHLY"})
	assert.ErrorIs(t, err, refdomain.ErrInvalidKind)
}

func TestCacheServesSecondRead(t *testing.T) {
	repo, conn := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertCompany(ctx, &refdomain.Company{ID: "CO-1", Name: "Test Co"}))

	first, err := repo.Company(ctx, "CO-1")
	require.NoError(t, err)
	require.NotNil(t, first)

	// Mutate the row behind the repository's back; the cached copy must
	// still be served until an upsert invalidates it.
	require.NoError(t, conn.Model(&refdomain.Company{}).Where("id = ?", "CO-1").Update("name", "Renamed Co").Error)

	cached, err := repo.Company(ctx, "CO-1")
	require.NoError(t, err)
	assert.Equal(t, "Test Co", cached.Name)

	require.NoError(t, repo.UpsertCompany(ctx, &refdomain.Company{ID: "CO-1", Name: "Fresh Co"}))
	fresh, err := repo.Company(ctx, "CO-1")
	require.NoError(t, err)
	assert.Equal(t, "Fresh Co", fresh.Name)
}

func TestUpsertItemReplacesTaxRules(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	tpl := "TPL-1"
	require.NoError(t, repo.UpsertItem(ctx, &refdomain.Item{
		Code: "WIDGET",
		Name: "Widget",
		Taxes: []refdomain.ItemTaxRule{
			{ItemCode: "WIDGET", Category: refdomain.CategorySalesTax, TemplateID: &tpl, Idx: 0},
		},
	}))

	require.NoError(t, repo.UpsertItem(ctx, &refdomain.Item{
		Code:        "WIDGET",
		Name:        "Widget v2",
		RetailPrice: decimal.NewFromInt(150),
	}))

	item, err := repo.Item(ctx, "WIDGET")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "Widget v2", item.Name)
	assert.Empty(t, item.Taxes)
	assert.True(t, item.RetailPrice.Equal(decimal.NewFromInt(150)))
}
