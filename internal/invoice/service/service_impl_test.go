package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/spotledger/taxcore/internal/config"
	"github.com/spotledger/taxcore/internal/invoice/domain"
	"github.com/spotledger/taxcore/internal/migration"
	refdomain "github.com/spotledger/taxcore/internal/refdata/domain"
	refrepository "github.com/spotledger/taxcore/internal/refdata/repository"
	"github.com/spotledger/taxcore/internal/taxengine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (domain.Service, refdomain.Repository) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(conn))

	log := zap.NewNop()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	refRepo := refrepository.NewRepository(refrepository.Params{
		DB:  conn,
		Log: log,
		TTL: time.Minute,
	})

	engine := taxengine.New(taxengine.EngineParams{
		Fetcher: refRepo,
		Node:    node,
		Config: config.Config{
			CurrencyPrecision: 2,
			AccountSource:     config.AccountSourceCompany,
		},
		Logger: log,
	})

	svc := New(Params{
		DB:     conn,
		Log:    log,
		GenID:  node,
		Engine: engine,
	})

	return svc, refRepo
}

func seedRefData(t *testing.T, repo refdomain.Repository) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, repo.UpsertCompany(ctx, &refdomain.Company{
		ID:                "CO-1",
		Name:              "Test Co",
		SalesTaxAccount:   "ST Payable - CO",
		FurtherTaxAccount: "FT Payable - CO",
		AdvanceTaxAccount: "236G - CO",
	}))

	tplID := "FBR 18 Percent"
	require.NoError(t, repo.UpsertTemplate(ctx, &refdomain.TaxTemplate{
		ID:   tplID,
		Kind: refdomain.TemplateKindItem,
		Taxes: []refdomain.TemplateTaxRow{
			{TemplateID: tplID, Category: refdomain.CategorySalesTax, Rate: decimal.NewFromInt(18), AccountHead: "ST Payable - CO", Idx: 0},
			{TemplateID: tplID, Category: refdomain.CategoryFurtherTax, Rate: decimal.NewFromInt(4), AccountHead: "FT Payable - CO", Idx: 1},
		},
	}))

	require.NoError(t, repo.UpsertItem(ctx, &refdomain.Item{
		Code: "WIDGET",
		Name: "Widget",
		Taxes: []refdomain.ItemTaxRule{
			{ItemCode: "WIDGET", Category: refdomain.CategorySalesTax, TemplateID: &tplID, Idx: 0},
		},
	}))
}

func TestCreateComputesAndPersists(t *testing.T) {
	svc, refRepo := setupService(t)
	seedRefData(t, refRepo)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{
		DocType:       domain.DocTypeSales,
		CompanyID:     "CO-1",
		PartySTStatus: domain.StatusUnregistered,
		Items: []domain.CreateLineRequest{
			{ItemCode: "WIDGET", Qty: decimal.NewFromInt(10), Rate: decimal.NewFromInt(100)},
		},
	})
	require.NoError(t, err)

	loaded, err := svc.Get(ctx, created.ID.String())
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)

	line := loaded.Items[0]
	assert.True(t, line.STAmount.Equal(decimal.NewFromInt(180)))
	assert.True(t, line.FTAmount.Equal(decimal.NewFromInt(40)))
	assert.True(t, line.TotalInclTax.Equal(decimal.NewFromInt(1220)))
	assert.True(t, loaded.TotalTaxes.Equal(decimal.NewFromInt(220)))
	assert.Len(t, loaded.Taxes, 2)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{DocType: "QUOTE", CompanyID: "CO-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidDocType)

	_, err = svc.Create(ctx, domain.CreateRequest{DocType: domain.DocTypeSales})
	assert.ErrorIs(t, err, domain.ErrInvalidCompany)

	_, err = svc.Create(ctx, domain.CreateRequest{DocType: domain.DocTypeSales, CompanyID: "CO-1"})
	assert.ErrorIs(t, err, domain.ErrEmptyItems)

	_, err = svc.Create(ctx, domain.CreateRequest{
		DocType:   domain.DocTypeSales,
		CompanyID: "CO-1",
		Items:     []domain.CreateLineRequest{{ItemCode: "WIDGET"}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestApplyLineEventOverrideRate(t *testing.T) {
	svc, refRepo := setupService(t)
	seedRefData(t, refRepo)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{
		DocType:       domain.DocTypeSales,
		CompanyID:     "CO-1",
		PartySTStatus: domain.StatusRegistered,
		Items: []domain.CreateLineRequest{
			{ItemCode: "WIDGET", Qty: decimal.NewFromInt(2), Rate: decimal.NewFromInt(100)},
		},
	})
	require.NoError(t, err)

	updated, err := svc.ApplyLineEvent(ctx, domain.LineEventRequest{
		InvoiceID: created.ID.String(),
		LineID:    created.Items[0].ID.String(),
		Field:     domain.FieldSTRate,
		Value:     "17",
	})
	require.NoError(t, err)

	assert.True(t, updated.Items[0].STRate.Equal(decimal.NewFromInt(17)))
	assert.True(t, updated.Items[0].STAmount.Equal(decimal.NewFromInt(34)))
	assert.True(t, updated.TotalTaxes.Equal(decimal.NewFromInt(34)))

	// Invalid numeric input coerces to zero instead of failing entry.
	updated, err = svc.ApplyLineEvent(ctx, domain.LineEventRequest{
		InvoiceID: created.ID.String(),
		LineID:    created.Items[0].ID.String(),
		Field:     domain.FieldSTRate,
		Value:     "not-a-number",
	})
	require.NoError(t, err)
	assert.True(t, updated.Items[0].STAmount.IsZero())
}

func TestApplyLineEventUnknownLine(t *testing.T) {
	svc, refRepo := setupService(t)
	seedRefData(t, refRepo)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{
		DocType:       domain.DocTypeSales,
		CompanyID:     "CO-1",
		PartySTStatus: domain.StatusRegistered,
		Items: []domain.CreateLineRequest{
			{ItemCode: "WIDGET", Qty: decimal.NewFromInt(1), Rate: decimal.NewFromInt(10)},
		},
	})
	require.NoError(t, err)

	_, err = svc.ApplyLineEvent(ctx, domain.LineEventRequest{
		InvoiceID: created.ID.String(),
		LineID:    "999999999999",
		Field:     domain.FieldQty,
		Value:     "3",
	})
	assert.ErrorIs(t, err, domain.ErrUnknownLine)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	svc, refRepo := setupService(t)
	seedRefData(t, refRepo)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{
		DocType:       domain.DocTypeSales,
		CompanyID:     "CO-1",
		PartySTStatus: domain.StatusUnregistered,
		Items: []domain.CreateLineRequest{
			{ItemCode: "WIDGET", Qty: decimal.NewFromInt(10), Rate: decimal.NewFromInt(100)},
		},
	})
	require.NoError(t, err)

	first, err := svc.Recompute(ctx, created.ID.String())
	require.NoError(t, err)
	second, err := svc.Recompute(ctx, created.ID.String())
	require.NoError(t, err)

	require.Equal(t, len(first.Taxes), len(second.Taxes))
	for i := range first.Taxes {
		assert.Equal(t, first.Taxes[i].AccountHead, second.Taxes[i].AccountHead)
		assert.Equal(t, first.Taxes[i].Category, second.Taxes[i].Category)
		assert.True(t, first.Taxes[i].Amount.Equal(second.Taxes[i].Amount))
	}
	assert.True(t, first.TotalTaxes.Equal(second.TotalTaxes))
}
