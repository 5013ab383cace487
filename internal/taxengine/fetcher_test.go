package taxengine

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	refdomain "github.com/spotledger/taxcore/internal/refdata/domain"
)

// stubFetcher serves reference records from maps, returning (nil, nil) for
// anything absent. failWith makes every fetch fail, exercising the
// degrade-to-zero-tax paths.
type stubFetcher struct {
	items     map[string]*refdomain.Item
	templates map[string]*refdomain.TaxTemplate
	companies map[string]*refdomain.Company
	txtypes   map[string]*refdomain.TransactionType

	failWith error
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		items:     make(map[string]*refdomain.Item),
		templates: make(map[string]*refdomain.TaxTemplate),
		companies: make(map[string]*refdomain.Company),
		txtypes:   make(map[string]*refdomain.TransactionType),
	}
}

func (f *stubFetcher) Item(ctx context.Context, code string) (*refdomain.Item, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.items[code], nil
}

func (f *stubFetcher) Template(ctx context.Context, id string) (*refdomain.TaxTemplate, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.templates[id], nil
}

func (f *stubFetcher) Company(ctx context.Context, id string) (*refdomain.Company, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.companies[id], nil
}

func (f *stubFetcher) TransactionType(ctx context.Context, name string) (*refdomain.TransactionType, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.txtypes[name], nil
}

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return node
}

func strptr(s string) *string { return &s }
