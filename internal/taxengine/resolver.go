package taxengine

import (
	"context"

	invoicedomain "github.com/spotledger/taxcore/internal/invoice/domain"
	refdomain "github.com/spotledger/taxcore/internal/refdata/domain"
	"go.uber.org/zap"
)

// TemplateResolver determines which tax template governs a line item.
//
// Resolution order, first match wins:
//  1. the line's explicit template reference,
//  2. the item master's taxes table: first Sales Tax row carrying a template,
//  3. the FBR transaction type reached through the line's (or item's) tax
//     classification.
//
// Every fetch failure degrades to "no template": a line without a template
// simply attracts no tax.
type TemplateResolver struct {
	fetch refdomain.Fetcher
	log   *zap.Logger
}

func NewTemplateResolver(fetch refdomain.Fetcher, log *zap.Logger) *TemplateResolver {
	return &TemplateResolver{fetch: fetch, log: log.Named("taxengine.resolver")}
}

// Resolve returns the governing template for the line, or nil. Resolved
// bodies are cached on the session keyed by item code.
func (r *TemplateResolver) Resolve(ctx context.Context, sess *Session, line *invoicedomain.LineItem) *refdomain.TaxTemplate {
	if line.TemplateID != nil && *line.TemplateID != "" {
		if tpl := r.template(ctx, *line.TemplateID); tpl != nil {
			sess.PutTemplate(line.ItemCode, tpl)
			return tpl
		}
	}

	item := r.item(ctx, line.ItemCode)

	if item != nil {
		for _, rule := range item.Taxes {
			if rule.Category != refdomain.CategorySalesTax {
				continue
			}
			if rule.TemplateID == nil || *rule.TemplateID == "" {
				continue
			}
			if tpl := r.template(ctx, *rule.TemplateID); tpl != nil {
				sess.PutTemplate(line.ItemCode, tpl)
				return tpl
			}
			break
		}
	}

	classification := line.TaxClassification
	if (classification == nil || *classification == "") && item != nil {
		classification = item.TaxClassification
	}
	if classification == nil || *classification == "" {
		return nil
	}

	tt, err := r.fetch.TransactionType(ctx, *classification)
	if err != nil {
		r.log.Warn("transaction type fetch failed",
			zap.String("classification", *classification),
			zap.Error(err),
		)
		return nil
	}
	if tt == nil || tt.TemplateID == nil || *tt.TemplateID == "" {
		return nil
	}

	tpl := r.template(ctx, *tt.TemplateID)
	if tpl != nil {
		sess.PutTemplate(line.ItemCode, tpl)
	}
	return tpl
}

func (r *TemplateResolver) template(ctx context.Context, id string) *refdomain.TaxTemplate {
	tpl, err := r.fetch.Template(ctx, id)
	if err != nil {
		r.log.Warn("template fetch failed", zap.String("template_id", id), zap.Error(err))
		return nil
	}
	return tpl
}

func (r *TemplateResolver) item(ctx context.Context, code string) *refdomain.Item {
	item, err := r.fetch.Item(ctx, code)
	if err != nil {
		r.log.Warn("item fetch failed", zap.String("item_code", code), zap.Error(err))
		return nil
	}
	return item
}
