package taxengine

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/spotledger/taxcore/internal/config"
	invoicedomain "github.com/spotledger/taxcore/internal/invoice/domain"
	refdomain "github.com/spotledger/taxcore/internal/refdata/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Engine wires the resolver, calculator, aggregator and override guard into
// the two entry points callers use: a full recompute and a single
// field-change event. Line computation always completes before the summary
// rebuild reads the lines; there is no timer-based sequencing.
type Engine struct {
	calc  *Calculator
	agg   *Aggregator
	guard *OverrideGuard
	log   *zap.Logger
}

type EngineParams struct {
	fx.In

	Fetcher refdomain.Fetcher
	Node    *snowflake.Node
	Config  config.Config
	Logger  *zap.Logger
}

func New(p EngineParams) *Engine {
	resolver := NewTemplateResolver(p.Fetcher, p.Logger)
	accounts := NewAccountResolver(p.Fetcher, p.Logger)
	return &Engine{
		calc:  NewCalculator(p.Fetcher, resolver, p.Config.CurrencyPrecision, p.Logger),
		agg:   NewAggregator(p.Fetcher, resolver, accounts, p.Node, p.Config.AccountSource, p.Config.CurrencyPrecision, p.Logger),
		guard: NewOverrideGuard(),
		log:   p.Logger.Named("taxengine"),
	}
}

// Recompute recalculates every line in normal mode and rebuilds the tax
// summary. Import documents are left untouched.
func (e *Engine) Recompute(ctx context.Context, inv *invoicedomain.Invoice) {
	if inv.InvoiceType == invoicedomain.InvoiceTypeImport {
		return
	}
	sess := NewSession()
	for i := range inv.Items {
		e.calc.Compute(ctx, sess, inv, &inv.Items[i], ModeNormal).ApplyTo(&inv.Items[i])
	}
	e.agg.Rebuild(ctx, sess, inv)
}

// HandleFieldChange routes one field-change event on a line. Overrides of
// the guarded fields run under the override guard; incidental triggers on a
// line with an override settling are dropped.
func (e *Engine) HandleFieldChange(ctx context.Context, inv *invoicedomain.Invoice, lineID snowflake.ID, field invoicedomain.LineField) error {
	if inv.InvoiceType == invoicedomain.InvoiceTypeImport {
		return nil
	}
	line := inv.Item(lineID)
	if line == nil {
		return invoicedomain.ErrUnknownLine
	}

	switch field {
	case invoicedomain.FieldSTAmount:
		return e.override(ctx, inv, line, field, ModeOverrideAmount)
	case invoicedomain.FieldSTRate:
		return e.override(ctx, inv, line, field, ModeOverrideRate)
	case invoicedomain.FieldFTRate:
		return e.override(ctx, inv, line, field, ModeOverrideFTRate)
	case invoicedomain.FieldQty, invoicedomain.FieldRate, invoicedomain.FieldItemCode:
		if e.guard.Suppressed(lineID) {
			e.log.Debug("recalculation suppressed while override settles",
				zap.Int64("line_id", int64(lineID)),
				zap.String("field", string(field)),
			)
			return nil
		}
		sess := NewSession()
		e.calc.Compute(ctx, sess, inv, line, ModeNormal).ApplyTo(line)
		e.agg.Rebuild(ctx, sess, inv)
		return nil
	default:
		return invoicedomain.ErrUnknownField
	}
}

func (e *Engine) override(ctx context.Context, inv *invoicedomain.Invoice, line *invoicedomain.LineItem, field invoicedomain.LineField, mode Mode) error {
	if !e.guard.Begin(line.ID, field) {
		e.log.Debug("override re-entry dropped",
			zap.Int64("line_id", int64(line.ID)),
			zap.String("field", string(field)),
		)
		return nil
	}
	defer e.guard.Settle(line.ID, field)

	sess := NewSession()
	e.calc.Compute(ctx, sess, inv, line, mode).ApplyTo(line)
	e.agg.Rebuild(ctx, sess, inv)
	return nil
}
