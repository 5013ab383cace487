// Package taxengine computes per-line sales, further and advance taxes for
// purchase and sales invoices under the FBR regime, and aggregates them
// into invoice-level tax charge rows.
package taxengine

import (
	refdomain "github.com/spotledger/taxcore/internal/refdata/domain"
)

// Session carries state for one recalculation cycle. Templates resolved for
// a line are cached by item code so the summary aggregator can reuse the
// same template body without a second fetch. A Session is never shared
// across cycles; its lifetime makes cache invalidation a non-issue.
type Session struct {
	templates map[string]*refdomain.TaxTemplate
}

func NewSession() *Session {
	return &Session{templates: make(map[string]*refdomain.TaxTemplate)}
}

// Template returns the cached template for an item code.
func (s *Session) Template(itemCode string) (*refdomain.TaxTemplate, bool) {
	tpl, ok := s.templates[itemCode]
	return tpl, ok
}

// PutTemplate caches a resolved template body under the item code,
// replacing any earlier entry.
func (s *Session) PutTemplate(itemCode string, tpl *refdomain.TaxTemplate) {
	if tpl == nil {
		return
	}
	s.templates[itemCode] = tpl
}
