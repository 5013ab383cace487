package service

import (
	"context"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/spotledger/taxcore/internal/invoice/domain"
	"github.com/spotledger/taxcore/internal/withholding/domain"
	"github.com/spotledger/taxcore/pkg/money"
	"go.uber.org/zap"
)

// Calculate recomputes withholding over the entry's references and rebuilds
// the deduction rows. Only supplier and customer payments attract
// withholding; anything else is left untouched. Missing sections, unknown
// FBR status or a zero rate skip the reference rather than failing.
func (s *Service) Calculate(ctx context.Context, pe *domain.PaymentEntry) error {
	if pe.PartyType != domain.PartySupplier && pe.PartyType != domain.PartyCustomer {
		return nil
	}

	s.applyDefaultSection(ctx, pe)

	sections := s.sectionMap(ctx, pe)

	type bucket struct {
		name  string
		total decimal.Decimal
	}
	var order []string
	totals := make(map[string]decimal.Decimal)

	for i := range pe.References {
		ref := &pe.References[i]
		if ref.ReferenceDocType != invoicedomain.DocTypePurchase && ref.ReferenceDocType != invoicedomain.DocTypeSales {
			continue
		}
		if ref.Section == nil || *ref.Section == "" {
			continue
		}
		section, ok := sections[*ref.Section]
		if !ok {
			continue
		}

		rate := applicableRate(section, pe.PartyFBRStatus)
		if rate.IsZero() {
			ref.WHTRate = decimal.Zero
			ref.WHTAmount = decimal.Zero
			continue
		}

		amount := money.Round(money.Percent(ref.AllocatedAmount, rate), s.precision)
		ref.WHTRate = rate
		ref.WHTAmount = amount

		if _, seen := totals[section.Name]; !seen {
			order = append(order, section.Name)
		}
		totals[section.Name] = totals[section.Name].Add(amount)
	}

	buckets := lo.Map(order, func(name string, _ int) bucket {
		return bucket{name: name, total: totals[name]}
	})

	pe.Taxes = pe.Taxes[:0]
	totalWHT := decimal.Zero
	for _, b := range buckets {
		section := sections[b.name]
		account := section.AccountHead
		if pe.PaymentType == domain.PaymentPay {
			account = section.TaxReceivableAccountHead
		}
		if account == "" {
			s.log.Warn("deduction row suppressed, no account on section",
				zap.String("section", b.name),
			)
			totalWHT = totalWHT.Add(b.total)
			continue
		}
		pe.Taxes = append(pe.Taxes, domain.WHTChargeRow{
			ID:             s.genID.Generate(),
			PaymentEntryID: pe.ID,
			ChargeType:     domain.ChargeTypeActual,
			AddDeduct:      domain.AddDeductDeduct,
			AccountHead:    account,
			Description:    b.name,
			Amount:         money.Round(b.total, s.precision),
		})
		totalWHT = totalWHT.Add(b.total)
	}

	pe.TotalWHT = money.Round(totalWHT, s.precision)
	return nil
}

// applyDefaultSection fills the supplier's default WHT section onto
// purchase-invoice references that name none.
func (s *Service) applyDefaultSection(ctx context.Context, pe *domain.PaymentEntry) {
	if pe.PartyType != domain.PartySupplier {
		return
	}
	supplier, err := s.repo.Supplier(ctx, pe.PartyID)
	if err != nil {
		s.log.Warn("supplier fetch failed", zap.String("party_id", pe.PartyID), zap.Error(err))
		return
	}
	if supplier == nil || supplier.DefaultWHTSection == nil || *supplier.DefaultWHTSection == "" {
		return
	}
	for i := range pe.References {
		ref := &pe.References[i]
		if ref.ReferenceDocType != invoicedomain.DocTypePurchase {
			continue
		}
		if ref.Section == nil || *ref.Section == "" {
			section := *supplier.DefaultWHTSection
			ref.Section = &section
		}
	}
}

// sectionMap fetches every section named by the references, once each.
// Fetch failures degrade to a missing section.
func (s *Service) sectionMap(ctx context.Context, pe *domain.PaymentEntry) map[string]*domain.WHTSection {
	names := lo.Uniq(lo.FilterMap(pe.References, func(ref domain.PaymentReference, _ int) (string, bool) {
		if ref.ReferenceDocType != invoicedomain.DocTypePurchase && ref.ReferenceDocType != invoicedomain.DocTypeSales {
			return "", false
		}
		if ref.Section == nil || *ref.Section == "" {
			return "", false
		}
		return *ref.Section, true
	}))

	sections := make(map[string]*domain.WHTSection, len(names))
	for _, name := range names {
		section, err := s.repo.Section(ctx, name)
		if err != nil {
			s.log.Warn("wht section fetch failed", zap.String("section", name), zap.Error(err))
			continue
		}
		if section == nil {
			s.log.Warn("wht section not found", zap.String("section", name))
			continue
		}
		sections[name] = section
	}
	return sections
}

// applicableRate picks the section rate for the party's taxpayer status.
// Unknown status means no withholding.
func applicableRate(section *domain.WHTSection, status *domain.FBRStatus) decimal.Decimal {
	if status == nil {
		return decimal.Zero
	}
	switch *status {
	case domain.FBRActive:
		return section.ActiveTaxpayerRate
	case domain.FBRInActive:
		return section.InactiveTaxpayerRate
	default:
		return decimal.Zero
	}
}
