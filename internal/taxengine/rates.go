package taxengine

import (
	"github.com/shopspring/decimal"
	refdomain "github.com/spotledger/taxcore/internal/refdata/domain"
)

// RateInfo is the extracted rate and account head for one tax category.
type RateInfo struct {
	Rate        decimal.Decimal
	AccountHead string
}

// ExtractRates walks the template's tax rows once and collects the rate and
// account head per requested category. Rates of repeated categories
// accumulate additively; the account head takes the last non-empty match.
// Unlisted categories are ignored. A template with no rows yields zero
// entries for every requested category.
func ExtractRates(tpl *refdomain.TaxTemplate, categories ...refdomain.TaxCategory) map[refdomain.TaxCategory]RateInfo {
	out := make(map[refdomain.TaxCategory]RateInfo, len(categories))
	for _, cat := range categories {
		out[cat] = RateInfo{Rate: decimal.Zero}
	}
	if tpl == nil {
		return out
	}

	for _, row := range tpl.Taxes {
		info, ok := out[row.Category]
		if !ok {
			continue
		}
		info.Rate = info.Rate.Add(row.Rate)
		if row.AccountHead != "" {
			info.AccountHead = row.AccountHead
		}
		out[row.Category] = info
	}
	return out
}
