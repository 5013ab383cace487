package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	refdomain "github.com/spotledger/taxcore/internal/refdata/domain"
)

type itemTaxRuleRequest struct {
	Category   string  `json:"category"`
	TemplateID *string `json:"template_id"`
}

type upsertItemRequest struct {
	Name               string               `json:"name"`
	TaxClassification  *string              `json:"tax_classification"`
	FixedNotifiedValue decimal.Decimal      `json:"fixed_notified_value"`
	RetailPrice        decimal.Decimal      `json:"retail_price"`
	Taxes              []itemTaxRuleRequest `json:"taxes"`
}

func (s *Server) UpsertItem(c *gin.Context) {
	var req upsertItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item := refdomain.Item{
		Code:               strings.TrimSpace(c.Param("code")),
		Name:               strings.TrimSpace(req.Name),
		TaxClassification:  req.TaxClassification,
		FixedNotifiedValue: req.FixedNotifiedValue,
		RetailPrice:        req.RetailPrice,
	}
	for i, rule := range req.Taxes {
		item.Taxes = append(item.Taxes, refdomain.ItemTaxRule{
			ItemCode:   item.Code,
			Category:   refdomain.TaxCategory(rule.Category),
			TemplateID: rule.TemplateID,
			Idx:        i,
		})
	}

	if err := s.refRepo.UpsertItem(c.Request.Context(), &item); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

type templateRowRequest struct {
	Category    string          `json:"category"`
	Rate        decimal.Decimal `json:"rate"`
	AccountHead string          `json:"account_head"`
}

type upsertTemplateRequest struct {
	Kind  string               `json:"kind"`
	Title string               `json:"title"`
	Taxes []templateRowRequest `json:"taxes"`
}

func (s *Server) UpsertTemplate(c *gin.Context) {
	var req upsertTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	template := refdomain.TaxTemplate{
		ID:    strings.TrimSpace(c.Param("id")),
		Kind:  refdomain.TemplateKind(strings.ToUpper(strings.TrimSpace(req.Kind))),
		Title: strings.TrimSpace(req.Title),
	}
	for i, row := range req.Taxes {
		template.Taxes = append(template.Taxes, refdomain.TemplateTaxRow{
			TemplateID:  template.ID,
			Category:    refdomain.TaxCategory(row.Category),
			Rate:        row.Rate,
			AccountHead: strings.TrimSpace(row.AccountHead),
			Idx:         i,
		})
	}

	if err := s.refRepo.UpsertTemplate(c.Request.Context(), &template); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": template})
}

type upsertCompanyRequest struct {
	Name                     string `json:"name"`
	SalesTaxAccount          string `json:"sales_tax_account"`
	FurtherTaxAccount        string `json:"further_tax_account"`
	AdvanceTaxAccount        string `json:"advance_tax_account"`
	FreightExpenseAccount    string `json:"freight_expense_account"`
	FreightOnPurchaseAccount string `json:"freight_on_purchase_account"`
	CostCenter               string `json:"cost_center"`
}

func (s *Server) UpsertCompany(c *gin.Context) {
	var req upsertCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	company := refdomain.Company{
		ID:                       strings.TrimSpace(c.Param("id")),
		Name:                     strings.TrimSpace(req.Name),
		SalesTaxAccount:          strings.TrimSpace(req.SalesTaxAccount),
		FurtherTaxAccount:        strings.TrimSpace(req.FurtherTaxAccount),
		AdvanceTaxAccount:        strings.TrimSpace(req.AdvanceTaxAccount),
		FreightExpenseAccount:    strings.TrimSpace(req.FreightExpenseAccount),
		FreightOnPurchaseAccount: strings.TrimSpace(req.FreightOnPurchaseAccount),
		CostCenter:               strings.TrimSpace(req.CostCenter),
	}

	if err := s.refRepo.UpsertCompany(c.Request.Context(), &company); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": company})
}

type upsertTransactionTypeRequest struct {
	TemplateID *string `json:"template_id"`
}

func (s *Server) UpsertTransactionType(c *gin.Context) {
	var req upsertTransactionTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tt := refdomain.TransactionType{
		Name:       strings.TrimSpace(c.Param("name")),
		TemplateID: req.TemplateID,
	}

	if err := s.refRepo.UpsertTransactionType(c.Request.Context(), &tt); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tt})
}
