package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/spotledger/taxcore/internal/invoice/domain"
)

type createInvoiceLineRequest struct {
	ItemCode          string          `json:"item_code"`
	Qty               decimal.Decimal `json:"qty"`
	Rate              decimal.Decimal `json:"rate"`
	TemplateID        *string         `json:"template_id"`
	TaxClassification *string         `json:"tax_classification"`
}

type createInvoiceRequest struct {
	DocType           string                     `json:"doc_type"`
	CompanyID         string                     `json:"company_id"`
	IsReturn          bool                       `json:"is_return"`
	PartySTStatus     string                     `json:"party_st_status"`
	InvoiceType       string                     `json:"invoice_type"`
	SalesTaxInvoice   *bool                      `json:"sales_tax_invoice"`
	ChargesTemplateID *string                    `json:"charges_template_id"`
	FreightRule       *string                    `json:"freight_rule"`
	FreightAmount     decimal.Decimal            `json:"freight_amount"`
	Currency          string                     `json:"currency"`
	Items             []createInvoiceLineRequest `json:"items"`
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	items := make([]invoicedomain.CreateLineRequest, 0, len(req.Items))
	for _, line := range req.Items {
		items = append(items, invoicedomain.CreateLineRequest{
			ItemCode:          strings.TrimSpace(line.ItemCode),
			Qty:               line.Qty,
			Rate:              line.Rate,
			TemplateID:        line.TemplateID,
			TaxClassification: line.TaxClassification,
		})
	}

	resp, err := s.invoiceSvc.Create(c.Request.Context(), invoicedomain.CreateRequest{
		DocType:           invoicedomain.DocType(strings.ToUpper(strings.TrimSpace(req.DocType))),
		CompanyID:         strings.TrimSpace(req.CompanyID),
		IsReturn:          req.IsReturn,
		PartySTStatus:     invoicedomain.RegistrationStatus(strings.ToUpper(strings.TrimSpace(req.PartySTStatus))),
		InvoiceType:       strings.TrimSpace(req.InvoiceType),
		SalesTaxInvoice:   req.SalesTaxInvoice,
		ChargesTemplateID: req.ChargesTemplateID,
		FreightRule:       req.FreightRule,
		FreightAmount:     req.FreightAmount,
		Currency:          strings.TrimSpace(req.Currency),
		Items:             items,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RecomputeInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.Recompute(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type lineEventRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (s *Server) ApplyLineEvent(c *gin.Context) {
	var req lineEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.ApplyLineEvent(c.Request.Context(), invoicedomain.LineEventRequest{
		InvoiceID: strings.TrimSpace(c.Param("id")),
		LineID:    strings.TrimSpace(c.Param("line_id")),
		Field:     invoicedomain.LineField(strings.TrimSpace(req.Field)),
		Value:     req.Value,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
