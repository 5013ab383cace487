package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/spotledger/taxcore/internal/invoice/domain"
	whtdomain "github.com/spotledger/taxcore/internal/withholding/domain"
)

type paymentReferenceRequest struct {
	ReferenceDocType string          `json:"reference_doc_type"`
	InvoiceID        string          `json:"invoice_id"`
	Section          *string         `json:"section"`
	AllocatedAmount  decimal.Decimal `json:"allocated_amount"`
}

type createPaymentEntryRequest struct {
	PartyType      string                    `json:"party_type"`
	PartyID        string                    `json:"party_id"`
	PartyFBRStatus *string                   `json:"party_fbr_status"`
	PaymentType    string                    `json:"payment_type"`
	References     []paymentReferenceRequest `json:"references"`
}

func (s *Server) CreatePaymentEntry(c *gin.Context) {
	var req createPaymentEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var status *whtdomain.FBRStatus
	if req.PartyFBRStatus != nil && strings.TrimSpace(*req.PartyFBRStatus) != "" {
		st := whtdomain.FBRStatus(strings.TrimSpace(*req.PartyFBRStatus))
		status = &st
	}

	refs := make([]whtdomain.CreateReferenceRequest, 0, len(req.References))
	for _, ref := range req.References {
		refs = append(refs, whtdomain.CreateReferenceRequest{
			ReferenceDocType: invoicedomain.DocType(strings.ToUpper(strings.TrimSpace(ref.ReferenceDocType))),
			InvoiceID:        strings.TrimSpace(ref.InvoiceID),
			Section:          ref.Section,
			AllocatedAmount:  ref.AllocatedAmount,
		})
	}

	resp, err := s.whtSvc.Create(c.Request.Context(), whtdomain.CreateRequest{
		PartyType:      whtdomain.PartyType(strings.ToUpper(strings.TrimSpace(req.PartyType))),
		PartyID:        strings.TrimSpace(req.PartyID),
		PartyFBRStatus: status,
		PaymentType:    whtdomain.PaymentType(strings.ToUpper(strings.TrimSpace(req.PaymentType))),
		References:     refs,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPaymentEntry(c *gin.Context) {
	resp, err := s.whtSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RecomputePaymentEntry(c *gin.Context) {
	resp, err := s.whtSvc.Recompute(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type upsertWHTSectionRequest struct {
	AccountHead              string          `json:"account_head"`
	TaxReceivableAccountHead string          `json:"tax_receivable_account_head"`
	ActiveTaxpayerRate       decimal.Decimal `json:"active_taxpayer_rate"`
	InactiveTaxpayerRate     decimal.Decimal `json:"inactive_taxpayer_rate"`
}

func (s *Server) UpsertWHTSection(c *gin.Context) {
	var req upsertWHTSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	section := whtdomain.WHTSection{
		Name:                     strings.TrimSpace(c.Param("name")),
		AccountHead:              strings.TrimSpace(req.AccountHead),
		TaxReceivableAccountHead: strings.TrimSpace(req.TaxReceivableAccountHead),
		ActiveTaxpayerRate:       req.ActiveTaxpayerRate,
		InactiveTaxpayerRate:     req.InactiveTaxpayerRate,
	}

	if err := s.whtRepo.UpsertSection(c.Request.Context(), &section); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": section})
}

type upsertSupplierRequest struct {
	Name              string  `json:"name"`
	DefaultWHTSection *string `json:"default_wht_section"`
}

func (s *Server) UpsertSupplier(c *gin.Context) {
	var req upsertSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	supplier := whtdomain.Supplier{
		ID:                strings.TrimSpace(c.Param("id")),
		Name:              strings.TrimSpace(req.Name),
		DefaultWHTSection: req.DefaultWHTSection,
	}

	if err := s.whtRepo.UpsertSupplier(c.Request.Context(), &supplier); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": supplier})
}
