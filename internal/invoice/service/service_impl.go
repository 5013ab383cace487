package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/spotledger/taxcore/internal/invoice/domain"
	"github.com/spotledger/taxcore/internal/taxengine"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Engine *taxengine.Engine
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	engine *taxengine.Engine
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("invoice.service"),
		genID:  p.GenID,
		engine: p.Engine,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Invoice, error) {
	if req.DocType != domain.DocTypePurchase && req.DocType != domain.DocTypeSales {
		return nil, domain.ErrInvalidDocType
	}
	if strings.TrimSpace(req.CompanyID) == "" {
		return nil, domain.ErrInvalidCompany
	}
	if len(req.Items) == 0 {
		return nil, domain.ErrEmptyItems
	}

	status := req.PartySTStatus
	if status == "" {
		status = domain.StatusRegistered
	}
	taxInvoice := true
	if req.SalesTaxInvoice != nil {
		taxInvoice = *req.SalesTaxInvoice
	}
	currency := strings.TrimSpace(req.Currency)
	if currency == "" {
		currency = "PKR"
	}

	now := time.Now().UTC()
	inv := domain.Invoice{
		ID:                s.genID.Generate(),
		DocType:           req.DocType,
		CompanyID:         strings.TrimSpace(req.CompanyID),
		IsReturn:          req.IsReturn,
		PartySTStatus:     status,
		InvoiceType:       req.InvoiceType,
		SalesTaxInvoice:   taxInvoice,
		ChargesTemplateID: req.ChargesTemplateID,
		FreightRule:       req.FreightRule,
		FreightAmount:     req.FreightAmount,
		Currency:          currency,
		Metadata:          datatypes.JSONMap{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	for _, line := range req.Items {
		if strings.TrimSpace(line.ItemCode) == "" {
			return nil, domain.ErrUnknownLine
		}
		if line.Qty.IsZero() {
			return nil, domain.ErrInvalidQuantity
		}
		inv.Items = append(inv.Items, domain.LineItem{
			ID:                s.genID.Generate(),
			InvoiceID:         inv.ID,
			ItemCode:          strings.TrimSpace(line.ItemCode),
			Qty:               line.Qty,
			Rate:              line.Rate,
			TemplateID:        line.TemplateID,
			TaxClassification: line.TaxClassification,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}

	s.engine.Recompute(ctx, &inv)

	if err := s.db.WithContext(ctx).Create(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	invID, err := s.parseID(id)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, invID)
}

func (s *Service) Recompute(ctx context.Context, id string) (*domain.Invoice, error) {
	invID, err := s.parseID(id)
	if err != nil {
		return nil, err
	}
	inv, err := s.load(ctx, invID)
	if err != nil {
		return nil, err
	}

	s.engine.Recompute(ctx, inv)

	if err := s.persist(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) ApplyLineEvent(ctx context.Context, req domain.LineEventRequest) (*domain.Invoice, error) {
	invID, err := s.parseID(req.InvoiceID)
	if err != nil {
		return nil, err
	}
	lineID, err := s.parseID(req.LineID)
	if err != nil {
		return nil, err
	}
	inv, err := s.load(ctx, invID)
	if err != nil {
		return nil, err
	}
	line := inv.Item(lineID)
	if line == nil {
		return nil, domain.ErrUnknownLine
	}

	switch req.Field {
	case domain.FieldItemCode:
		code := strings.TrimSpace(req.Value)
		if code == "" {
			return nil, domain.ErrUnknownField
		}
		line.ItemCode = code
	case domain.FieldQty:
		line.Qty = parseDecimal(req.Value)
	case domain.FieldRate:
		line.Rate = parseDecimal(req.Value)
	case domain.FieldSTAmount:
		line.STAmount = parseDecimal(req.Value)
	case domain.FieldSTRate:
		line.STRate = parseDecimal(req.Value)
	case domain.FieldFTRate:
		line.FTRate = parseDecimal(req.Value)
	default:
		return nil, domain.ErrUnknownField
	}
	line.UpdatedAt = time.Now().UTC()

	if err := s.engine.HandleFieldChange(ctx, inv, lineID, req.Field); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) load(ctx context.Context, id snowflake.ID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := s.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at, id") }).
		Preload("Taxes", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at, id") }).
		First(&inv, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// persist writes the recomputed document: line fields in place, charge rows
// replaced wholesale, header totals updated.
func (s *Service) persist(ctx context.Context, inv *domain.Invoice) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&domain.TaxChargeRow{}).Error; err != nil {
			return err
		}
		if len(inv.Taxes) > 0 {
			if err := tx.Create(&inv.Taxes).Error; err != nil {
				return err
			}
		}
		for i := range inv.Items {
			if err := tx.Save(&inv.Items[i]).Error; err != nil {
				return err
			}
		}
		return tx.Omit(clause.Associations).Save(inv).Error
	})
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

// parseDecimal coerces user input to a decimal, invalid input degrading to
// zero rather than failing invoice entry.
func parseDecimal(value string) decimal.Decimal {
	parsed, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero
	}
	return parsed
}
