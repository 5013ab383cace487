package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/spotledger/taxcore/internal/config"
	"github.com/spotledger/taxcore/internal/withholding/domain"
	"github.com/spotledger/taxcore/pkg/money"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Config config.Config
	Repo   domain.Repository
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	precision int32
}

func New(p Params) domain.Service {
	precision := p.Config.CurrencyPrecision
	if precision <= 0 {
		precision = money.DefaultPrecision
	}
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("withholding.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		precision: precision,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.PaymentEntry, error) {
	switch req.PartyType {
	case domain.PartySupplier, domain.PartyCustomer, domain.PartyEmployee:
	default:
		return nil, domain.ErrInvalidParty
	}
	if strings.TrimSpace(req.PartyID) == "" {
		return nil, domain.ErrInvalidParty
	}
	if req.PaymentType != domain.PaymentPay && req.PaymentType != domain.PaymentReceive {
		return nil, domain.ErrInvalidDirection
	}
	if len(req.References) == 0 {
		return nil, domain.ErrEmptyReferences
	}

	now := time.Now().UTC()
	pe := domain.PaymentEntry{
		ID:             s.genID.Generate(),
		PartyType:      req.PartyType,
		PartyID:        strings.TrimSpace(req.PartyID),
		PartyFBRStatus: req.PartyFBRStatus,
		PaymentType:    req.PaymentType,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	for _, ref := range req.References {
		invID, err := snowflake.ParseString(strings.TrimSpace(ref.InvoiceID))
		if err != nil || invID == 0 {
			return nil, domain.ErrInvalidID
		}
		pe.References = append(pe.References, domain.PaymentReference{
			ID:               s.genID.Generate(),
			PaymentEntryID:   pe.ID,
			ReferenceDocType: ref.ReferenceDocType,
			InvoiceID:        invID,
			Section:          ref.Section,
			AllocatedAmount:  ref.AllocatedAmount,
			CreatedAt:        now,
			UpdatedAt:        now,
		})
	}

	if err := s.Calculate(ctx, &pe); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&pe).Error; err != nil {
		return nil, err
	}
	return &pe, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.PaymentEntry, error) {
	peID, err := s.parseID(id)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, peID)
}

func (s *Service) Recompute(ctx context.Context, id string) (*domain.PaymentEntry, error) {
	peID, err := s.parseID(id)
	if err != nil {
		return nil, err
	}
	pe, err := s.load(ctx, peID)
	if err != nil {
		return nil, err
	}

	if err := s.Calculate(ctx, pe); err != nil {
		return nil, err
	}
	pe.UpdatedAt = time.Now().UTC()

	if err := s.persist(ctx, pe); err != nil {
		return nil, err
	}
	return pe, nil
}

func (s *Service) load(ctx context.Context, id snowflake.ID) (*domain.PaymentEntry, error) {
	var pe domain.PaymentEntry
	err := s.db.WithContext(ctx).
		Preload("References", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at, id") }).
		Preload("Taxes", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at, id") }).
		First(&pe, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &pe, nil
}

func (s *Service) persist(ctx context.Context, pe *domain.PaymentEntry) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("payment_entry_id = ?", pe.ID).Delete(&domain.WHTChargeRow{}).Error; err != nil {
			return err
		}
		if len(pe.Taxes) > 0 {
			if err := tx.Create(&pe.Taxes).Error; err != nil {
				return err
			}
		}
		for i := range pe.References {
			if err := tx.Save(&pe.References[i]).Error; err != nil {
				return err
			}
		}
		return tx.Omit(clause.Associations).Save(pe).Error
	})
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
