package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/spotledger/taxcore/internal/withholding/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type repository struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewRepository builds the gorm-backed withholding reference store. Section
// and supplier records are small and read per recompute, so no cache sits
// in front of them.
func NewRepository(p Params) domain.Repository {
	return &repository{
		db:  p.DB,
		log: p.Log.Named("withholding.repository"),
	}
}

func (r *repository) Section(ctx context.Context, name string) (*domain.WHTSection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidID
	}

	var section domain.WHTSection
	err := r.db.WithContext(ctx).First(&section, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &section, nil
}

func (r *repository) Supplier(ctx context.Context, id string) (*domain.Supplier, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrInvalidID
	}

	var supplier domain.Supplier
	err := r.db.WithContext(ctx).First(&supplier, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &supplier, nil
}

func (r *repository) UpsertSection(ctx context.Context, section *domain.WHTSection) error {
	if section == nil || strings.TrimSpace(section.Name) == "" {
		return domain.ErrInvalidID
	}
	return r.db.WithContext(ctx).Save(section).Error
}

func (r *repository) UpsertSupplier(ctx context.Context, supplier *domain.Supplier) error {
	if supplier == nil || strings.TrimSpace(supplier.ID) == "" {
		return domain.ErrInvalidID
	}
	return r.db.WithContext(ctx).Save(supplier).Error
}
