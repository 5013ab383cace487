package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	refdomain "github.com/spotledger/taxcore/internal/refdata/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
	TTL time.Duration `name:"refdata_cache_ttl"`
}

type repository struct {
	db    *gorm.DB
	log   *zap.Logger
	cache *gocache.Cache
}

// NewRepository builds the gorm-backed reference-data store with a
// read-through TTL cache in front of every fetch.
func NewRepository(p Params) refdomain.Repository {
	return &repository{
		db:    p.DB,
		log:   p.Log.Named("refdata.repository"),
		cache: gocache.New(p.TTL, 2*p.TTL),
	}
}

func cacheKey(kind, id string) string {
	return fmt.Sprintf("%s:%s", kind, id)
}

func (r *repository) Item(ctx context.Context, code string) (*refdomain.Item, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, refdomain.ErrInvalidKey
	}

	if cached, ok := r.cache.Get(cacheKey("item", code)); ok {
		return cached.(*refdomain.Item), nil
	}

	var item refdomain.Item
	err := r.db.WithContext(ctx).
		Preload("Taxes", func(db *gorm.DB) *gorm.DB { return db.Order("idx ASC") }).
		First(&item, "code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	r.cache.SetDefault(cacheKey("item", code), &item)
	return &item, nil
}

func (r *repository) Template(ctx context.Context, id string) (*refdomain.TaxTemplate, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, refdomain.ErrInvalidKey
	}

	if cached, ok := r.cache.Get(cacheKey("template", id)); ok {
		return cached.(*refdomain.TaxTemplate), nil
	}

	var template refdomain.TaxTemplate
	err := r.db.WithContext(ctx).
		Preload("Taxes", func(db *gorm.DB) *gorm.DB { return db.Order("idx ASC") }).
		First(&template, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	r.cache.SetDefault(cacheKey("template", id), &template)
	return &template, nil
}

func (r *repository) Company(ctx context.Context, id string) (*refdomain.Company, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, refdomain.ErrInvalidKey
	}

	if cached, ok := r.cache.Get(cacheKey("company", id)); ok {
		return cached.(*refdomain.Company), nil
	}

	var company refdomain.Company
	err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	r.cache.SetDefault(cacheKey("company", id), &company)
	return &company, nil
}

func (r *repository) TransactionType(ctx context.Context, name string) (*refdomain.TransactionType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, refdomain.ErrInvalidKey
	}

	if cached, ok := r.cache.Get(cacheKey("txtype", name)); ok {
		return cached.(*refdomain.TransactionType), nil
	}

	var tt refdomain.TransactionType
	err := r.db.WithContext(ctx).First(&tt, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	r.cache.SetDefault(cacheKey("txtype", name), &tt)
	return &tt, nil
}

func (r *repository) UpsertItem(ctx context.Context, item *refdomain.Item) error {
	if item == nil || strings.TrimSpace(item.Code) == "" {
		return refdomain.ErrInvalidKey
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_code = ?", item.Code).Delete(&refdomain.ItemTaxRule{}).Error; err != nil {
			return err
		}
		if err := tx.Where("code = ?", item.Code).Delete(&refdomain.Item{}).Error; err != nil {
			return err
		}
		return tx.Create(item).Error
	})
	if err != nil {
		return err
	}

	r.cache.Delete(cacheKey("item", item.Code))
	return nil
}

func (r *repository) UpsertTemplate(ctx context.Context, template *refdomain.TaxTemplate) error {
	if template == nil || strings.TrimSpace(template.ID) == "" {
		return refdomain.ErrInvalidKey
	}
	switch template.Kind {
	case refdomain.TemplateKindItem, refdomain.TemplateKindSales, refdomain.TemplateKindPurchase:
	default:
		return refdomain.ErrInvalidKind
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", template.ID).Delete(&refdomain.TemplateTaxRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", template.ID).Delete(&refdomain.TaxTemplate{}).Error; err != nil {
			return err
		}
		return tx.Create(template).Error
	})
	if err != nil {
		return err
	}

	r.cache.Delete(cacheKey("template", template.ID))
	return nil
}

func (r *repository) UpsertCompany(ctx context.Context, company *refdomain.Company) error {
	if company == nil || strings.TrimSpace(company.ID) == "" {
		return refdomain.ErrInvalidKey
	}

	if err := r.db.WithContext(ctx).Save(company).Error; err != nil {
		return err
	}

	r.cache.Delete(cacheKey("company", company.ID))
	return nil
}

func (r *repository) UpsertTransactionType(ctx context.Context, tt *refdomain.TransactionType) error {
	if tt == nil || strings.TrimSpace(tt.Name) == "" {
		return refdomain.ErrInvalidKey
	}

	if err := r.db.WithContext(ctx).Save(tt).Error; err != nil {
		return err
	}

	r.cache.Delete(cacheKey("txtype", tt.Name))
	return nil
}
