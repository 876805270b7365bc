package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/facturehq/facture/internal/catalog/domain"
	"github.com/facturehq/facture/pkg/db/option"
	"github.com/facturehq/facture/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  repository.Repository[domain.Item]
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		repo:  repository.ProvideStore[domain.Item](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateItemRequest) (domain.Item, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Item{}, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	item := domain.Item{
		ID:        s.genID.Generate(),
		Name:      name,
		UnitPrice: req.UnitPrice,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, &item); err != nil {
		return domain.Item{}, err
	}
	return item, nil
}

func (s *Service) List(ctx context.Context) (domain.ListItemResponse, error) {
	items, err := s.repo.Find(ctx, &domain.Item{}, option.WithOrder("created_at desc, id desc"))
	if err != nil {
		return domain.ListItemResponse{}, err
	}

	result := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		result = append(result, *item)
	}
	return domain.ListItemResponse{Items: result}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Item, error) {
	itemID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || itemID == 0 {
		return domain.Item{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindOne(ctx, &domain.Item{ID: itemID})
	if err != nil {
		return domain.Item{}, err
	}
	if item == nil {
		return domain.Item{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) ListByIDs(ctx context.Context, ids []snowflake.ID) ([]domain.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []domain.Item
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
