package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/facturehq/facture/internal/plan/domain"
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
	log   *zap.Logger
	genID *snowflake.Node
	repo  repository.Repository[domain.Plan]
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("plan.service"),
		genID: p.GenID,
		repo:  repository.ProvideStore[domain.Plan](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePlanRequest) (domain.Plan, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Plan{}, domain.ErrInvalidName
	}

	period := strings.TrimSpace(req.BillingPeriod)
	if period == "" {
		period = "monthly"
	}

	now := time.Now().UTC()
	plan := domain.Plan{
		ID:            s.genID.Generate(),
		Name:          name,
		Price:         req.Price,
		BillingPeriod: period,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, &plan); err != nil {
		return domain.Plan{}, err
	}
	return plan, nil
}

func (s *Service) List(ctx context.Context) (domain.ListPlanResponse, error) {
	items, err := s.repo.Find(ctx, &domain.Plan{}, option.WithOrder("created_at desc, id desc"))
	if err != nil {
		return domain.ListPlanResponse{}, err
	}

	plans := make([]domain.Plan, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		plans = append(plans, *item)
	}
	return domain.ListPlanResponse{Plans: plans}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Plan, error) {
	planID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || planID == 0 {
		return domain.Plan{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindOne(ctx, &domain.Plan{ID: planID})
	if err != nil {
		return domain.Plan{}, err
	}
	if item == nil {
		return domain.Plan{}, domain.ErrNotFound
	}
	return *item, nil
}
