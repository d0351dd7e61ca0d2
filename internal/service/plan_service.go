package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/predict_admin_server/internal/model"
	"github.com/qs3c/predict_admin_server/internal/model/dto"
	"github.com/qs3c/predict_admin_server/internal/pkg/pubsub"
	"github.com/qs3c/predict_admin_server/internal/repository"
)

var ErrPlanNotFound = errors.New("套餐不存在")

// SplitFeatures 按行拆分，去掉首尾空白与空行，保持顺序
func SplitFeatures(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	features := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			features = append(features, line)
		}
	}
	return features
}

// JoinFeatures SplitFeatures 的逆操作
func JoinFeatures(features []string) string {
	return strings.Join(features, "\n")
}

type PlanService struct {
	planRepo  *repository.PlanRepository
	appRepo   *repository.ApplicationRepository
	publisher *pubsub.Publisher
	log       *zap.Logger
}

func NewPlanService(
	planRepo *repository.PlanRepository,
	appRepo *repository.ApplicationRepository,
	publisher *pubsub.Publisher,
	log *zap.Logger,
) *PlanService {
	return &PlanService{
		planRepo:  planRepo,
		appRepo:   appRepo,
		publisher: publisher,
		log:       orNop(log),
	}
}

// ListByApp 应用下的套餐，按价格升序
func (s *PlanService) ListByApp(appID string) ([]*dto.PlanResponse, error) {
	if _, err := s.appRepo.GetByID(appID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}

	plans, err := s.planRepo.ListByApp(appID)
	if err != nil {
		return nil, err
	}

	resp := make([]*dto.PlanResponse, 0, len(plans))
	for _, p := range plans {
		resp = append(resp, buildPlanResponse(p))
	}
	return resp, nil
}

func (s *PlanService) Get(id string) (*model.PricingPlan, error) {
	plan, err := s.planRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// Create 套餐必须属于一个已存在的应用
func (s *PlanService) Create(ctx context.Context, appID string, req *dto.PlanRequest) (*dto.PlanResponse, error) {
	if _, err := s.appRepo.GetByID(appID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}

	plan := &model.PricingPlan{AppID: appID}
	applyPlanRequest(plan, req)

	if err := s.planRepo.Create(plan); err != nil {
		return nil, err
	}

	publishChange(ctx, s.publisher, s.log, pubsub.CollectionPlans, pubsub.OpCreate, plan.ID)
	return buildPlanResponse(plan), nil
}

func (s *PlanService) Update(ctx context.Context, id string, req *dto.PlanRequest) (*dto.PlanResponse, error) {
	plan, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	applyPlanRequest(plan, req)
	if err := s.planRepo.Update(plan); err != nil {
		return nil, err
	}

	publishChange(ctx, s.publisher, s.log, pubsub.CollectionPlans, pubsub.OpUpdate, plan.ID)
	return buildPlanResponse(plan), nil
}

func (s *PlanService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.planRepo.Delete(id); err != nil {
		return err
	}

	publishChange(ctx, s.publisher, s.log, pubsub.CollectionPlans, pubsub.OpDelete, id)
	return nil
}

func applyPlanRequest(plan *model.PricingPlan, req *dto.PlanRequest) {
	plan.Name = strings.TrimSpace(req.Name)
	plan.Price = req.Price
	plan.PromoPrice = req.PromoPrice
	plan.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	plan.Period = req.Period
	plan.Features = SplitFeatures(req.FeaturesText)
	plan.MissingFeatures = SplitFeatures(req.MissingFeaturesText)
	plan.Popular = req.Popular
}

func buildPlanResponse(p *model.PricingPlan) *dto.PlanResponse {
	features := []string(p.Features)
	if features == nil {
		features = []string{}
	}
	missing := []string(p.MissingFeatures)
	if missing == nil {
		missing = []string{}
	}
	return &dto.PlanResponse{
		ID:                  p.ID,
		AppID:               p.AppID,
		Name:                p.Name,
		Price:               p.Price,
		PromoPrice:          p.PromoPrice,
		Currency:            p.Currency,
		Period:              p.Period,
		Features:            features,
		MissingFeatures:     missing,
		FeaturesText:        JoinFeatures(features),
		MissingFeaturesText: JoinFeatures(missing),
		Popular:             p.Popular,
	}
}
