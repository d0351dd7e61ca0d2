package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/predict_admin_server/internal/model"
	"github.com/qs3c/predict_admin_server/internal/model/dto"
	"github.com/qs3c/predict_admin_server/internal/pkg/pubsub"
	"github.com/qs3c/predict_admin_server/internal/repository"
)

var (
	ErrUserNotFound  = errors.New("用户不存在")
	ErrPlanMismatch  = errors.New("套餐不属于该产品")
	ErrInvalidAmount = errors.New("金额不能为 0")
)

type UserService struct {
	userRepo  *repository.UserRepository
	planRepo  *repository.PlanRepository
	publisher *pubsub.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewUserService(
	userRepo *repository.UserRepository,
	planRepo *repository.PlanRepository,
	publisher *pubsub.Publisher,
	log *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		planRepo:  planRepo,
		publisher: publisher,
		log:       orNop(log),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List 分页，search 匹配邮箱或昵称
func (s *UserService) List(page, pageSize int, search string) ([]*model.User, int64, error) {
	return s.userRepo.List(page, pageSize, strings.TrimSpace(search))
}

func (s *UserService) Get(id string) (*model.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListReferrals(userID string) ([]*model.ReferralEntry, error) {
	if _, err := s.Get(userID); err != nil {
		return nil, err
	}
	return s.userRepo.ListReferrals(userID)
}

// AddReferral 流水与余额在同一事务中写入，返回更新后的用户
func (s *UserService) AddReferral(ctx context.Context, userID string, req *dto.AddReferralRequest) (*model.User, error) {
	if req.Amount == 0 {
		return nil, ErrInvalidAmount
	}

	entry := &model.ReferralEntry{
		UserID:      userID,
		FromUserID:  req.FromUserID,
		Amount:      req.Amount,
		Description: strings.TrimSpace(req.Description),
	}

	user, err := s.userRepo.AddReferral(entry)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	publishChange(ctx, s.publisher, s.log, pubsub.CollectionUsers, pubsub.OpUpdate, userID)
	return user, nil
}

func (s *UserService) ListPricings(userID string) ([]*model.UserPricing, error) {
	if _, err := s.Get(userID); err != nil {
		return nil, err
	}
	return s.userRepo.ListPricings(userID)
}

// ActivatePricing 为用户开通某产品的套餐，到期时间按周期推算
func (s *UserService) ActivatePricing(ctx context.Context, userID string, req *dto.ActivatePricingRequest) (*model.UserPricing, error) {
	if _, err := s.Get(userID); err != nil {
		return nil, err
	}

	plan, err := s.planRepo.GetByID(req.PlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.AppID != req.ProductID {
		return nil, ErrPlanMismatch
	}

	started := s.now()
	expires := PeriodEnd(started, plan.Period)
	price := plan.Price
	if plan.PromoPrice != nil {
		price = *plan.PromoPrice
	}

	record := &model.UserPricing{
		UserID:    userID,
		ProductID: plan.AppID,
		PlanID:    plan.ID,
		PlanName:  plan.Name,
		Period:    plan.Period,
		Price:     price,
		StartedAt: started,
		ExpiresAt: expires,
	}
	if err := s.userRepo.CreatePricing(record); err != nil {
		return nil, err
	}

	publishChange(ctx, s.publisher, s.log, pubsub.CollectionUsers, pubsub.OpUpdate, userID)
	return record, nil
}

// PeriodEnd 周期结束时间，未知周期返回 nil
func PeriodEnd(start time.Time, period string) *time.Time {
	var end time.Time
	switch period {
	case model.PeriodDaily:
		end = start.AddDate(0, 0, 1)
	case model.PeriodWeekly:
		end = start.AddDate(0, 0, 7)
	case model.PeriodMonthly:
		end = start.AddDate(0, 1, 0)
	case model.PeriodAnnual:
		end = start.AddDate(1, 0, 0)
	default:
		return nil
	}
	return &end
}
