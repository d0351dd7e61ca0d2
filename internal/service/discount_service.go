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

// 折扣码推导状态
const (
	DiscountActive    = "active"
	DiscountExpired   = "expired"
	DiscountScheduled = "scheduled"
	DiscountUnknown   = "unknown"
)

var (
	ErrDiscountNotFound   = errors.New("折扣码不存在")
	ErrDiscountCodeExists = errors.New("折扣码已存在")
	ErrInvalidValidity    = errors.New("结束时间不能早于开始时间")
)

// DiscountStatus 仅由 now 与有效期决定：debut <= now <= fin 时为 active
func DiscountStatus(code *model.DiscountCode, now time.Time) string {
	if code.DebutDate.IsZero() || code.FinDate.IsZero() || code.FinDate.Before(code.DebutDate) {
		return DiscountUnknown
	}
	switch {
	case now.Before(code.DebutDate):
		return DiscountScheduled
	case now.After(code.FinDate):
		return DiscountExpired
	default:
		return DiscountActive
	}
}

// NormalizeCode 折扣码统一大写
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type DiscountService struct {
	repo      *repository.DiscountRepository
	publisher *pubsub.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewDiscountService(repo *repository.DiscountRepository, publisher *pubsub.Publisher, log *zap.Logger) *DiscountService {
	return &DiscountService{
		repo:      repo,
		publisher: publisher,
		log:       orNop(log),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List 附带推导状态
func (s *DiscountService) List() ([]*dto.DiscountResponse, error) {
	codes, err := s.repo.List()
	if err != nil {
		return nil, err
	}

	now := s.now()
	resp := make([]*dto.DiscountResponse, 0, len(codes))
	for _, c := range codes {
		resp = append(resp, buildDiscountResponse(c, now))
	}
	return resp, nil
}

// ListActive 当前有效的折扣码
func (s *DiscountService) ListActive() ([]*model.DiscountCode, error) {
	codes, err := s.repo.List()
	if err != nil {
		return nil, err
	}

	now := s.now()
	active := make([]*model.DiscountCode, 0, len(codes))
	for _, c := range codes {
		if DiscountStatus(c, now) == DiscountActive {
			active = append(active, c)
		}
	}
	return active, nil
}

func (s *DiscountService) Get(id string) (*model.DiscountCode, error) {
	code, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDiscountNotFound
		}
		return nil, err
	}
	return code, nil
}

func (s *DiscountService) Create(ctx context.Context, req *dto.DiscountRequest) (*dto.DiscountResponse, error) {
	code := &model.DiscountCode{}
	if err := s.apply(code, req); err != nil {
		return nil, err
	}

	if err := s.repo.Create(code); err != nil {
		return nil, err
	}

	publishChange(ctx, s.publisher, s.log, pubsub.CollectionDiscountCodes, pubsub.OpCreate, code.ID)
	return buildDiscountResponse(code, s.now()), nil
}

func (s *DiscountService) Update(ctx context.Context, id string, req *dto.DiscountRequest) (*dto.DiscountResponse, error) {
	code, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(code, req); err != nil {
		return nil, err
	}

	if err := s.repo.Update(code); err != nil {
		return nil, err
	}

	publishChange(ctx, s.publisher, s.log, pubsub.CollectionDiscountCodes, pubsub.OpUpdate, code.ID)
	return buildDiscountResponse(code, s.now()), nil
}

func (s *DiscountService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}

	publishChange(ctx, s.publisher, s.log, pubsub.CollectionDiscountCodes, pubsub.OpDelete, id)
	return nil
}

// Validate 公开站点校验折扣码是否可用于某用户与套餐
func (s *DiscountService) Validate(req *dto.ValidateDiscountRequest) (*dto.ValidateDiscountResponse, error) {
	normalized := NormalizeCode(req.Code)
	resp := &dto.ValidateDiscountResponse{Code: normalized}

	code, err := s.repo.GetByCode(normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			resp.Reason = "Code inconnu"
			return resp, nil
		}
		return nil, err
	}

	switch DiscountStatus(code, s.now()) {
	case DiscountScheduled:
		resp.Reason = "Code pas encore actif"
		return resp, nil
	case DiscountExpired:
		resp.Reason = "Code expiré"
		return resp, nil
	case DiscountUnknown:
		resp.Reason = "Code invalide"
		return resp, nil
	}

	if !code.Tous && !containsString(code.People, req.UserID) {
		resp.Reason = "Code non valable pour cet utilisateur"
		return resp, nil
	}
	if code.Plan != "" && !strings.EqualFold(code.Plan, req.Plan) {
		resp.Reason = "Code non valable pour ce plan"
		return resp, nil
	}

	resp.Valid = true
	resp.Pourcentage = code.Pourcentage
	return resp, nil
}

func (s *DiscountService) apply(code *model.DiscountCode, req *dto.DiscountRequest) error {
	if req.FinDate.Before(req.DebutDate) {
		return ErrInvalidValidity
	}

	normalized := NormalizeCode(req.Code)
	exists, err := s.repo.ExistsByCode(normalized, code.ID)
	if err != nil {
		return err
	}
	if exists {
		return ErrDiscountCodeExists
	}

	code.Titre = strings.TrimSpace(req.Titre)
	code.Code = normalized
	code.Pourcentage = req.Pourcentage
	code.DebutDate = req.DebutDate.UTC()
	code.FinDate = req.FinDate.UTC()
	code.Tous = req.Tous
	code.Plan = strings.TrimSpace(req.Plan)
	code.People = req.People
	code.ImageURL = req.ImageURL
	if code.Tous {
		code.People = nil
	}
	return nil
}

func buildDiscountResponse(c *model.DiscountCode, now time.Time) *dto.DiscountResponse {
	return &dto.DiscountResponse{
		ID:          c.ID,
		Titre:       c.Titre,
		Code:        c.Code,
		Pourcentage: c.Pourcentage,
		DebutDate:   c.DebutDate,
		FinDate:     c.FinDate,
		Tous:        c.Tous,
		Plan:        c.Plan,
		People:      c.People,
		ImageURL:    c.ImageURL,
		Status:      DiscountStatus(c, now),
	}
}
