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
	ErrEventNotFound        = errors.New("维护事件不存在")
	ErrEventAlreadyResolved = errors.New("维护事件已解决")
)

type MaintenanceService struct {
	eventRepo *repository.MaintenanceEventRepository
	appRepo   *repository.ApplicationRepository
	publisher *pubsub.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewMaintenanceService(
	eventRepo *repository.MaintenanceEventRepository,
	appRepo *repository.ApplicationRepository,
	publisher *pubsub.Publisher,
	log *zap.Logger,
) *MaintenanceService {
	return &MaintenanceService{
		eventRepo: eventRepo,
		appRepo:   appRepo,
		publisher: publisher,
		log:       orNop(log),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List 最新的在前
func (s *MaintenanceService) List(limit int) ([]*model.MaintenanceEvent, error) {
	return s.eventRepo.List(limit)
}

// ListRecentOrOpen 最近 window 内的事件以及所有未解决事件
func (s *MaintenanceService) ListRecentOrOpen(window time.Duration) ([]*model.MaintenanceEvent, error) {
	return s.eventRepo.ListRecentOrOpen(s.now().Add(-window))
}

func (s *MaintenanceService) Get(id string) (*model.MaintenanceEvent, error) {
	event, err := s.eventRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (s *MaintenanceService) Create(ctx context.Context, req *dto.MaintenanceEventRequest) (*model.MaintenanceEvent, error) {
	event := &model.MaintenanceEvent{}
	if err := s.apply(event, req); err != nil {
		return nil, err
	}

	if err := s.eventRepo.Create(event); err != nil {
		return nil, err
	}

	publishChange(ctx, s.publisher, s.log, pubsub.CollectionMaintenanceEvents, pubsub.OpCreate, event.ID)
	return event, nil
}

func (s *MaintenanceService) Update(ctx context.Context, id string, req *dto.MaintenanceEventRequest) (*model.MaintenanceEvent, error) {
	event, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(event, req); err != nil {
		return nil, err
	}

	if err := s.eventRepo.Update(event); err != nil {
		return nil, err
	}

	publishChange(ctx, s.publisher, s.log, pubsub.CollectionMaintenanceEvents, pubsub.OpUpdate, event.ID)
	return event, nil
}

// Resolve 标记为已解决并记录解决时间
func (s *MaintenanceService) Resolve(ctx context.Context, id string) (*model.MaintenanceEvent, error) {
	event, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if event.Status == model.EventStatusResolved {
		return nil, ErrEventAlreadyResolved
	}

	now := s.now()
	event.Status = model.EventStatusResolved
	event.ResolvedAt = &now
	if err := s.eventRepo.Update(event); err != nil {
		return nil, err
	}

	publishChange(ctx, s.publisher, s.log, pubsub.CollectionMaintenanceEvents, pubsub.OpUpdate, event.ID)
	return event, nil
}

func (s *MaintenanceService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(id); err != nil {
		return err
	}

	publishChange(ctx, s.publisher, s.log, pubsub.CollectionMaintenanceEvents, pubsub.OpDelete, id)
	return nil
}

// apply 应用名从应用表冗余一份，应用删除后事件仍可展示
func (s *MaintenanceService) apply(event *model.MaintenanceEvent, req *dto.MaintenanceEventRequest) error {
	app, err := s.appRepo.GetByID(req.AppID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrApplicationNotFound
		}
		return err
	}

	event.Title = strings.TrimSpace(req.Title)
	event.Description = req.Description
	event.Date = req.Date.UTC()
	event.Status = req.Status
	event.AppID = app.ID
	event.AppName = app.Name

	switch {
	case req.ResolvedAt != nil:
		resolved := req.ResolvedAt.UTC()
		event.ResolvedAt = &resolved
	case req.Status == model.EventStatusResolved && event.ResolvedAt == nil:
		now := s.now()
		event.ResolvedAt = &now
	case req.Status != model.EventStatusResolved:
		event.ResolvedAt = nil
	}
	return nil
}
