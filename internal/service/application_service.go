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

var ErrApplicationNotFound = errors.New("应用不存在")

type ApplicationService struct {
	appRepo     *repository.ApplicationRepository
	historyRepo *repository.StatusHistoryRepository
	content     *ContentService
	publisher   *pubsub.Publisher
	log         *zap.Logger
	now         func() time.Time
}

// NewApplicationService content 为 nil 时忽略 announce
func NewApplicationService(
	appRepo *repository.ApplicationRepository,
	historyRepo *repository.StatusHistoryRepository,
	content *ContentService,
	publisher *pubsub.Publisher,
	log *zap.Logger,
) *ApplicationService {
	return &ApplicationService{
		appRepo:     appRepo,
		historyRepo: historyRepo,
		content:     content,
		publisher:   publisher,
		log:         orNop(log),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *ApplicationService) List() ([]*model.Application, error) {
	return s.appRepo.List()
}

func (s *ApplicationService) Get(id string) (*model.Application, error) {
	app, err := s.appRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return app, nil
}

// Create 新应用默认正常运行，并写入第一条状态记录
func (s *ApplicationService) Create(ctx context.Context, req *dto.CreateApplicationRequest) (*model.Application, error) {
	app := &model.Application{
		Name:              strings.TrimSpace(req.Name),
		URL:               req.URL,
		Type:              req.Type,
		MaintenanceConfig: toMaintenanceConfig(req.MaintenanceConfig),
	}
	if err := s.appRepo.Create(app); err != nil {
		return nil, err
	}

	if err := s.historyRepo.Create(&model.AppStatusHistory{AppID: app.ID, Status: false, Timestamp: s.now()}); err != nil {
		s.log.Warn("create initial status history failed", zap.String("app_id", app.ID), zap.Error(err))
	}

	publishChange(ctx, s.publisher, s.log, pubsub.CollectionApplications, pubsub.OpCreate, app.ID)
	return app, nil
}

func (s *ApplicationService) Update(ctx context.Context, id string, req *dto.UpdateApplicationRequest) (*model.Application, error) {
	app, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		app.Name = strings.TrimSpace(*req.Name)
	}
	if req.URL != nil {
		app.URL = *req.URL
	}
	if req.Type != nil {
		app.Type = *req.Type
	}
	if req.MaintenanceConfig != nil {
		app.MaintenanceConfig = toMaintenanceConfig(req.MaintenanceConfig)
	}

	if err := s.appRepo.Update(app); err != nil {
		return nil, err
	}

	publishChange(ctx, s.publisher, s.log, pubsub.CollectionApplications, pubsub.OpUpdate, app.ID)
	return app, nil
}

// Delete 连同状态历史与套餐一起删除
func (s *ApplicationService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.appRepo.Delete(id); err != nil {
		return err
	}

	publishChange(ctx, s.publisher, s.log, pubsub.CollectionApplications, pubsub.OpDelete, id)
	return nil
}

// History 状态历史，按时间升序
func (s *ApplicationService) History(id string) ([]*model.AppStatusHistory, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	return s.historyRepo.ListByApp(id)
}

// UpdateStatus 切换维护状态。状态变化时追加一条历史记录，
// 时间戳不早于上一条；announce 时生成公告并发布到频道，公告失败不回滚状态
func (s *ApplicationService) UpdateStatus(ctx context.Context, id string, req *dto.UpdateStatusRequest) (*dto.UpdateStatusResponse, error) {
	app, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if req.MaintenanceConfig != nil {
		app.MaintenanceConfig = toMaintenanceConfig(req.MaintenanceConfig)
	}

	ts := s.now()
	changed := app.Status != *req.Status
	app.Status = *req.Status

	if changed {
		latest, err := s.historyRepo.Latest(app.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if latest != nil && ts.Before(latest.Timestamp) {
			ts = latest.Timestamp
		}
		entry := &model.AppStatusHistory{AppID: app.ID, Status: app.Status, Timestamp: ts}
		if err := s.appRepo.UpdateStatus(app, entry); err != nil {
			return nil, err
		}
	} else if err := s.appRepo.Update(app); err != nil {
		return nil, err
	}

	s.log.Info("application status updated",
		zap.String("app_id", app.ID),
		zap.Bool("maintenance", app.Status),
		zap.Bool("changed", changed),
	)
	publishChange(ctx, s.publisher, s.log, pubsub.CollectionApplications, pubsub.OpUpdate, app.ID)

	resp := &dto.UpdateStatusResponse{
		Status:    app.Status,
		Timestamp: ts.Format(time.RFC3339Nano),
	}

	if req.Announce && s.content != nil {
		if err := s.announce(ctx, app); err != nil {
			s.log.Error("status announcement failed", zap.String("app_id", app.ID), zap.Error(err))
			resp.AnnouncementError = err.Error()
		} else {
			resp.Announced = true
		}
	}
	return resp, nil
}

func (s *ApplicationService) announce(ctx context.Context, app *model.Application) error {
	result, err := s.content.GenerateStatusAnnouncement(ctx, app)
	if err != nil {
		return err
	}
	_, err = s.content.PublishToTelegram(ctx, result.Text, result.ImageURL, false)
	return err
}

func toMaintenanceConfig(in *dto.MaintenanceConfigInput) *model.MaintenanceConfig {
	if in == nil {
		return nil
	}
	return &model.MaintenanceConfig{
		Message:     strings.TrimSpace(in.Message),
		ButtonTitle: in.ButtonTitle,
		ButtonURL:   in.ButtonURL,
		MediaURL:    in.MediaURL,
		TargetUsers: in.TargetUsers,
	}
}
