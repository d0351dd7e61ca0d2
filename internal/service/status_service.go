package service

import (
	"errors"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"github.com/qs3c/predict_admin_server/config"
	"github.com/qs3c/predict_admin_server/internal/model"
	"github.com/qs3c/predict_admin_server/internal/model/dto"
	"github.com/qs3c/predict_admin_server/internal/repository"
)

// 某一天的状态
const (
	StateOperational = "operational"
	StateMaintenance = "maintenance"
	StatePartial     = "partial"
	StateUnknown     = "unknown"
)

const (
	timelineDays     = 30
	publicStatusKey  = "public_status"
	defaultStatusTTL = 60 * time.Second
)

// StatusForDay 计算 day 所在 UTC 自然日的状态。
// history 不要求有序；结果只依赖入参，重复调用结果一致
func StatusForDay(day time.Time, history []*model.AppStatusHistory, current bool, now time.Time) string {
	day = day.UTC()
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	if start.After(now) {
		return StateUnknown
	}

	if len(history) == 0 {
		if current {
			return StateMaintenance
		}
		return StateOperational
	}

	entries := make([]*model.AppStatusHistory, len(history))
	copy(entries, history)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})

	if !end.After(entries[0].Timestamp) {
		return StateUnknown
	}

	var sawOn, sawOff bool
	mark := func(status bool) {
		if status {
			sawOn = true
		} else {
			sawOff = true
		}
	}

	// 当天开始时生效的状态：start 之前（含）的最后一条
	var atStart *model.AppStatusHistory
	for _, e := range entries {
		if e.Timestamp.After(start) {
			break
		}
		atStart = e
	}
	if atStart != nil {
		mark(atStart.Status)
	}

	for _, e := range entries {
		if e.Timestamp.After(start) && e.Timestamp.Before(end) {
			mark(e.Status)
		}
	}

	switch {
	case sawOn && sawOff:
		return StatePartial
	case sawOn:
		return StateMaintenance
	default:
		return StateOperational
	}
}

// StatusService 公开状态页
type StatusService struct {
	appRepo     *repository.ApplicationRepository
	historyRepo *repository.StatusHistoryRepository
	cache       *cache.Cache
	now         func() time.Time
}

func NewStatusService(
	appRepo *repository.ApplicationRepository,
	historyRepo *repository.StatusHistoryRepository,
	cfg *config.Config,
) *StatusService {
	ttl := defaultStatusTTL
	if cfg.Cache.StatusTTLSeconds > 0 {
		ttl = time.Duration(cfg.Cache.StatusTTLSeconds) * time.Second
	}
	return &StatusService{
		appRepo:     appRepo,
		historyRepo: historyRepo,
		cache:       cache.New(ttl, 2*ttl),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// PublicStatus 所有应用的当前状态与 30 天时间线，结果按 TTL 缓存
func (s *StatusService) PublicStatus() (*dto.PublicStatusResponse, error) {
	if cached, ok := s.cache.Get(publicStatusKey); ok {
		return cached.(*dto.PublicStatusResponse), nil
	}

	apps, err := s.appRepo.List()
	if err != nil {
		return nil, err
	}
	grouped, err := s.historyRepo.ListGroupedByApp()
	if err != nil {
		return nil, err
	}

	now := s.now()
	resp := &dto.PublicStatusResponse{
		Operational: true,
		UpdatedAt:   now.Format(time.RFC3339),
		Apps:        make([]*dto.AppStatus, 0, len(apps)),
	}

	for _, app := range apps {
		timeline := Timeline(grouped[app.ID], app.Status, now, timelineDays)
		state := StateOperational
		if app.Status {
			state = StateMaintenance
			resp.Operational = false
		}
		resp.Apps = append(resp.Apps, &dto.AppStatus{
			ID:          app.ID,
			Name:        app.Name,
			URL:         app.URL,
			Type:        app.Type,
			Maintenance: app.Status,
			State:       state,
			Timeline:    timeline,
		})
	}

	s.cache.SetDefault(publicStatusKey, resp)
	return resp, nil
}

// Timeline 从最早一天到今天
func Timeline(history []*model.AppStatusHistory, current bool, now time.Time, days int) []*dto.DayStatus {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	timeline := make([]*dto.DayStatus, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		timeline = append(timeline, &dto.DayStatus{
			Date:  day.Format("2006-01-02"),
			State: StatusForDay(day, history, current, now),
		})
	}
	return timeline
}

// MaintenanceMessage 应用维护提示；设置了目标用户时只对这些用户展示
func (s *StatusService) MaintenanceMessage(appID, userID string) (*dto.MaintenanceMessageResponse, error) {
	app, err := s.appRepo.GetByID(appID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}

	resp := &dto.MaintenanceMessageResponse{
		AppID:   app.ID,
		AppName: app.Name,
	}
	if !app.Status {
		return resp, nil
	}

	cfg := app.MaintenanceConfig
	if cfg != nil && len(cfg.TargetUsers) > 0 && !containsString(cfg.TargetUsers, userID) {
		return resp, nil
	}

	resp.Maintenance = true
	if cfg != nil {
		resp.Message = cfg.Message
		resp.ButtonTitle = cfg.ButtonTitle
		resp.ButtonURL = cfg.ButtonURL
		resp.MediaURL = cfg.MediaURL
	}
	return resp, nil
}

func containsString(list []string, v string) bool {
	if v == "" {
		return false
	}
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
