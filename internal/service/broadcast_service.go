package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/predict_admin_server/config"
	"github.com/qs3c/predict_admin_server/internal/repository"
)

// 每日摘要主题，按此顺序执行
const (
	TopicStatus      = "status"
	TopicPricing     = "pricing"
	TopicDiscounts   = "discounts"
	TopicMaintenance = "maintenance"
)

var TopicOrder = []string{TopicStatus, TopicPricing, TopicDiscounts, TopicMaintenance}

// AllOperationalText 没有应用处于维护时的状态摘要
const AllOperationalText = "Tous les services sont opérationnels."

const (
	defaultBroadcastDelay = 2 * time.Second
	maintenanceWindow     = 24 * time.Hour
)

// JobReport 一次任务的结果，每个主题一行
type JobReport struct {
	Lines  []string
	Posted int
}

func (r *JobReport) Message() string {
	return strings.Join(r.Lines, "\n")
}

func (r *JobReport) add(format string, args ...interface{}) {
	r.Lines = append(r.Lines, fmt.Sprintf(format, args...))
}

// BroadcastService 定时广播：查询数据 -> 摘要 -> 生成 -> 发布
type BroadcastService struct {
	appRepo     *repository.ApplicationRepository
	planRepo    *repository.PlanRepository
	discounts   *DiscountService
	maintenance *MaintenanceService
	content     *ContentService
	delay       time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
	log         *zap.Logger
}

func NewBroadcastService(
	appRepo *repository.ApplicationRepository,
	planRepo *repository.PlanRepository,
	discounts *DiscountService,
	maintenance *MaintenanceService,
	content *ContentService,
	cfg *config.Config,
	log *zap.Logger,
) *BroadcastService {
	delay := time.Duration(cfg.Broadcast.DelaySeconds) * time.Second
	if delay < 0 {
		delay = defaultBroadcastDelay
	}
	return &BroadcastService{
		appRepo:     appRepo,
		planRepo:    planRepo,
		discounts:   discounts,
		maintenance: maintenance,
		content:     content,
		delay:       delay,
		sleep:       sleepCtx,
		log:         orNop(log),
	}
}

// ParseTopics 解析 "status,pricing" 形式的参数
func ParseTopics(values ...string) []string {
	var topics []string
	for _, v := range values {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				topics = append(topics, t)
			}
		}
	}
	return topics
}

// RunDailySummary 按固定顺序处理请求的主题，每个不同的主题恰好产生一行结果。
// 单个主题失败不影响其他主题；只有配置缺失或 ctx 取消才返回错误
func (s *BroadcastService) RunDailySummary(ctx context.Context, topics []string) (*JobReport, error) {
	if err := s.content.CheckBroadcastConfig(); err != nil {
		return nil, err
	}

	known, unknown := planTopics(topics)
	report := &JobReport{}

	for i, topic := range known {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		posted, err := s.runTopic(ctx, topic, report)
		if err != nil {
			s.log.Error("daily summary topic failed", zap.String("topic", topic), zap.Error(err))
			report.add("%s: erreur - %s", topic, err.Error())
			continue
		}

		// 发帖后等待，避免触发频道限流
		if posted && i < len(known)-1 && s.delay > 0 {
			if err := s.sleep(ctx, s.delay); err != nil {
				return report, err
			}
		}
	}

	for _, topic := range unknown {
		report.add("%s: type de contenu inconnu", topic)
	}

	s.log.Info("daily summary finished",
		zap.Strings("topics", known),
		zap.Int("posted", report.Posted),
		zap.Int("lines", len(report.Lines)),
	)
	return report, nil
}

// RunCommunityPost 生成并发布一条社区帖子
func (s *BroadcastService) RunCommunityPost(ctx context.Context, theme string) (*JobReport, error) {
	if err := s.content.CheckBroadcastConfig(); err != nil {
		return nil, err
	}

	generated, err := s.content.GenerateCommunityPost(ctx, theme)
	if err != nil {
		return nil, err
	}
	published, err := s.content.PublishToTelegram(ctx, generated.Text, "", false)
	if err != nil {
		return nil, err
	}

	report := &JobReport{Posted: 1}
	report.add("community: post publié (message %d)", published.MessageID)
	return report, nil
}

func (s *BroadcastService) runTopic(ctx context.Context, topic string, report *JobReport) (bool, error) {
	digest, err := s.Digest(topic)
	if err != nil {
		return false, err
	}
	if digest == "" {
		report.add("%s: aucune donnée, aucun post généré", topic)
		return false, nil
	}

	decision, err := s.content.GenerateDailySummaryPost(ctx, topic, digest)
	if err != nil {
		return false, err
	}
	if !decision.Post {
		report.add("%s: aucun post généré (NO_POST)", topic)
		return false, nil
	}

	published, err := s.content.PublishToTelegram(ctx, decision.Text, "", false)
	if err != nil {
		return false, err
	}

	report.Posted++
	report.add("%s: post publié (message %d)", topic, published.MessageID)
	return true, nil
}

// Digest 主题的纯文本数据摘要，空字符串表示没有数据
func (s *BroadcastService) Digest(topic string) (string, error) {
	switch topic {
	case TopicStatus:
		return s.statusDigest()
	case TopicPricing:
		return s.pricingDigest()
	case TopicDiscounts:
		return s.discountDigest()
	case TopicMaintenance:
		return s.maintenanceDigest()
	default:
		return "", fmt.Errorf("unknown topic %q", topic)
	}
}

func (s *BroadcastService) statusDigest() (string, error) {
	apps, err := s.appRepo.ListInMaintenance()
	if err != nil {
		return "", err
	}
	if len(apps) == 0 {
		return AllOperationalText, nil
	}

	lines := make([]string, 0, len(apps))
	for _, app := range apps {
		line := fmt.Sprintf("- %s (%s) : en maintenance", app.Name, app.Type)
		if app.MaintenanceConfig != nil && app.MaintenanceConfig.Message != "" {
			line += ". Message : " + app.MaintenanceConfig.Message
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

func (s *BroadcastService) pricingDigest() (string, error) {
	plans, err := s.planRepo.List()
	if err != nil {
		return "", err
	}
	if len(plans) == 0 {
		return "", nil
	}

	apps, err := s.appRepo.List()
	if err != nil {
		return "", err
	}
	names := make(map[string]string, len(apps))
	for _, app := range apps {
		names[app.ID] = app.Name
	}

	lines := make([]string, 0, len(plans))
	for _, plan := range plans {
		name, ok := names[plan.AppID]
		if !ok {
			name = plan.AppID
		}
		lines = append(lines, "- "+FormatPlanLine(name, plan))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *BroadcastService) discountDigest() (string, error) {
	codes, err := s.discounts.ListActive()
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(codes))
	for _, code := range codes {
		lines = append(lines, "- "+FormatDiscountLine(code))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *BroadcastService) maintenanceDigest() (string, error) {
	events, err := s.maintenance.ListRecentOrOpen(maintenanceWindow)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(events))
	for _, event := range events {
		lines = append(lines, "- "+FormatEventLine(event))
	}
	return strings.Join(lines, "\n"), nil
}

// planTopics 规范化请求：已知主题按固定顺序去重，未知主题保留请求顺序去重；
// 请求为空（或只有空白）时返回全部主题
func planTopics(requested []string) (known, unknown []string) {
	if len(requested) == 0 {
		return append([]string(nil), TopicOrder...), nil
	}

	wanted := make(map[string]bool, len(requested))
	seenUnknown := make(map[string]bool)
	for _, t := range requested {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if isTopic(t) {
			wanted[t] = true
			continue
		}
		if !seenUnknown[t] {
			seenUnknown[t] = true
			unknown = append(unknown, t)
		}
	}

	for _, t := range TopicOrder {
		if wanted[t] {
			known = append(known, t)
		}
	}
	if len(known) == 0 && len(unknown) == 0 {
		return append([]string(nil), TopicOrder...), nil
	}
	return known, unknown
}

func isTopic(t string) bool {
	for _, known := range TopicOrder {
		if t == known {
			return true
		}
	}
	return false
}

func topicLabel(topic string) string {
	switch topic {
	case TopicStatus:
		return "état des services"
	case TopicPricing:
		return "offres et tarifs"
	case TopicDiscounts:
		return "codes promo en cours"
	case TopicMaintenance:
		return "maintenances récentes"
	default:
		return topic
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
