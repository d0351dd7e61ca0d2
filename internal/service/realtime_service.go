package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/predict_admin_server/internal/pkg/pubsub"
	"github.com/qs3c/predict_admin_server/internal/pkg/ws"
	"github.com/qs3c/predict_admin_server/internal/repository"
)

var ErrUnknownCollection = errors.New("未知的集合")

// Snapshot 某个集合在某一时刻的完整内容
type Snapshot struct {
	Collection string      `json:"collection"`
	Items      interface{} `json:"items"`
	Count      int         `json:"count"`
	At         time.Time   `json:"at"`
}

type snapshotLoader func() (interface{}, int, error)

// RealtimeService Subscribe(collection) -> 快照流：先推送当前快照，之后每次变更推送新快照
type RealtimeService struct {
	subscriber *pubsub.Subscriber
	loaders    map[string]snapshotLoader
	log        *zap.Logger
}

func NewRealtimeService(
	subscriber *pubsub.Subscriber,
	appRepo *repository.ApplicationRepository,
	planRepo *repository.PlanRepository,
	discounts *DiscountService,
	eventRepo *repository.MaintenanceEventRepository,
	userRepo *repository.UserRepository,
	mediaRepo *repository.MediaRepository,
	notificationRepo *repository.NotificationRepository,
	log *zap.Logger,
) *RealtimeService {
	loaders := map[string]snapshotLoader{
		pubsub.CollectionApplications: func() (interface{}, int, error) {
			items, err := appRepo.List()
			return items, len(items), err
		},
		pubsub.CollectionPlans: func() (interface{}, int, error) {
			items, err := planRepo.List()
			return items, len(items), err
		},
		pubsub.CollectionDiscountCodes: func() (interface{}, int, error) {
			items, err := discounts.List()
			return items, len(items), err
		},
		pubsub.CollectionMaintenanceEvents: func() (interface{}, int, error) {
			items, err := eventRepo.List(0)
			return items, len(items), err
		},
		pubsub.CollectionUsers: func() (interface{}, int, error) {
			items, err := userRepo.ListAll()
			return items, len(items), err
		},
		pubsub.CollectionMedia: func() (interface{}, int, error) {
			items, err := mediaRepo.ListAll()
			return items, len(items), err
		},
		pubsub.CollectionNotifications: func() (interface{}, int, error) {
			items, err := notificationRepo.ListAll()
			return items, len(items), err
		},
	}

	return &RealtimeService{
		subscriber: subscriber,
		loaders:    loaders,
		log:        orNop(log),
	}
}

// Snapshot 读取集合当前内容
func (s *RealtimeService) Snapshot(collection string) (*Snapshot, error) {
	load, ok := s.loaders[collection]
	if !ok {
		return nil, ErrUnknownCollection
	}

	items, count, err := load()
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Collection: collection,
		Items:      items,
		Count:      count,
		At:         time.Now().UTC(),
	}, nil
}

// Subscribe 返回的 channel 在 ctx 取消后关闭。
// 没有 subscriber 时只推送一次当前快照
func (s *RealtimeService) Subscribe(ctx context.Context, collection string) (<-chan *Snapshot, error) {
	initial, err := s.Snapshot(collection)
	if err != nil {
		return nil, err
	}

	out := make(chan *Snapshot, 1)
	out <- initial

	go func() {
		defer close(out)

		if s.subscriber == nil {
			<-ctx.Done()
			return
		}

		err := s.subscriber.Subscribe(ctx, []string{collection}, func(event *pubsub.ChangeEvent) {
			snap, err := s.Snapshot(event.Collection)
			if err != nil {
				s.log.Warn("load snapshot failed", zap.String("collection", event.Collection), zap.Error(err))
				return
			}
			select {
			case out <- snap:
			case <-ctx.Done():
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.log.Warn("realtime subscription ended", zap.String("collection", collection), zap.Error(err))
		}
	}()

	return out, nil
}

// Bridge 把每个集合的快照流转发到 ws hub，主题即集合名，阻塞直到 ctx 取消
func (s *RealtimeService) Bridge(ctx context.Context, hub *ws.Hub) {
	done := make(chan struct{}, len(pubsub.Collections))
	for _, collection := range pubsub.Collections {
		stream, err := s.Subscribe(ctx, collection)
		if err != nil {
			s.log.Error("bridge subscribe failed", zap.String("collection", collection), zap.Error(err))
			done <- struct{}{}
			continue
		}

		go func(collection string, stream <-chan *Snapshot) {
			defer func() { done <- struct{}{} }()

			first := true
			for snap := range stream {
				// 初始快照由 ws 连接建立时单独发送
				if first {
					first = false
					continue
				}
				if !hub.HasSubscribers(collection) {
					continue
				}
				if err := hub.Broadcast(collection, &ws.Message{Type: "snapshot", Data: snap}); err != nil {
					s.log.Warn("bridge broadcast failed", zap.String("collection", collection), zap.Error(err))
				}
			}
		}(collection, stream)
	}

	for range pubsub.Collections {
		<-done
	}
}
