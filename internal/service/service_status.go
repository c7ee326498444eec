package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/MKhiriev/go-pos-offline/models"
)

type statusService struct {
	queue        QueueService
	cache        CacheService
	sync         SyncService
	lifecycle    LifecycleService
	connectivity ConnectivityService
	appInfo      AppInfoService
}

func NewStatusService(
	queue QueueService,
	cache CacheService,
	sync SyncService,
	lifecycle LifecycleService,
	connectivity ConnectivityService,
	appInfo AppInfoService,
) StatusService {
	return &statusService{
		queue:        queue,
		cache:        cache,
		sync:         sync,
		lifecycle:    lifecycle,
		connectivity: connectivity,
		appInfo:      appInfo,
	}
}

func (s *statusService) Status(ctx context.Context) (models.GatewayStatus, error) {
	stats, err := s.queue.Stats(ctx)
	if err != nil {
		return models.GatewayStatus{}, fmt.Errorf("status: %w", err)
	}

	partitions, err := s.cache.ListPartitions(ctx)
	if err != nil {
		return models.GatewayStatus{}, fmt.Errorf("status: %w", err)
	}
	sort.Strings(partitions)

	return models.GatewayStatus{
		Online:           s.connectivity.Online(),
		ActiveGeneration: s.lifecycle.Active(),
		Partitions:       partitions,
		Queue:            stats,
		Sync:             s.sync.State(),
		Version:          s.appInfo.GetAppVersion(ctx),
	}, nil
}
