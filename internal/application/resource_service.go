package application

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/resource"
	"github.com/sanosuguru/nomado-booking-ledger/internal/pkg/logger"
)

type ResourceService struct {
	resourceRepo resource.Repository
	cache        AvailabilityCache
	cacheTTL     time.Duration
	recorder     Recorder
}

// NewResourceService は ResourceService を作成する
// cache が nil の場合は常にDBから空き在庫数を取得する
func NewResourceService(rr resource.Repository, cache AvailabilityCache, cacheTTL time.Duration, recorder Recorder) *ResourceService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &ResourceService{resourceRepo: rr, cache: cache, cacheTTL: cacheTTL, recorder: recorder}
}

type CreateResourceInput struct {
	Kind          resource.Kind
	Name          string
	City          string
	TransportType resource.TransportType
	UnitPrice     decimal.Decimal
	TotalCapacity int
}

func (s *ResourceService) CreateResource(ctx context.Context, input CreateResourceInput) (*resource.Resource, error) {
	r := resource.NewResource(input.Kind, input.Name, input.City, input.TransportType, input.UnitPrice, input.TotalCapacity)
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("バリデーションエラー: %w", err)
	}
	if err := s.resourceRepo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("リソース作成に失敗しました: %w", err)
	}
	logger.Info("リソースを作成しました",
		zap.String("resource_id", r.ID),
		zap.String("kind", string(r.Kind)),
		zap.Int("total_capacity", r.TotalCapacity),
	)
	return r, nil
}

func (s *ResourceService) GetResource(ctx context.Context, id string) (*resource.Resource, error) {
	return s.resourceRepo.GetByID(ctx, id)
}

func (s *ResourceService) ListResources(ctx context.Context, kind resource.Kind, limit, offset int) ([]*resource.Resource, error) {
	if kind != "" && kind != resource.KindHotel && kind != resource.KindRoute {
		return nil, resource.ErrInvalidKind
	}
	limit, offset = normalizePage(limit, offset)
	return s.resourceRepo.List(ctx, kind, limit, offset)
}

// CountAvailable は空き在庫数を返す（表示用、キャッシュ優先）
func (s *ResourceService) CountAvailable(ctx context.Context, id string) (int, error) {
	if s.cache != nil {
		count, err := s.cache.GetAvailable(ctx, id)
		if err == nil {
			s.recorder.ObserveCache(true)
			return count, nil
		}
		s.recorder.ObserveCache(false)
	}

	count, err := s.resourceRepo.CountAvailable(ctx, id)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.SetAvailable(ctx, id, count, s.cacheTTL); err != nil {
			logger.Warn("空き在庫キャッシュの保存に失敗",
				zap.String("resource_id", id),
				zap.Error(err),
			)
		}
	}
	return count, nil
}
