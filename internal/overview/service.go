// Package overview は商品コレクションから導出される統計の計算を提供する。
package overview

import (
	"context"
	"fmt"

	"github.com/hitoshi/storeman/internal/model"
)

// StatsSource は統計計算に必要な射影の取得インターフェース。
// repository.ProductRepositoryの部分集合として定義する。
type StatsSource interface {
	StatsProjection(ctx context.Context) ([]model.ProductStats, error)
}

// Service は商品統計の計算を提供する。
// キャッシュや差分更新は行わず、リクエストごとに全件を畳み込む。
type Service struct {
	source StatsSource
}

// NewService はServiceを生成する。
func NewService(source StatsSource) *Service {
	return &Service{source: source}
}

// Overview は商品コレクション全体の統計を計算して返す。
//   - TotalProducts: 全商品数
//   - ActiveProducts: status=activeの商品数
//   - TotalImages: 画像URL数の合計（imagesが配列でない商品は0件として扱う）
//   - LastUpdated: updated_atの最大値。商品が存在しない場合はnil。
func (s *Service) Overview(ctx context.Context) (*model.Overview, error) {
	stats, err := s.source.StatsProjection(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load product stats: %w", err)
	}

	result := &model.Overview{}
	for _, row := range stats {
		result.TotalProducts++
		if row.Status != nil && *row.Status == model.ProductStatusActive {
			result.ActiveProducts++
		}
		result.TotalImages += len(row.Images)

		if result.LastUpdated == nil || row.UpdatedAt.After(*result.LastUpdated) {
			updated := row.UpdatedAt
			result.LastUpdated = &updated
		}
	}

	return result, nil
}
