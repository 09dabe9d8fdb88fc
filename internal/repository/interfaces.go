// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/storeman/internal/model"
)

// ProfileRepository はIdentityに紐づくプロフィールの参照インターフェース。
// このコアからは読み取り専用で、プロフィールの作成・更新は行わない。
type ProfileRepository interface {
	// FindByIdentityID はIdPのユーザーIDでプロフィールを検索する。
	// 見つからない場合はnilを返す。
	FindByIdentityID(ctx context.Context, identityID string) (*model.Profile, error)
}

// ProductRepository は商品データの永続化インターフェース。
type ProductRepository interface {
	// ListActive はstatus=activeの商品をcreated_at降順で返す。
	ListActive(ctx context.Context) ([]*model.Product, error)

	// ListAll は全商品をstatusに関わらずcreated_at降順で返す。
	ListAll(ctx context.Context) ([]*model.Product, error)

	// Create は商品を作成する。
	Create(ctx context.Context, product *model.Product) error

	// Update はpatchの非nilフィールドを既存レコードにマージし、
	// updated_atを更新して更新後のレコードを返す。
	// 該当レコードが存在しない場合はnilを返す（upsertは行わない）。
	Update(ctx context.Context, id string, patch *model.ProductPatch) (*model.Product, error)

	// Delete は指定IDの商品を削除する。削除が行われたかどうかを返す。
	Delete(ctx context.Context, id string) (bool, error)

	// StatsProjection は統計計算に必要な射影（status, images, created_at,
	// updated_at）を全商品分返す。
	StatsProjection(ctx context.Context) ([]model.ProductStats, error)
}
