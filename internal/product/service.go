// Package product は商品リソースのCRUD操作を提供する。
package product

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/storeman/internal/model"
	"github.com/hitoshi/storeman/internal/repository"
	"github.com/hitoshi/storeman/internal/security"
)

// WriteRecorder は商品への書き込み操作のメトリクス記録インターフェース。
type WriteRecorder interface {
	RecordProductWrite(operation string)
}

// Service は商品に関するビジネスロジックを提供する。
// 公開読み取りパス（activeのみ）と管理パス（全件・書き込み）を持つ。
// 書き込みの認可はハンドラー側のゲートウェイで担保される。
type Service struct {
	repo      repository.ProductRepository
	sanitizer security.TextSanitizerService
	recorder  WriteRecorder
}

// NewService はServiceを生成する。recorderはnilでもよい。
func NewService(repo repository.ProductRepository, sanitizer security.TextSanitizerService, recorder WriteRecorder) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		recorder:  recorder,
	}
}

// ListPublic は公開ストアフロント向けの商品一覧を返す。
// status=activeの商品のみをcreated_at降順で返す。認可は不要。
func (s *Service) ListPublic(ctx context.Context) ([]*model.Product, error) {
	products, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list public products: %w", err)
	}
	return products, nil
}

// ListAll は管理画面向けの商品一覧をstatusに関わらず返す。
func (s *Service) ListAll(ctx context.Context) ([]*model.Product, error) {
	products, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list all products: %w", err)
	}
	return products, nil
}

// Create は新規商品を作成し、採番済みIDとタイムスタンプを含むレコードを返す。
// 未指定のフィールドは拒否せずNULLのまま保存する（入力値の妥当性検証は
// 呼び出し側の責務）。テキストフィールドはHTMLタグを除去してから保存する。
func (s *Service) Create(ctx context.Context, input *model.ProductPatch) (*model.Product, error) {
	now := time.Now()
	p := &model.Product{
		ID:          uuid.New().String(),
		Name:        s.sanitizeField(input.Name),
		Description: s.sanitizeField(input.Description),
		Status:      input.Status,
		Images:      input.Images,
		Price:       input.Price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.recordWrite("create")
	slog.Info("product created", slog.String("product_id", p.ID))
	return p, nil
}

// Update はpatchの指定フィールドを既存レコードにマージし、更新後のレコードを返す。
// 該当商品が存在しない場合はKindProductNotFoundを返す（新規作成はしない）。
func (s *Service) Update(ctx context.Context, id string, patch *model.ProductPatch) (*model.Product, error) {
	sanitized := *patch
	sanitized.Name = s.sanitizeField(patch.Name)
	sanitized.Description = s.sanitizeField(patch.Description)

	p, err := s.repo.Update(ctx, id, &sanitized)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if p == nil {
		return nil, model.NewProductNotFoundError(id)
	}

	s.recordWrite("update")
	slog.Info("product updated", slog.String("product_id", id))
	return p, nil
}

// Delete は指定IDの商品を削除する。
// 該当商品が存在しない場合はKindProductNotFoundを返す（成功扱いにしない）。
func (s *Service) Delete(ctx context.Context, id string) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if !found {
		return model.NewProductNotFoundError(id)
	}

	s.recordWrite("delete")
	slog.Info("product deleted", slog.String("product_id", id))
	return nil
}

// sanitizeField は非nilの文字列フィールドをサニタイズする。nilはそのまま返す。
func (s *Service) sanitizeField(v *string) *string {
	if v == nil {
		return nil
	}
	cleaned := s.sanitizer.Sanitize(*v)
	return &cleaned
}

// recordWrite は書き込み操作のメトリクスを記録する。
func (s *Service) recordWrite(operation string) {
	if s.recorder != nil {
		s.recorder.RecordProductWrite(operation)
	}
}
