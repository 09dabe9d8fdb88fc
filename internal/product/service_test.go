package product

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/storeman/internal/model"
)

// --- モック定義 ---

// mockProductRepo はProductRepositoryのモック実装
type mockProductRepo struct {
	listActiveFunc func(ctx context.Context) ([]*model.Product, error)
	listAllFunc    func(ctx context.Context) ([]*model.Product, error)
	createFunc     func(ctx context.Context, product *model.Product) error
	updateFunc     func(ctx context.Context, id string, patch *model.ProductPatch) (*model.Product, error)
	deleteFunc     func(ctx context.Context, id string) (bool, error)
	statsFunc      func(ctx context.Context) ([]model.ProductStats, error)
}

func (m *mockProductRepo) ListActive(ctx context.Context) ([]*model.Product, error) {
	return m.listActiveFunc(ctx)
}

func (m *mockProductRepo) ListAll(ctx context.Context) ([]*model.Product, error) {
	return m.listAllFunc(ctx)
}

func (m *mockProductRepo) Create(ctx context.Context, product *model.Product) error {
	return m.createFunc(ctx, product)
}

func (m *mockProductRepo) Update(ctx context.Context, id string, patch *model.ProductPatch) (*model.Product, error) {
	return m.updateFunc(ctx, id, patch)
}

func (m *mockProductRepo) Delete(ctx context.Context, id string) (bool, error) {
	return m.deleteFunc(ctx, id)
}

func (m *mockProductRepo) StatsProjection(ctx context.Context) ([]model.ProductStats, error) {
	return m.statsFunc(ctx)
}

// passthroughSanitizer は入力をそのまま返すサニタイザー
type passthroughSanitizer struct{}

func (passthroughSanitizer) Sanitize(raw string) string { return raw }

// strippingSanitizer はHTMLタグらしき文字を除去する簡易サニタイザー
type strippingSanitizer struct{}

func (strippingSanitizer) Sanitize(raw string) string {
	out := raw
	for {
		start := strings.Index(out, "<")
		end := strings.Index(out, ">")
		if start < 0 || end < start {
			return out
		}
		out = out[:start] + out[end+1:]
	}
}

// mockWriteRecorder は書き込み操作を記録するモック
type mockWriteRecorder struct {
	operations []string
}

func (m *mockWriteRecorder) RecordProductWrite(operation string) {
	m.operations = append(m.operations, operation)
}

func strPtr(s string) *string { return &s }

// --- テスト ---

// ListPublicがリポジトリのactive一覧をそのまま返すことを検証
func TestService_ListPublic(t *testing.T) {
	want := []*model.Product{{ID: "p-1"}, {ID: "p-2"}}
	repo := &mockProductRepo{
		listActiveFunc: func(ctx context.Context) ([]*model.Product, error) {
			return want, nil
		},
	}

	service := NewService(repo, passthroughSanitizer{}, nil)
	got, err := service.ListPublic(context.Background())
	if err != nil {
		t.Fatalf("ListPublic returned unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "p-1" {
		t.Errorf("ListPublic = %v, want repository result", got)
	}
}

// CreateがIDとタイムスタンプを採番することを検証
func TestService_Create_AssignsIDAndTimestamps(t *testing.T) {
	var saved *model.Product
	repo := &mockProductRepo{
		createFunc: func(ctx context.Context, product *model.Product) error {
			saved = product
			return nil
		},
	}
	recorder := &mockWriteRecorder{}

	service := NewService(repo, passthroughSanitizer{}, recorder)
	created, err := service.Create(context.Background(), &model.ProductPatch{
		Name:  strPtr("Coffee Beans"),
		Price: float64Ptr(1280),
	})
	if err != nil {
		t.Fatalf("Create returned unexpected error: %v", err)
	}

	if created.ID == "" {
		t.Error("ID should be assigned")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("timestamps should be assigned")
	}
	if saved == nil || saved.ID != created.ID {
		t.Error("repository should receive the same record")
	}
	if len(recorder.operations) != 1 || recorder.operations[0] != "create" {
		t.Errorf("recorded operations = %v, want [create]", recorder.operations)
	}
}

// 未指定フィールドがnilのまま保存されることを検証
func TestService_Create_KeepsUnsetFieldsNil(t *testing.T) {
	repo := &mockProductRepo{
		createFunc: func(ctx context.Context, product *model.Product) error { return nil },
	}

	service := NewService(repo, passthroughSanitizer{}, nil)
	created, err := service.Create(context.Background(), &model.ProductPatch{})
	if err != nil {
		t.Fatalf("Create returned unexpected error: %v", err)
	}

	if created.Name != nil || created.Description != nil || created.Status != nil || created.Price != nil {
		t.Errorf("unset fields should remain nil, got %+v", created)
	}
}

// テキストフィールドがサニタイズされてから保存されることを検証
func TestService_Create_SanitizesText(t *testing.T) {
	repo := &mockProductRepo{
		createFunc: func(ctx context.Context, product *model.Product) error { return nil },
	}

	service := NewService(repo, strippingSanitizer{}, nil)
	created, err := service.Create(context.Background(), &model.ProductPatch{
		Name:        strPtr(`<script>alert(1)</script>Mug`),
		Description: strPtr("<b>bold</b> text"),
	})
	if err != nil {
		t.Fatalf("Create returned unexpected error: %v", err)
	}

	if *created.Name != "alert(1)Mug" {
		t.Errorf("Name = %q, want tags stripped", *created.Name)
	}
	if *created.Description != "bold text" {
		t.Errorf("Description = %q, want tags stripped", *created.Description)
	}
}

// Updateがサニタイズ済みパッチをリポジトリに渡し、結果を返すことを検証
func TestService_Update_Success(t *testing.T) {
	repo := &mockProductRepo{
		updateFunc: func(ctx context.Context, id string, patch *model.ProductPatch) (*model.Product, error) {
			if id != "p-1" {
				t.Errorf("id = %q, want p-1", id)
			}
			if *patch.Name != "Updated" {
				t.Errorf("patch.Name = %q, want sanitized value", *patch.Name)
			}
			name := *patch.Name
			return &model.Product{ID: id, Name: &name, UpdatedAt: time.Now()}, nil
		},
	}
	recorder := &mockWriteRecorder{}

	service := NewService(repo, strippingSanitizer{}, recorder)
	updated, err := service.Update(context.Background(), "p-1", &model.ProductPatch{
		Name: strPtr("<i>Updated</i>"),
	})
	if err != nil {
		t.Fatalf("Update returned unexpected error: %v", err)
	}

	if updated.ID != "p-1" {
		t.Errorf("ID = %q, want p-1", updated.ID)
	}
	if len(recorder.operations) != 1 || recorder.operations[0] != "update" {
		t.Errorf("recorded operations = %v, want [update]", recorder.operations)
	}
}

// 元のパッチがサニタイズで書き換えられないことを検証
func TestService_Update_DoesNotMutateInput(t *testing.T) {
	repo := &mockProductRepo{
		updateFunc: func(ctx context.Context, id string, patch *model.ProductPatch) (*model.Product, error) {
			return &model.Product{ID: id}, nil
		},
	}

	service := NewService(repo, strippingSanitizer{}, nil)
	original := &model.ProductPatch{Name: strPtr("<i>Tagged</i>")}
	if _, err := service.Update(context.Background(), "p-1", original); err != nil {
		t.Fatalf("Update returned unexpected error: %v", err)
	}

	if *original.Name != "<i>Tagged</i>" {
		t.Errorf("input patch was mutated: %q", *original.Name)
	}
}

// 存在しない商品の更新がKindProductNotFoundになることを検証
func TestService_Update_NotFound(t *testing.T) {
	repo := &mockProductRepo{
		updateFunc: func(ctx context.Context, id string, patch *model.ProductPatch) (*model.Product, error) {
			return nil, nil
		},
	}

	service := NewService(repo, passthroughSanitizer{}, nil)
	_, err := service.Update(context.Background(), "missing", &model.ProductPatch{})

	apiErr, ok := model.AsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Kind != model.KindProductNotFound {
		t.Errorf("Kind = %q, want %q", apiErr.Kind, model.KindProductNotFound)
	}
}

// Delete成功時にメトリクスが記録されることを検証
func TestService_Delete_Success(t *testing.T) {
	repo := &mockProductRepo{
		deleteFunc: func(ctx context.Context, id string) (bool, error) {
			return true, nil
		},
	}
	recorder := &mockWriteRecorder{}

	service := NewService(repo, passthroughSanitizer{}, recorder)
	if err := service.Delete(context.Background(), "p-1"); err != nil {
		t.Fatalf("Delete returned unexpected error: %v", err)
	}
	if len(recorder.operations) != 1 || recorder.operations[0] != "delete" {
		t.Errorf("recorded operations = %v, want [delete]", recorder.operations)
	}
}

// 存在しない商品の削除がKindProductNotFoundになることを検証
func TestService_Delete_NotFound(t *testing.T) {
	repo := &mockProductRepo{
		deleteFunc: func(ctx context.Context, id string) (bool, error) {
			return false, nil
		},
	}

	service := NewService(repo, passthroughSanitizer{}, nil)
	err := service.Delete(context.Background(), "missing")

	apiErr, ok := model.AsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Kind != model.KindProductNotFound {
		t.Errorf("Kind = %q, want %q", apiErr.Kind, model.KindProductNotFound)
	}
}

// リポジトリの失敗がそのまま伝搬されることを検証
func TestService_Create_RepoError(t *testing.T) {
	repo := &mockProductRepo{
		createFunc: func(ctx context.Context, product *model.Product) error {
			return errors.New("insert failed")
		},
	}
	recorder := &mockWriteRecorder{}

	service := NewService(repo, passthroughSanitizer{}, recorder)
	if _, err := service.Create(context.Background(), &model.ProductPatch{}); err == nil {
		t.Fatal("expected error from repository")
	}
	if len(recorder.operations) != 0 {
		t.Errorf("no write should be recorded on failure, got %v", recorder.operations)
	}
}

func float64Ptr(f float64) *float64 { return &f }
