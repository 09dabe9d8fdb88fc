package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/storeman/internal/middleware"
	"github.com/hitoshi/storeman/internal/model"
)

// ProductServiceInterface は商品ハンドラーが必要とするサービスインターフェース。
type ProductServiceInterface interface {
	ListPublic(ctx context.Context) ([]*model.Product, error)
	ListAll(ctx context.Context) ([]*model.Product, error)
	Create(ctx context.Context, input *model.ProductPatch) (*model.Product, error)
	Update(ctx context.Context, id string, patch *model.ProductPatch) (*model.Product, error)
	Delete(ctx context.Context, id string) error
}

// ProductHandler は商品CRUDのHTTPハンドラー。
type ProductHandler struct {
	service ProductServiceInterface
}

// NewProductHandler はProductHandlerを生成する。
func NewProductHandler(service ProductServiceInterface) *ProductHandler {
	return &ProductHandler{service: service}
}

// ListPublic は公開ストアフロント向けにactiveな商品のみを返す。認可不要。
// GET /products
func (h *ProductHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListPublic(r.Context())
	if err != nil {
		h.writeError(w, err, "failed to list public products")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// ListAdmin は管理画面向けに全商品をstatusに関わらず返す。
// GET /api/products
func (h *ProductHandler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListAll(r.Context())
	if err != nil {
		h.writeError(w, err, "failed to list products")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// Create は新規商品を作成し、採番済みのレコードを201で返す。
// POST /api/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input model.ProductPatch
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	product, err := h.service.Create(r.Context(), &input)
	if err != nil {
		h.writeError(w, err, "failed to create product")
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// Update は部分フィールドを既存商品にマージし、更新後のレコードを返す。
// 該当商品が存在しない場合は404（新規作成はしない）。
// PUT /api/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch model.ProductPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	product, err := h.service.Update(r.Context(), id, &patch)
	if err != nil {
		h.writeError(w, err, "failed to update product")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Delete は指定IDの商品を削除する。該当商品が存在しない場合は404。
// DELETE /api/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, err, "failed to delete product")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
	})
}

// writeError はサービス層のエラーをHTTPレスポンスに変換する。
// APIErrorは種別に応じたステータス、それ以外は500として扱う。
func (h *ProductHandler) writeError(w http.ResponseWriter, err error, logMsg string) {
	if apiErr, ok := model.AsAPIError(err); ok {
		middleware.WriteErrorResponse(w, apiErr)
		return
	}
	slog.Error(logMsg, slog.String("error", err.Error()))
	middleware.WriteErrorResponse(w, model.NewUpstreamError(err))
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}
