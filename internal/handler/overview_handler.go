package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/storeman/internal/middleware"
	"github.com/hitoshi/storeman/internal/model"
)

// OverviewServiceInterface は統計ハンドラーが必要とするサービスインターフェース。
type OverviewServiceInterface interface {
	Overview(ctx context.Context) (*model.Overview, error)
}

// OverviewHandler は商品統計のHTTPハンドラー。
type OverviewHandler struct {
	service OverviewServiceInterface
}

// NewOverviewHandler はOverviewHandlerを生成する。
func NewOverviewHandler(service OverviewServiceInterface) *OverviewHandler {
	return &OverviewHandler{service: service}
}

// Overview は商品コレクション全体の統計を返す。
// 商品が存在しない場合はlastUpdatedがnullになる。
// GET /api/overview
func (h *OverviewHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context())
	if err != nil {
		slog.Error("failed to compute overview", slog.String("error", err.Error()))
		middleware.WriteErrorResponse(w, model.NewUpstreamError(err))
		return
	}
	writeJSON(w, http.StatusOK, overview)
}
