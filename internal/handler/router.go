package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/storeman/internal/metrics"
	"github.com/hitoshi/storeman/internal/middleware"
	"github.com/hitoshi/storeman/internal/session"
	"github.com/prometheus/client_golang/prometheus"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// *sql.DBがそのまま満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	Logger            *slog.Logger
	Collector         *metrics.Collector
	Gatherer          prometheus.Gatherer

	// 認証・認可
	Authorizer  middleware.Authorizer
	Cookies     *session.Codec
	AuthService AuthServiceInterface

	// SessionMaxAge はIdPがexpires_inを返さない場合のCookie TTL（秒）。
	SessionMaxAge int

	// リソース
	ProductService  ProductServiceInterface
	OverviewService OverviewServiceInterface

	// 運用
	HealthChecker HealthChecker
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Logging → Metrics → Recovery
//
// 管理ルート（/api/*）のみ認可ゲートウェイで追加的に保護する。
// 認可の失敗はリソース操作に到達する前にリクエストを打ち切る。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 型付きnilをインターフェースに入れないようCollector未設定時はnilのまま渡す
	var requests middleware.RequestRecorder
	var denials middleware.DenialRecorder
	if deps.Collector != nil {
		requests = deps.Collector
		denials = deps.Collector
	}

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	r.Use(middleware.NewMetricsMiddleware(requests))
	r.Use(middleware.NewRecoveryMiddleware())

	authHandler := NewAuthHandler(deps.AuthService, deps.Cookies, deps.SessionMaxAge)
	productHandler := NewProductHandler(deps.ProductService)
	overviewHandler := NewOverviewHandler(deps.OverviewService)

	// --- 認可不要のルート ---

	r.Post("/login", authHandler.Login)
	r.Post("/logout", authHandler.Logout)

	// 公開ストアフロント（activeな商品のみ）
	r.Get("/products", productHandler.ListPublic)

	if deps.HealthChecker != nil {
		r.Get("/health", newHealthHandler(deps.HealthChecker))
	}
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	// --- 管理者のみのルート ---

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.Authorizer, deps.Cookies, denials))

		r.Route("/api", func(r chi.Router) {
			r.Route("/products", func(r chi.Router) {
				r.Get("/", productHandler.ListAdmin)
				r.Post("/", productHandler.Create)

				r.Route("/{id}", func(r chi.Router) {
					r.Put("/", productHandler.Update)
					r.Delete("/", productHandler.Delete)
				})
			})

			r.Get("/overview", overviewHandler.Overview)
		})
	})

	return r
}

// newHealthHandler はDB接続を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := checker.PingContext(r.Context()); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}
}
