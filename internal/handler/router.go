package handler

import (
	"encoding/json"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/clubroster/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ディレクトリ
	Service DirectoryService

	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	StatusRecorder    middleware.HTTPStatusRecorder

	// 静的アセット（"static"ディレクトリを含むfs.FS）。nilの場合は配信しない。
	StaticAssets fs.FS
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Logging → Recovery → Metrics → SecurityHeaders → CORS
//
// レート制限はAPIルートにのみ適用し、静的アセットと/healthには適用しない。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewMetricsMiddleware(deps.StatusRecorder))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	activityHandler := NewActivityHandler(deps.Service)

	// --- レート制限の対象外のルート ---

	// ヘルスチェック（コンテナプローブ用）
	r.Get("/health", handleHealth)

	// ルートはUIにリダイレクト
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/static/index.html", http.StatusTemporaryRedirect)
	})

	// 静的アセット
	if deps.StaticAssets != nil {
		r.Handle("/static/*", http.FileServer(http.FS(deps.StaticAssets)))
	}

	// --- APIルート ---
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		r.Route("/activities", func(r chi.Router) {
			// GET /activities - 活動一覧
			r.Get("/", activityHandler.ListActivities)

			// 名簿を変更する操作には専用レート制限を追加
			r.Route("/{name}", func(r chi.Router) {
				if deps.RateLimiter != nil {
					r.Use(deps.RateLimiter.MutationMiddleware())
				}
				r.Post("/signup", activityHandler.SignUp)
				r.Delete("/unregister", activityHandler.Unregister)
			})
		})
	})

	return r
}

// handleHealth はヘルスチェックに応答する。
// ディレクトリはインメモリで外部依存を持たないため、
// プロセスが応答できてさえいれば healthy とみなす。
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
