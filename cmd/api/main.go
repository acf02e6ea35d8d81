// Package main はエディタサーバーのエントリーポイントです。
package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/code-editor/internal/auth"
	"github.com/yourusername/code-editor/internal/config"
	"github.com/yourusername/code-editor/internal/editor"
	"github.com/yourusername/code-editor/internal/user"
	"github.com/yourusername/code-editor/internal/view"
)

const sessionMaxAgeSeconds = 12 * 60 * 60

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()
	router.SetHTMLTemplate(view.Templates())

	// セッションストアの設定（クッキー署名鍵は必須）
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAgeSeconds,
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		// リダイレクト主体のログインフローのため Lax にする
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(auth.SessionCookieName, store))

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	// CORS許可オリジンを設定（カンマ区切りの文字列を配列に変換）
	origins := strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowOrigins = origins
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	// ユーザーストアと認証コアの初期化
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to parse REDIS_URL: %v", err)
	}
	userStore := user.NewStore(redis.NewClient(opt))

	registry := auth.NewRegistry(auth.NewPasswordStrategy(userStore))
	authManager := auth.NewManager(userStore, registry)

	// 認証ゲートは許可リスト以外の全パスに先行して適用される
	router.Use(authManager.RequireLogin())

	// ルーティングの設定
	if err := setupRoutes(router, cfg, authManager); err != nil {
		log.Fatalf("Failed to set up routes: %v", err)
	}

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting editor server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRoutes は認証ルートとエディタ本体の配線を行います。
func setupRoutes(router *gin.Engine, cfg *config.Config, authManager *auth.Manager) error {
	// ログイン・ログアウト・失敗処理（ゲート対象外）
	authManager.RegisterRoutes(router)

	// ワークスペースサービス
	workspace, err := editor.NewService(cfg.WorkspaceRoot, cfg.MaxFileSize)
	if err != nil {
		return err
	}

	// エディタ画面とファイルAPI（すべてゲートの内側）
	router.GET("/", editor.PageHandler(workspace))

	api := router.Group("/api")
	{
		files := api.Group("/files")
		{
			files.GET("", editor.ListHandler(workspace))
			files.GET("/content", editor.ReadHandler(workspace))
			files.PUT("/content", editor.SaveHandler(workspace))
		}
	}

	// スナップショットジョブ
	jobsManager, err := setupJobs(cfg)
	if err != nil {
		return err
	}
	jobsManager.StartWorkers()

	snapshots := api.Group("/snapshots")
	{
		snapshots.POST("", snapshotEnqueueHandler(jobsManager))
		snapshots.GET("/:id", snapshotStatusHandler(jobsManager))
	}

	return nil
}
