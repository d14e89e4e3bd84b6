// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const readyTimeout = 2 * time.Second

// Health はサービスヘルスチェック用の /healthz エンドポイントを処理します。
// HTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
func Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	// すべてのGET/HEAD/OPTIONSリクエストに対して200または204を返す
	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Check は依存コンポーネントの疎通確認関数です。
type Check func(ctx context.Context) error

// Ready は /readyz 用のハンドラーを返します。
// いずれかのチェックが失敗した場合は503と失敗したコンポーネント名を返します。
func Ready(checks map[string]Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")

		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()

		failed := gin.H{}
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check(ctx); err != nil {
				slog.Warn("readiness check failed", "component", name, "error", err)
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "failed": failed})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
