package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// exemptPaths は認証ゲートの対象外となるパスです。
var exemptPaths = map[string]struct{}{
	"/login":             {},
	"/logout":            {},
	"/auth/unknown_user": {},
}

// RequireLogin は全リクエストに先行する認証ゲートを返します。
// 許可リスト上のパスはそのまま通し、それ以外は有効なセッションが
// 無ければ失敗ディスパッチへ回して後続ハンドラーを実行しません。
func (m *Manager) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := exemptPaths[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		u, err := m.CurrentUser(c)
		if err != nil {
			// ストア障害は資格情報エラーと混同しない
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "認証状態の確認に失敗しました",
			})
			return
		}
		if u == nil {
			m.OnAuthenticationFailure(c, FailureOptions{
				AttemptedPath: c.Request.URL.Path,
			})
			return
		}

		c.Set(ContextUserKey, u)
		c.Next()
	}
}
