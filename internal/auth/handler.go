package auth

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes はログイン・ログアウト・失敗処理のルートを配線します。
// いずれも認証ゲートの許可リストに含まれるパスです。
func (m *Manager) RegisterRoutes(router gin.IRouter) {
	router.GET("/login", m.ShowLogin)
	router.POST("/login", m.Login)
	router.GET("/logout", m.HandleLogout)
	router.POST("/auth/unknown_user", m.UnknownUser)
}

// ShowLogin は GET /login のハンドラーです。
// 積まれたフラッシュメッセージは一度だけ表示されます。
func (m *Manager) ShowLogin(c *gin.Context) {
	session := sessions.Default(c)
	errorFlashes := session.Flashes(flashKeyError)
	successFlashes := session.Flashes(flashKeySuccess)
	// Flashes は読み出しで消費されるため保存して確定させる
	_ = session.Save()

	c.HTML(http.StatusOK, "login.html", gin.H{
		"Errors":    errorFlashes,
		"Successes": successFlashes,
	})
}

// Login は POST /login のハンドラーです。
// 成功時は return_to（あれば）へ、失敗時は失敗ディスパッチへ回します。
func (m *Manager) Login(c *gin.Context) {
	attempt := m.Authenticate(c)

	if !attempt.Authenticated() {
		if attempt.Err != nil && !errors.Is(attempt.Err, ErrInvalidCredentials) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "認証処理に失敗しました",
			})
			return
		}
		m.OnAuthenticationFailure(c, FailureOptions{
			AttemptedPath: c.Request.URL.Path,
			Message:       attempt.Message,
		})
		return
	}

	session := sessions.Default(c)
	if attempt.Message != "" {
		session.AddFlash(attempt.Message, flashKeySuccess)
	}
	target := consumeReturnTo(session)
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "SESSION_SAVE_FAILED",
			"message": "セッションの保存に失敗しました",
		})
		return
	}

	c.Redirect(http.StatusFound, target)
}

// HandleLogout は GET /logout のハンドラーです。冪等に動作します。
func (m *Manager) HandleLogout(c *gin.Context) {
	if err := m.Logout(c); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "SESSION_SAVE_FAILED",
			"message": "セッションの削除に失敗しました",
		})
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// UnknownUser は POST /auth/unknown_user のハンドラーです。
// 認証失敗の外部向けディスパッチ先で、試行パスを記録して
// ログインページへ戻します。
func (m *Manager) UnknownUser(c *gin.Context) {
	m.OnAuthenticationFailure(c, FailureOptions{
		AttemptedPath: c.PostForm("attempted_path"),
		Message:       c.PostForm("message"),
	})
}
