package editor

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/code-editor/internal/auth"
	"github.com/yourusername/code-editor/internal/user"
)

// WorkspaceService はハンドラーが必要とするワークスペース操作です。
type WorkspaceService interface {
	List(relPath string) ([]Entry, error)
	ReadFile(relPath string) (*FileContent, error)
	SaveFile(relPath string, content []byte) error
}

// PageHandler は GET / のハンドラーを返します。
// ルート直下の一覧とログイン中のユーザー名を添えてエディタ画面を描画します。
func PageHandler(svc WorkspaceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := svc.List("")
		if err != nil {
			respondWithError(c, err)
			return
		}

		username := ""
		if v, ok := c.Get(auth.ContextUserKey); ok {
			if u, ok := v.(*user.User); ok {
				username = u.Username
			}
		}

		c.HTML(http.StatusOK, "editor.html", gin.H{
			"Entries":  entries,
			"Username": username,
		})
	}
}

// ListHandler は GET /api/files のハンドラーを返します。
func ListHandler(svc WorkspaceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := svc.List(c.Query("path"))
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": entries})
	}
}

// ReadHandler は GET /api/files/content のハンドラーを返します。
func ReadHandler(svc WorkspaceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Query("path")
		if path == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "path を指定してください。",
			})
			return
		}

		content, err := svc.ReadFile(path)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, content)
	}
}

type saveRequest struct {
	Path    string `json:"path" binding:"required"`
	Content string `json:"content"`
}

// SaveHandler は PUT /api/files/content のハンドラーを返します。
func SaveHandler(svc WorkspaceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req saveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "path と content を JSON で送ってください。",
			})
			return
		}

		if err := svc.SaveFile(req.Path, []byte(req.Content)); err != nil {
			respondWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// respondWithError はサービス層のエラーを {code, message} 形式に変換します。
func respondWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidPath):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_PATH",
			"message": "ワークスペース外のパスは指定できません。",
		})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "FILE_NOT_FOUND",
			"message": "指定されたファイルは存在しません。",
		})
	case errors.Is(err, ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"code":    "LIMIT_EXCEEDED",
			"message": "ファイルサイズが上限を超えています。",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "ファイル操作に失敗しました。",
		})
	}
}
