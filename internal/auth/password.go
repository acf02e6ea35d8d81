package auth

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/code-editor/internal/user"
)

// CredentialStore は認証コアが必要とするユーザー検索操作です。
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*user.User, error)
	FindByID(ctx context.Context, id string) (*user.User, error)
}

// PasswordStrategy はフォーム送信されたユーザー名とパスワードを
// ストアのレコードと照合する戦略です。
type PasswordStrategy struct {
	store CredentialStore
}

// NewPasswordStrategy は PasswordStrategy を作成します。
func NewPasswordStrategy(store CredentialStore) *PasswordStrategy {
	return &PasswordStrategy{store: store}
}

// Name は戦略名 "password" を返します。
func (s *PasswordStrategy) Name() string {
	return "password"
}

// Valid は user[username] と user[password] が共に空でない場合に真を返します。
func (s *PasswordStrategy) Valid(c *gin.Context) bool {
	creds := c.PostFormMap("user")
	return creds["username"] != "" && creds["password"] != ""
}

// Authenticate はユーザー名で検索し、パスワードをbcryptで照合します。
func (s *PasswordStrategy) Authenticate(c *gin.Context) (*user.User, error) {
	creds := c.PostFormMap("user")

	u, err := s.store.FindByUsername(c.Request.Context(), creds["username"])
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// 不存在でも比較コストを揃える
			user.VerifyDummyPassword(creds["password"])
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !u.VerifyPassword(creds["password"]) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
