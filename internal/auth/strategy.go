// Package auth は認証・認可機能を提供します。
package auth

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/code-editor/internal/user"
)

// ErrInvalidCredentials は資格情報が一致しなかったことを表します。
// ユーザー不存在とパスワード不一致は意図的に区別しません。
var ErrInvalidCredentials = errors.New("invalid credentials")

const (
	// InvalidCredentialsMessage は認証失敗時に表示する固定メッセージです。
	InvalidCredentialsMessage = "The username or password you entered is incorrect."

	// FallbackFailureMessage は個別のメッセージがない失敗時に表示します。
	FallbackFailureMessage = "There was an error"
)

// Strategy は資格情報の検証手続きを表します。
// Valid がリクエストへの適用可否を判定し、適用可能な場合のみ
// Authenticate が呼ばれます。
type Strategy interface {
	// Name は戦略の登録名を返します。
	Name() string
	// Valid はこの戦略がリクエストに適用可能かを判定します。
	Valid(c *gin.Context) bool
	// Authenticate は資格情報を検証し、成功時はユーザーを返します。
	// 不一致の場合は ErrInvalidCredentials を、ストア障害などは
	// それ以外のエラーを返します。
	Authenticate(c *gin.Context) (*user.User, error)
}

// Registry は登録順を保持する認証戦略のレジストリです。
type Registry struct {
	strategies []Strategy
}

// NewRegistry は Registry を作成します。
func NewRegistry(strategies ...Strategy) *Registry {
	r := &Registry{}
	for _, s := range strategies {
		r.Register(s)
	}
	return r
}

// Register は戦略を末尾に追加します。選択は登録順の先勝ちです。
func (r *Registry) Register(s Strategy) {
	r.strategies = append(r.strategies, s)
}

// First は適用可能な最初の戦略を返します。該当がなければ nil を返します。
func (r *Registry) First(c *gin.Context) Strategy {
	for _, s := range r.strategies {
		if s.Valid(c) {
			return s
		}
	}
	return nil
}
