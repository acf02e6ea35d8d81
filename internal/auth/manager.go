package auth

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/code-editor/internal/user"
)

// ContextUserKey は、ハンドラー間でログイン済みユーザーを共有するためのキーです。
const ContextUserKey = "auth.user"

// LoginPath は未認証リクエストのリダイレクト先です。
const LoginPath = "/login"

// Attempt は1リクエスト分の認証試行の結果です。永続化はされません。
type Attempt struct {
	Strategy string     // 使用した戦略名（該当なしの場合は空）
	User     *user.User // 成功時の認証済みユーザー
	Message  string     // 失敗時の表示用メッセージ
	Err      error      // 失敗理由（ErrInvalidCredentials またはインフラエラー）
}

// Authenticated は試行が成功したかを返します。
func (a *Attempt) Authenticated() bool {
	return a != nil && a.User != nil
}

// FailureOptions は認証失敗ディスパッチへ渡す情報です。
type FailureOptions struct {
	AttemptedPath string // 失敗時にアクセスしようとしていたパス
	Message       string // 表示するメッセージ（空ならば既定文言）
}

// Manager は戦略の選択・セッション状態の管理・失敗時の遷移をまとめます。
type Manager struct {
	store    CredentialStore
	registry *Registry
}

// NewManager は認証マネージャーを作成します。
func NewManager(store CredentialStore, registry *Registry) *Manager {
	return &Manager{
		store:    store,
		registry: registry,
	}
}

// Authenticate は適用可能な最初の戦略で資格情報を検証します。
// 成功時はセッションへ識別子を書き込み、失敗時はセッションを変更しません。
func (m *Manager) Authenticate(c *gin.Context) *Attempt {
	strategy := m.registry.First(c)
	if strategy == nil {
		// 適用可能な戦略なし。戦略固有のメッセージは付けない
		return &Attempt{Err: ErrInvalidCredentials}
	}

	u, err := strategy.Authenticate(c)
	if err != nil {
		attempt := &Attempt{Strategy: strategy.Name(), Err: err}
		if errors.Is(err, ErrInvalidCredentials) {
			attempt.Message = InvalidCredentialsMessage
		}
		return attempt
	}

	session := sessions.Default(c)
	serializeIntoSession(session, u)
	if err := session.Save(); err != nil {
		return &Attempt{Strategy: strategy.Name(), Err: err}
	}
	return &Attempt{Strategy: strategy.Name(), User: u}
}

// CurrentUser はセッションの識別子をストアで引き直します。
// 識別子が無い場合や解決できない場合は (nil, nil) を返し、
// ストア障害のみエラーを返します。
func (m *Manager) CurrentUser(c *gin.Context) (*user.User, error) {
	session := sessions.Default(c)
	id := deserializeFromSession(session)
	if id == "" {
		return nil, nil
	}

	u, err := m.store.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// ユーザーが消えた識別子は未認証として扱い、残骸を片付ける
			clearIdentity(session)
			_ = session.Save()
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// IsAuthenticated はセッションが有効なユーザーに解決できるかを返します。
func (m *Manager) IsAuthenticated(c *gin.Context) bool {
	u, err := m.CurrentUser(c)
	return err == nil && u != nil
}

// Logout はセッションから識別子を削除します。未認証状態で呼んでも安全です。
func (m *Manager) Logout(c *gin.Context) error {
	session := sessions.Default(c)
	clearIdentity(session)
	return session.Save()
}

// OnAuthenticationFailure は認証失敗時の遷移を実行します。
// 試行パスを return_to として記録し、メッセージをフラッシュに積んで
// ログインページへリダイレクトします。元リクエストの処理は中断されます。
//
// 元実装はリクエストメソッドを書き換えて失敗ルートへ再入させていましたが、
// ここでは明示的な内部ディスパッチとして呼び出します。
func (m *Manager) OnAuthenticationFailure(c *gin.Context, opts FailureOptions) {
	session := sessions.Default(c)
	if opts.AttemptedPath != "" {
		session.Set(sessionKeyReturnTo, opts.AttemptedPath)
	}

	message := opts.Message
	if message == "" {
		message = FallbackFailureMessage
	}
	session.AddFlash(message, flashKeyError)

	if err := session.Save(); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"code":    "SESSION_SAVE_FAILED",
			"message": "セッションの保存に失敗しました",
		})
		return
	}

	c.Redirect(http.StatusFound, LoginPath)
	c.Abort()
}

// consumeReturnTo は return_to を取り出して削除し、
// ログイン成功後のリダイレクト先を決定します。
func consumeReturnTo(session sessions.Session) string {
	target := "/"
	if rt, ok := session.Get(sessionKeyReturnTo).(string); ok && rt != "" && rt != LoginPath {
		target = rt
	}
	session.Delete(sessionKeyReturnTo)
	return target
}
