package auth

import (
	"github.com/gin-contrib/sessions"

	"github.com/yourusername/code-editor/internal/user"
)

// セッションへの直列化契約: ログイン時にユーザーIDのみを書き込み、
// 以降のリクエストではIDをストアで引き直してユーザーに復元します。

const (
	// SessionCookieName はセッションCookieの名前です。
	SessionCookieName = "editor_session"

	sessionKeyUserID   = "user_id"
	sessionKeyReturnTo = "return_to"

	flashKeyError   = "error"
	flashKeySuccess = "success"
)

// serializeIntoSession は認証済みユーザーの識別子をセッションに書き込みます。
func serializeIntoSession(session sessions.Session, u *user.User) {
	session.Set(sessionKeyUserID, u.ID)
}

// deserializeFromSession はセッションからユーザーIDを取り出します。
// 識別子が無い場合は空文字列を返します。
func deserializeFromSession(session sessions.Session) string {
	id, ok := session.Get(sessionKeyUserID).(string)
	if !ok {
		return ""
	}
	return id
}

// clearIdentity はセッションから識別子のみを削除します。
// 既に積まれたフラッシュメッセージなどは保持されます。
func clearIdentity(session sessions.Session) {
	session.Delete(sessionKeyUserID)
}
