// Package user はユーザーレコードと資格情報ストアを提供します。
package user

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User は認証対象となるアカウント情報です。
// パスワードはbcryptハッシュのみを保持し、平文は一切保存しません。
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// 未登録ユーザー名でも1回のbcrypt比較を行うためのダミーハッシュです。
// 起動時にランダムな値から生成するため、照合に成功することはありません。
var dummyPasswordHash, _ = bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)

// New はユーザー名とパスワードから新しいユーザーを作成します。
func New(username, password string) (*User, error) {
	u := &User{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword はパスワードをbcryptでハッシュ化して保持します。
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// VerifyPassword は候補パスワードを保存済みハッシュと照合します。
func (u *User) VerifyPassword(candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(candidate)) == nil
}

// VerifyDummyPassword はユーザーが存在しない場合に呼び出し、
// 存在する場合と同程度の計算コストを消費させます。結果は常にfalseです。
func VerifyDummyPassword(candidate string) bool {
	return bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(candidate)) == nil
}
