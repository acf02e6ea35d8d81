package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	userKeyPrefix     = "user:id:"
	usernameKeyPrefix = "user:name:"
)

// ErrNotFound は該当するユーザーが存在しないことを表します。
var ErrNotFound = errors.New("user not found")

// ErrDuplicateUsername は同名ユーザーが既に存在することを表します。
var ErrDuplicateUsername = errors.New("username already taken")

// Store はユーザーレコードを Redis に保存します。
// レコード本体は user:id:<id> にJSONで保持し、
// user:name:<username> にユーザー名からIDへの索引を持ちます。
type Store struct {
	rdb *redis.Client
}

// NewStore は Store を作成します。
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Create はユーザーを保存します。ユーザー名が既に使われている場合は
// ErrDuplicateUsername を返します。
func (s *Store) Create(ctx context.Context, u *User) error {
	if u == nil {
		return fmt.Errorf("user is nil")
	}
	if u.ID == "" || u.Username == "" {
		return fmt.Errorf("user id and username are required")
	}

	payload, err := json.Marshal(u)
	if err != nil {
		return err
	}

	// ユーザー名索引を先に確保することで重複登録を防ぐ
	ok, err := s.rdb.SetNX(ctx, usernameKey(u.Username), u.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to reserve username: %w", err)
	}
	if !ok {
		return ErrDuplicateUsername
	}

	if err := s.rdb.Set(ctx, userKey(u.ID), payload, 0).Err(); err != nil {
		// 本体の保存に失敗したら索引も取り消す
		_ = s.rdb.Del(ctx, usernameKey(u.Username)).Err()
		return fmt.Errorf("failed to store user: %w", err)
	}
	return nil
}

// FindByID はIDでユーザーを取得します。存在しない場合は ErrNotFound を返します。
func (s *Store) FindByID(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	data, err := s.rdb.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByUsername はユーザー名でユーザーを取得します。
// 存在しない場合は ErrNotFound を返します。
func (s *Store) FindByUsername(ctx context.Context, username string) (*User, error) {
	if username == "" {
		return nil, ErrNotFound
	}
	id, err := s.rdb.Get(ctx, usernameKey(username)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve username: %w", err)
	}
	return s.FindByID(ctx, id)
}

func userKey(id string) string {
	return userKeyPrefix + id
}

func usernameKey(username string) string {
	return usernameKeyPrefix + username
}
