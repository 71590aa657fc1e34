package account

import (
	"context"
	"fmt"

	"resumevault/internal/kvstore"
)

// Session 显式承载“当前登录人”状态，替代模块级全局变量。
// 内存中的用户对象只是缓存，权威状态始终在存储里，可随时 Rehydrate。
type Session struct {
	store kvstore.Store
	user  *User
}

// NewSession 构造未登录的会话上下文。
func NewSession(store kvstore.Store) *Session {
	return &Session{store: store}
}

// Rehydrate 从存储恢复活跃会话（若有）。
func (s *Session) Rehydrate(ctx context.Context) error {
	var u User
	ok, err := kvstore.GetJSON(ctx, s.store, kvstore.KeyCurrentUser, &u)
	if err != nil {
		return fmt.Errorf("rehydrate session: %w", err)
	}
	if !ok {
		s.user = nil
		return nil
	}
	s.user = &u
	return nil
}

// SignIn 记录当前登录人并持久化。
func (s *Session) SignIn(ctx context.Context, u *User) error {
	if err := kvstore.SetJSON(ctx, s.store, kvstore.KeyCurrentUser, u); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	s.user = u
	return nil
}

// SignOut 清除活跃会话。
func (s *Session) SignOut(ctx context.Context) error {
	if err := s.store.Remove(ctx, kvstore.KeyCurrentUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.user = nil
	return nil
}

// User 返回当前登录人，未登录时为 nil。
func (s *Session) User() *User {
	return s.user
}
