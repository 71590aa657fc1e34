package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// 持久化键布局。所有集合整体读写，不做局部更新。
const (
	KeyUsers       = "users"
	KeyCurrentUser = "current_user"
	KeyResumes     = "resumes"
	KeyTheme       = "theme"
	KeyDarkMode    = "dark_mode"

	autoSaveKeyPrefix = "autosave_"
)

// AutoSaveKey 返回某个用户的草稿键。
func AutoSaveKey(userID int64) string {
	return autoSaveKeyPrefix + strconv.FormatInt(userID, 10)
}

// Store 是窄化的键值存储接口，屏蔽具体后端，便于用内存实现做测试。
type Store interface {
	// Get 返回键对应的原始值；键不存在时 ok 为 false 且不报错。
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// GetJSON 读取并反序列化一个键；键缺失时返回 false 且不修改 dest。
func GetJSON(ctx context.Context, s Store, key string, dest any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("get %q: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

// SetJSON 序列化并写入一个键。
func SetJSON(ctx context.Context, s Store, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	if err := s.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}
