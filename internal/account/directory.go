package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resumevault/internal/auth"
	"resumevault/internal/kvstore"
)

// User 表示目录中的一个账号。密码只保存 bcrypt 哈希，绝不落明文。
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	CreatedAt    int64  `json:"createdAt"`
}

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotFound      = errors.New("email not found")
	ErrPasswordMismatch   = errors.New("password confirmation does not match")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrUserNotFound       = errors.New("user not found")
)

const minPasswordLength = 6

// Directory 管理注册用户集合。所有修改都对 users 键做整体读改写。
type Directory struct {
	store kvstore.Store
	now   func() time.Time
}

// NewDirectory 构造账号目录。
func NewDirectory(store kvstore.Store) *Directory {
	return &Directory{store: store, now: time.Now}
}

// Register 创建新账号。邮箱与用户名不区分大小写地要求唯一。
func (d *Directory) Register(ctx context.Context, name, username, email, password string) (*User, error) {
	name = strings.TrimSpace(name)
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if name == "" || username == "" || email == "" {
		return nil, ErrInvalidInput
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	// 写前重读全量列表，缩小丢失更新窗口。
	users, err := d.loadUsers(ctx)
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return nil, ErrEmailTaken
		}
		if strings.EqualFold(u.Username, username) {
			return nil, ErrUsernameTaken
		}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := d.now()
	user := User{
		ID:           nextID(users, now),
		Name:         name,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now.UnixMilli(),
	}

	users = append(users, user)
	if err := kvstore.SetJSON(ctx, d.store, kvstore.KeyUsers, users); err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate 按邮箱（不区分大小写）查找账号并校验密码。
func (d *Directory) Authenticate(ctx context.Context, email, password string) (*User, error) {
	users, err := d.loadUsers(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if !strings.EqualFold(users[i].Email, strings.TrimSpace(email)) {
			continue
		}
		if !auth.CheckPasswordHash(password, users[i].PasswordHash) {
			return nil, ErrInvalidCredentials
		}
		u := users[i]
		return &u, nil
	}
	return nil, ErrInvalidCredentials
}

// ResetPassword 为匹配邮箱的账号覆盖密码哈希。
func (d *Directory) ResetPassword(ctx context.Context, email, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	users, err := d.loadUsers(ctx)
	if err != nil {
		return err
	}

	for i := range users {
		if !strings.EqualFold(users[i].Email, strings.TrimSpace(email)) {
			continue
		}
		hash, err := auth.HashPassword(newPassword)
		if err != nil {
			return err
		}
		users[i].PasswordHash = hash
		return kvstore.SetJSON(ctx, d.store, kvstore.KeyUsers, users)
	}
	return ErrEmailNotFound
}

// GetByID 按 ID 查找账号。
func (d *Directory) GetByID(ctx context.Context, id int64) (*User, error) {
	users, err := d.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			u := users[i]
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

// FindByIdentifier 按用户名或邮箱（均不区分大小写）解析账号，供公开只读页使用。
func (d *Directory) FindByIdentifier(ctx context.Context, identifier string) (*User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, ErrUserNotFound
	}

	users, err := d.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Username, identifier) || strings.EqualFold(users[i].Email, identifier) {
			u := users[i]
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (d *Directory) loadUsers(ctx context.Context) ([]User, error) {
	var users []User
	if _, err := kvstore.GetJSON(ctx, d.store, kvstore.KeyUsers, &users); err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return users, nil
}

// nextID 以创建时刻的毫秒时间戳作为 ID，同一毫秒内注册时顺延。
func nextID(users []User, now time.Time) int64 {
	id := now.UnixMilli()
	for {
		taken := false
		for _, u := range users {
			if u.ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
		id++
	}
}
