package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"

	"resumevault/internal/account"
	"resumevault/internal/config"
	"resumevault/internal/kvstore"
)

func main() {
	var (
		name     = flag.String("name", "", "显示名（创建时必填）")
		username = flag.String("username", "", "用户名（创建时必填）")
		email    = flag.String("email", "", "邮箱（必填）")
		reset    = flag.Bool("reset-password", false, "为既有账号生成并覆盖新密码")
	)
	flag.Parse()

	e := strings.TrimSpace(*email)
	if e == "" {
		log.Fatal("missing required flag: --email")
	}

	cfg := config.MustLoad()

	var redisClient redis.UniversalClient
	if cfg.Store.Backend == "redis" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
		defer client.Close()
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("ping redis: %v", err)
		}
		redisClient = client
	}

	store, err := kvstore.Open(cfg, redisClient)
	if err != nil {
		log.Fatalf("open kv store: %v", err)
	}

	directory := account.NewDirectory(store)
	ctx := context.Background()

	password, err := generateRandomPassword(24)
	if err != nil {
		log.Fatalf("generate password: %v", err)
	}

	if *reset {
		if err := directory.ResetPassword(ctx, e, password, password); err != nil {
			if errors.Is(err, account.ErrEmailNotFound) {
				log.Fatalf("no account registered for %q", e)
			}
			log.Fatalf("reset password: %v", err)
		}
		fmt.Printf("已为账号重置密码：\n")
		fmt.Printf("邮箱: %s\n", e)
		fmt.Printf("新密码: %s\n", password)
		fmt.Printf("提示：该密码仅显示一次。\n")
		return
	}

	n := strings.TrimSpace(*name)
	u := strings.TrimSpace(*username)
	if n == "" || u == "" {
		log.Fatal("missing required flags: --name and --username")
	}

	user, err := directory.Register(ctx, n, u, e, password)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrEmailTaken):
			log.Fatalf("email %q already registered", e)
		case errors.Is(err, account.ErrUsernameTaken):
			log.Fatalf("username %q already taken", u)
		default:
			log.Fatalf("create account: %v", err)
		}
	}

	fmt.Printf("已创建初始账号：\n")
	fmt.Printf("用户 ID: %d\n", user.ID)
	fmt.Printf("用户名: %s\n", user.Username)
	fmt.Printf("邮箱: %s\n", user.Email)
	fmt.Printf("初始密码: %s\n", password)
	fmt.Printf("提示：请立即登录并修改密码（该密码仅显示一次）。\n")
}

func generateRandomPassword(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		bytesLen = 24
	}
	buf := make([]byte, bytesLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
