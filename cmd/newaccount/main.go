// Package main はアカウント作成用のコマンドラインツールです。
// サーバーとは別プロセスで実行し、ユーザーストアへ直接レコードを作成します。
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"golang.org/x/term"

	"github.com/yourusername/code-editor/internal/config"
	"github.com/yourusername/code-editor/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to parse REDIS_URL: %v", err)
	}
	store := user.NewStore(redis.NewClient(opt))
	ctx := context.Background()

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("Enter a username:")
	username, err := reader.ReadString('\n')
	if err != nil {
		log.Fatalf("Failed to read username: %v", err)
	}
	username = strings.TrimSpace(username)
	if username == "" {
		log.Fatal("Username must not be empty")
	}

	if _, err := store.FindByUsername(ctx, username); err == nil {
		fmt.Println("User with that name already exists!")
		os.Exit(1)
	} else if !errors.Is(err, user.ErrNotFound) {
		log.Fatalf("Failed to check username: %v", err)
	}

	fmt.Println("Enter a password:")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		log.Fatalf("Failed to read password: %v", err)
	}
	if len(password) == 0 {
		log.Fatal("Password must not be empty")
	}

	u, err := user.New(username, string(password))
	if err != nil {
		log.Fatalf("Failed to prepare account: %v", err)
	}
	if err := store.Create(ctx, u); err != nil {
		fmt.Println("Account creation was unsuccessful.")
		log.Fatalf("Failed to create account: %v", err)
	}

	fmt.Printf("Successfully created an account for %s\n", username)
}
