package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/qs3c/predict_admin_server/config"
	"github.com/qs3c/predict_admin_server/internal/database"
	"github.com/qs3c/predict_admin_server/internal/model/dto"
	"github.com/qs3c/predict_admin_server/internal/pkg/logger"
	"github.com/qs3c/predict_admin_server/internal/repository"
	"github.com/qs3c/predict_admin_server/internal/service"
)

const usage = `usage: admin <command> [flags]

commands:
  migrate        create or update database tables
  create-admin   create a console administrator
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog := logger.New(&cfg.Log)
	defer zlog.Sync()

	switch os.Args[1] {
	case "migrate":
		runMigrate(cfg, zlog)
	case "create-admin":
		runCreateAdmin(cfg, zlog, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func runMigrate(cfg *config.Config, zlog *zap.Logger) {
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		zlog.Fatal("failed to connect database", zap.Error(err))
	}
	if err := database.Migrate(db, zlog); err != nil {
		zlog.Fatal("migration failed", zap.Error(err))
	}
}

func runCreateAdmin(cfg *config.Config, zlog *zap.Logger, args []string) {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)
	email := fs.String("email", "", "Administrator email")
	name := fs.String("name", "", "Display name")
	password := fs.String("password", "", "Password, at least 8 characters")
	github := fs.String("github", "", "GitHub login allowed to sign in with OAuth")
	fs.Parse(args)

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		zlog.Fatal("failed to connect database", zap.Error(err))
	}

	// 创建管理员不需要 OAuth state
	authService := service.NewAuthService(repository.NewAdminRepository(db), cfg, nil)
	admin, err := authService.CreateAdmin(&dto.CreateAdminRequest{
		Email:       *email,
		Password:    *password,
		Name:        *name,
		GithubLogin: *github,
	})
	if err != nil {
		zlog.Fatal("failed to create admin", zap.Error(err))
	}
	zlog.Info("admin created", zap.String("id", admin.ID), zap.String("email", admin.Email))
}
