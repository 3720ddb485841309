package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sandeepkv93/storefront-admin-console/internal/di"
	"github.com/sandeepkv93/storefront-admin-console/internal/tools/common"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := common.LoadEnvFile(envFile); err != nil {
		log.Fatal(err)
	}
	a, err := di.InitializeApp()
	if err != nil {
		log.Fatal(err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := a.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
