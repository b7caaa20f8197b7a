package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"p2pex.com/internal/p2p/app"
)

func main() {
	// 支持 Ctrl+C / kubernetes 停止信号
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("p2p-service exit with error: %v", err)
	}
}
