package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smokyabdulrahman/qiyam/internal/cli"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=v1.0.0"
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	// Bounds a month of retried API calls; a stuck request must not hang a status bar.
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)

	rootCmd := cli.NewRootCmd(version)
	err := rootCmd.ExecuteContext(ctx)
	cancel()
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
