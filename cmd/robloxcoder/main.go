package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/webcreatorLuke/roblox-code-bot/internal/infrastructure/cli"
)

func main() {
	// .env is optional.
	_ = godotenv.Load()

	root, cleanup := cli.NewRootCmd(cli.Options{Verbose: isVerbose()})
	err := root.ExecuteContext(context.Background())
	cleanup()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func isVerbose() bool {
	v := os.Getenv("ROBLOXCODER_DEBUG")
	return v == "1" || strings.EqualFold(v, "true")
}
