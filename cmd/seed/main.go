// Package main seeds the coffee store API with the fixture stores.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	seedcmd "github.com/ShakhzodUsmanov/discover-coffee-stores/internal/cmd/seed"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/platform/config"
)

func main() {
	cfg, err := seedcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	config.ExitIfError("parse flags", err)
	log.SetPrefix("[SEED] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config.ExitIfError("seed", seedcmd.Run(ctx, cfg, os.Stdout))
}
