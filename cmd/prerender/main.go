// Package main writes the statically generated coffee store pages.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	prerendercmd "github.com/ShakhzodUsmanov/discover-coffee-stores/internal/cmd/prerender"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/platform/config"
)

func main() {
	cfg, err := prerendercmd.ParseConfig(flag.CommandLine, os.Args[1:])
	config.ExitIfError("parse flags", err)
	log.SetPrefix("[PRERENDER] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config.ExitIfError("prerender", prerendercmd.Run(ctx, cfg, os.Stdout))
}
