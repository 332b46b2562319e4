package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	arenacmd "github.com/louisbranch/quest-chronicles/internal/cmd/arena"
	"github.com/louisbranch/quest-chronicles/internal/platform/config"
)

func main() {
	cfg, err := arenacmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix("[ARENA] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := arenacmd.Run(ctx, cfg, os.Stdin, os.Stdout, os.Stderr); err != nil {
		stop()
		config.ExitCodef(arenacmd.ExitCode(err), "%s", arenacmd.ErrorMessage(cfg.Locale, err))
	}
}
