// ucitap - Chess Engine Log Filter
//
// ucitap reads chess engine output and keeps only the search progress
// numbers: the depth reached and the time spent getting there.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/joeljk13/ucitap/internal/cli"
)

func main() {
	// Optional .env for UCITAP_* and AWS settings. Missing file is fine.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(cli.Execute(ctx))
}
