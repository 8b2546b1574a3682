// Command imagepile is the CLI front end for the content-addressed block
// dedup store: it ingests a byte stream into a Pool/Index pair and emits an
// image descriptor (add), reconstructs an image from a descriptor (read),
// and reports on the state of a Pool directory (verify, stat).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

		select {
		case <-interrupt:
		case <-ctx.Done():
		}
		cancel()
		signal.Stop(interrupt)
	}()

	log, err := newLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	app := &cli.App{
		Name:        "imagepile",
		Usage:       "content-addressed block dedup store for disk images",
		Description: "Splits disk images into fixed-size blocks, deduplicates them against a shared pool, and reconstructs them from lightweight descriptors.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "pool-dir",
				Aliases: []string{"d"},
				Usage:   "directory holding the pool and index files (overrides IMGDIR)",
				EnvVars: []string{"IMGDIR"},
			},
		},
		Commands: []*cli.Command{
			newAddCommand(log),
			newReadCommand(log),
			newVerifyCommand(log),
			newStatCommand(log),
		},
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.CommandsByName(app.Commands))

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Errorw("imagepile command failed", "error", err)
		os.Exit(exitCodeFor(err))
	}
}

func newLogger() (*zap.SugaredLogger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.TimeKey = ""
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
