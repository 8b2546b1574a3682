package main

import (
	"fmt"
	"io"
	"os"

	"github.com/iamNilotpal/imagepile/internal/ingest"
	"github.com/iamNilotpal/imagepile/internal/store"
	"github.com/iamNilotpal/imagepile/pkg/errors"
	"github.com/iamNilotpal/imagepile/pkg/progress"
	"github.com/iamNilotpal/imagepile/pkg/tmpfile"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func newAddCommand(log *zap.SugaredLogger) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "ingest a byte stream into the pool and emit an image descriptor",
		ArgsUsage: "<input> <descriptor-out>",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  "head-skip",
				Usage: "number of bytes to omit from the start of the first block",
				Value: 0,
			},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 2 {
				return errors.NewValidationError(
					nil, errors.ErrorCodeInvalidInput, "add requires exactly two arguments: <input> <descriptor-out>",
				).WithField("args").WithRule("arity").WithProvided(c.Args().Len()).WithExpected(2)
			}
			return runAdd(c, log, c.Args().Get(0), c.Args().Get(1), uint32(c.Uint("head-skip")))
		},
	}
}

func runAdd(c *cli.Context, log *zap.SugaredLogger, inputPath, outputPath string, headSkip uint32) error {
	s, opts, err := openStore(c.Context, c, log)
	if err != nil {
		return err
	}
	defer s.Close()

	input, err := openInput(inputPath)
	if err != nil {
		return errors.NewDescriptorError(err, errors.ErrorCodeIO, "failed to open ingest input")
	}
	defer input.Close()

	cs := store.NewCriticalSection()
	defer cs.Stop()

	pipeline, err := ingest.New(&ingest.Config{Store: s, CriticalSection: cs, Logger: log})
	if err != nil {
		return err
	}

	if outputPath == stdioSentinel {
		return runAddViaScratchFile(pipeline, opts.PoolDir, input, headSkip, log)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return errors.NewDescriptorError(err, errors.ErrorCodeIO, "failed to create descriptor output file")
	}
	defer out.Close()

	blocks, err := pipeline.Ingest(input, out, headSkip)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "ingested %s, pool now has %s\n", progress.Blocks(uint32(blocks)), progress.Blocks(s.Pool.BlockCount()))
	return nil
}

// runAddViaScratchFile stages the descriptor in a seekable temp file next
// to the pool so Ingest can rewrite tail_bytes in place, then copies the
// corrected descriptor to stdout (SPEC_FULL.md §6.2).
func runAddViaScratchFile(pipeline *ingest.Pipeline, poolDir string, input io.Reader, headSkip uint32, log *zap.SugaredLogger) error {
	scratch, err := tmpfile.Create(poolDir, "descriptor", "ipil")
	if err != nil {
		return errors.NewDescriptorError(err, errors.ErrorCodeIO, "failed to create descriptor scratch file")
	}
	scratchPath := scratch.Name()
	defer func() {
		scratch.Close()
		if rerr := tmpfile.Remove(scratchPath); rerr != nil {
			log.Errorw("failed to remove descriptor scratch file", "path", scratchPath, "error", rerr)
		}
	}()

	if _, err := pipeline.Ingest(input, scratch, headSkip); err != nil {
		return err
	}

	if _, err := scratch.Seek(0, io.SeekStart); err != nil {
		return errors.NewDescriptorError(err, errors.ErrorCodeIO, "failed to seek scratch descriptor for copy")
	}

	if _, err := io.Copy(os.Stdout, scratch); err != nil {
		return errors.NewDescriptorError(err, errors.ErrorCodeIO, "failed to copy descriptor to stdout")
	}

	return nil
}
