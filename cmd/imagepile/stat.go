package main

import (
	"fmt"
	"io"

	"github.com/iamNilotpal/imagepile/internal/descriptor"
	"github.com/iamNilotpal/imagepile/pkg/errors"
	"github.com/iamNilotpal/imagepile/pkg/progress"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func newStatCommand(log *zap.SugaredLogger) *cli.Command {
	return &cli.Command{
		Name:      "stat",
		Usage:     "report pool/index size and, given a descriptor, its dedup ratio",
		ArgsUsage: "[descriptor-in]",
		Action: func(c *cli.Context) error {
			var descriptorPath string
			if c.Args().Len() > 0 {
				descriptorPath = c.Args().Get(0)
			}
			return runStat(c, log, descriptorPath)
		},
	}
}

func runStat(c *cli.Context, log *zap.SugaredLogger, descriptorPath string) error {
	s, _, err := openStore(c.Context, c, log)
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Fprintf(c.App.Writer, "pool: %s (%s)\n",
		progress.Blocks(s.Pool.BlockCount()),
		progress.Bytes(uint64(s.Pool.BlockCount())*uint64(s.Pool.BlockSize())))
	fmt.Fprintf(c.App.Writer, "index: %d records\n", s.Index.Records())

	if descriptorPath == "" {
		return nil
	}

	in, err := openInput(descriptorPath)
	if err != nil {
		return errors.NewDescriptorError(err, errors.ErrorCodeIO, "failed to open descriptor for stat")
	}
	defer in.Close()

	header, err := descriptor.ReadHeader(in)
	if err != nil {
		return err
	}

	seen := make(map[uint32]struct{})
	referenced := uint32(0)
	ords := descriptor.NewOrdinalReader(in)
	for {
		ord, _, err := ords.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		referenced++
		seen[ord] = struct{}{}
	}

	fmt.Fprintf(c.App.Writer, "descriptor: head_skip=%d tail_bytes=%d\n", header.HeadSkip, header.TailBytes)
	fmt.Fprintf(c.App.Writer, "dedup ratio: %s\n", progress.DedupRatio(referenced, uint32(len(seen))))
	return nil
}
