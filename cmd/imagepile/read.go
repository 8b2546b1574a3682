package main

import (
	"fmt"
	"os"

	"github.com/iamNilotpal/imagepile/internal/reconstruct"
	"github.com/iamNilotpal/imagepile/pkg/errors"
	"github.com/iamNilotpal/imagepile/pkg/progress"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func newReadCommand(log *zap.SugaredLogger) *cli.Command {
	return &cli.Command{
		Name:      "read",
		Usage:     "reconstruct the original bytes from an image descriptor",
		ArgsUsage: "<descriptor-in> <output>",
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 2 {
				return errors.NewValidationError(
					nil, errors.ErrorCodeInvalidInput, "read requires exactly two arguments: <descriptor-in> <output>",
				).WithField("args").WithRule("arity").WithProvided(c.Args().Len()).WithExpected(2)
			}
			return runRead(c, log, c.Args().Get(0), c.Args().Get(1))
		},
	}
}

func runRead(c *cli.Context, log *zap.SugaredLogger, descriptorPath, outputPath string) error {
	s, _, err := openStore(c.Context, c, log)
	if err != nil {
		return err
	}
	defer s.Close()

	descriptor, err := openInput(descriptorPath)
	if err != nil {
		return errors.NewDescriptorError(err, errors.ErrorCodeIO, "failed to open descriptor input")
	}
	defer descriptor.Close()

	var output *os.File
	if outputPath == stdioSentinel {
		output = os.Stdout
	} else {
		output, err = os.Create(outputPath)
		if err != nil {
			return errors.NewDescriptorError(err, errors.ErrorCodeIO, "failed to create reconstructed output file")
		}
		defer output.Close()
	}

	pipeline, err := reconstruct.New(&reconstruct.Config{Store: s, Logger: log})
	if err != nil {
		return err
	}

	blocks, err := pipeline.Reconstruct(descriptor, output)
	if err != nil {
		return err
	}

	if outputPath != stdioSentinel {
		fmt.Fprintf(c.App.Writer, "reconstructed %s\n", progress.Blocks(uint32(blocks)))
	}
	return nil
}
