package main

import (
	"fmt"

	"github.com/iamNilotpal/imagepile/pkg/errors"
	"github.com/iamNilotpal/imagepile/pkg/fingerprint"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func newVerifyCommand(log *zap.SugaredLogger) *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "check that the pool and index agree, optionally recomputing every block's fingerprint",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "deep",
				Usage: "re-read every pool block and recompute its fingerprint against the index",
			},
		},
		Action: func(c *cli.Context) error {
			return runVerify(c, log, c.Bool("deep"))
		},
	}
}

// runVerify re-derives I1 (index record count equals pool block count,
// which store.Open already enforces at open time, so a failure here means
// either file changed between processes or a bug) and, with --deep, walks
// every pool block recomputing its fingerprint against the persisted index
// record at the same ordinal.
func runVerify(c *cli.Context, log *zap.SugaredLogger, deep bool) error {
	s, _, err := openStore(c.Context, c, log)
	if err != nil {
		return err
	}
	defer s.Close()

	blocks := s.Pool.BlockCount()
	records := s.Index.Records()
	if blocks != records {
		return errors.NewLockstepViolationError(int(records), int(blocks))
	}
	fmt.Fprintf(c.App.Writer, "ok: %d pool blocks, %d index records\n", blocks, records)

	if !deep {
		return nil
	}

	buf := make([]byte, s.Pool.BlockSize())
	mismatches := 0

	if err := s.Index.Iterate(func(ordinal uint32, want fingerprint.Fingerprint) error {
		if err := s.Pool.Read(ordinal, buf); err != nil {
			return err
		}
		got := fingerprint.Of(buf)
		if got != want {
			mismatches++
			fmt.Fprintf(c.App.Writer, "mismatch at ordinal %d: index has %x, pool block hashes to %x\n", ordinal, uint64(want), uint64(got))
		}
		return nil
	}); err != nil {
		return err
	}

	if mismatches > 0 {
		return errors.NewIndexError(
			nil, errors.ErrorCodeIndexLockstepViolation, "deep verification found fingerprint mismatches",
		).WithOperation("verify").WithDetail("mismatches", mismatches)
	}

	fmt.Fprintf(c.App.Writer, "deep: all %d blocks match their index fingerprint\n", blocks)
	return nil
}
