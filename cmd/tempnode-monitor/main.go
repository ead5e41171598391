// Command tempnode-monitor prints the diagnostic stream of a sensor node
// connected over a serial port.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tempnode/host/monitor"
	"tempnode/host/serial"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	baud    int
	timeout int
	json    bool
	verbose bool
}

func newRootCommand() *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:           "tempnode-monitor <device>",
		Short:         "Decode and log a sensor node's diagnostic UART",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := serial.DefaultConfig(args[0])
			cfg.Baud = opts.baud
			cfg.ReadTimeout = opts.timeout

			port, err := serial.Open(cfg)
			if err != nil {
				return err
			}
			defer port.Close()

			return run(cmd.Context(), cmd.OutOrStdout(), port, opts)
		},
	}
	root.PersistentFlags().BoolVar(&opts.json, "json", false, "Log as JSON")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Show debug-level node output")
	root.Flags().IntVar(&opts.baud, "baud", serial.DefaultBaud, "Serial baud rate")
	root.Flags().IntVar(&opts.timeout, "read-timeout", 200, "Serial read timeout in milliseconds")

	root.AddCommand(newDecodeCommand(&opts))
	return root
}

func newDecodeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <capture-file>",
		Short: "Decode a raw capture of the diagnostic stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "open capture")
			}
			defer f.Close()
			return run(cmd.Context(), cmd.OutOrStdout(), f, *opts)
		},
	}
}

func run(ctx context.Context, out io.Writer, r io.Reader, opts options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := monitor.NewLogger(out, opts.json, opts.verbose)
	defer func() { _ = logger.Sync() }()

	m := monitor.New(logger.Sugar())
	err := m.Run(ctx, r)

	st := m.Stats()
	logger.Info("stream closed",
		zap.Int("records", st.Records),
		zap.Int("uplinks", st.Uplinks),
		zap.Int("collisions", st.Collisions),
		zap.Int("bad_frames", st.BadFrames),
		zap.Int("lost", st.Lost),
	)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
