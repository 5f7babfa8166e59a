package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"ciphr/internal/catalog"
	"ciphr/internal/engine"
)

var (
	version = "0.1.0"
	cfg     engine.Config
	list    bool

	rootCmd = &cobra.Command{
		Use:   "ciphr [expression]",
		Short: "Lazy, chunked byte-stream transformations",
		Long: `ciphr evaluates a chain of transforms over a byte stream:
digests, HMACs, base-N codecs, ciphers, XOR and compression.

  ciphr '"abc" | sha256 | hex'
  ciphr '@file.bin | aes256ctr(@key.bin) | b64'
  ciphr '@msg.b64 | ~b64 | ~aes128cbc("0123456789abcdef")'

A leading '~' runs a stage in reverse. A chain that starts with a
transform reads standard input.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "ciphr:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	f := rootCmd.Flags()
	f.StringVarP(&cfg.PipelineFile, "file", "f", "", "pipeline YAML file")
	f.StringVarP(&cfg.ConfigFile, "config", "c", "", "application config YAML")
	f.StringVarP(&cfg.Output, "output", "o", "", "write output to this file instead of stdout")
	f.BoolVarP(&cfg.Newline, "newline", "n", false, "terminate stdout output with a newline")
	f.StringVar(&cfg.LogLevel, "log-level", "", "debug, info, warn or error")
	f.StringVar(&cfg.MetricsFile, "metrics-file", "", "write prometheus counters to this file at exit")
	f.IntVar(&cfg.ChunkSize, "chunk-size", 0, "bytes requested per drain step")
	f.BoolVarP(&list, "list", "l", false, "list every transform name and exit")
}

func run(cmd *cobra.Command, args []string) error {
	if list {
		return writeKinds(cmd.OutOrStdout(), catalog.Registry())
	}
	cfg.Expr = strings.TrimSpace(strings.Join(args, " "))
	if cfg.Expr == "" && cfg.PipelineFile == "" {
		return errors.New("no expression given (see --help)")
	}

	e, err := engine.Bootstrap(cfg)
	if err != nil {
		return err
	}
	return e.Run(cmd.Context())
}
