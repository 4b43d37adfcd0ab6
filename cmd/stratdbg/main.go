// stratdbg inspects the on disk state of a stratlog store: it rehydrates
// serialized tier metadata and can drain a tier's snapshot, for triage of a
// store whose orchestrator is not running.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/spf13/cobra"

	"github.com/stratlog/go-stratlog/frontier"
	"github.com/stratlog/go-stratlog/indexed"
	"github.com/stratlog/go-stratlog/storage"
)

func main() {
	logger.New("INFO")
	defer logger.OnExit()

	root := &cobra.Command{
		Use:           "stratdbg",
		Short:         "Inspect stratlog tier metadata and stored batches",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newFutureCommand())
	root.AddCommand(newTraceCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "stratdbg: %v\n", err)
		os.Exit(1)
	}
}

func newFutureCommand() *cobra.Command {
	var storeDir string
	var drain bool
	var tsLower, tsUpper uint64

	cmd := &cobra.Command{
		Use:   "future <metafile>",
		Short: "Dump a future (recent tier) meta record, optionally draining its batches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var meta indexed.FutureMeta
			if err := readMeta(args[0], &meta); err != nil {
				return err
			}
			f := indexed.NewFuture[any, any](meta)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id:          %d\n", f.Id())
			fmt.Fprintf(out, "ts_lower:    %d\n", f.TsLower())
			fmt.Fprintf(out, "seqno_upper: %d\n", f.SeqNoUpper())
			fmt.Fprintf(out, "next_blob:   %d\n", meta.NextBlobID)
			for _, b := range meta.Batches {
				fmt.Fprintf(out, "batch %s %s\n", b.Key, b.Desc)
			}
			if !drain {
				return nil
			}
			cache, err := openCache(storeDir)
			if err != nil {
				return err
			}
			var upper *frontier.Ts
			if cmd.Flags().Changed("ts-upper") {
				u := frontier.Ts(tsUpper)
				upper = &u
			}
			snap, err := f.Snapshot(context.Background(), frontier.Ts(tsLower), upper, cache)
			if err != nil {
				return err
			}
			return drainTo(out, snap)
		},
	}
	cmd.Flags().StringVar(&storeDir, "store", "", "file blob store directory (required with --drain)")
	cmd.Flags().BoolVar(&drain, "drain", false, "fetch and print the stored updates")
	cmd.Flags().Uint64Var(&tsLower, "ts-lower", 0, "closed lower time bound for the drain")
	cmd.Flags().Uint64Var(&tsUpper, "ts-upper", 0, "open upper time bound for the drain")
	return cmd
}

func newTraceCommand() *cobra.Command {
	var storeDir string
	var drain bool

	cmd := &cobra.Command{
		Use:   "trace <metafile>",
		Short: "Dump a trace (historical tier) meta record, optionally draining its batches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var meta indexed.TraceMeta
			if err := readMeta(args[0], &meta); err != nil {
				return err
			}
			t := indexed.NewTrace[any, any](meta)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id:        %d\n", t.Id())
			fmt.Fprintf(out, "since:     %d\n", t.Since())
			fmt.Fprintf(out, "ts_upper:  %d\n", t.TsUpper())
			fmt.Fprintf(out, "next_blob: %d\n", meta.NextBlobID)
			for _, b := range meta.Batches {
				fmt.Fprintf(out, "batch %s %s\n", b.Key, b.Desc)
			}
			if !drain {
				return nil
			}
			cache, err := openCache(storeDir)
			if err != nil {
				return err
			}
			snap, err := t.Snapshot(context.Background(), cache)
			if err != nil {
				return err
			}
			return drainTo(out, snap)
		},
	}
	cmd.Flags().StringVar(&storeDir, "store", "", "file blob store directory (required with --drain)")
	cmd.Flags().BoolVar(&drain, "drain", false, "fetch and print the stored updates")
	return cmd
}

type binaryUnmarshaler interface {
	UnmarshalBinary(data []byte) error
}

func readMeta(path string, meta binaryUnmarshaler) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read meta file: %w", err)
	}
	return meta.UnmarshalBinary(data)
}

func openCache(storeDir string) (*indexed.BlobCache[any, any], error) {
	if storeDir == "" {
		return nil, fmt.Errorf("--store is required to drain batches")
	}
	blob, err := storage.NewFileBlob(storeDir)
	if err != nil {
		return nil, err
	}
	return indexed.NewBlobCache[any, any](logger.Sugar.WithServiceName("stratdbg"), blob), nil
}

func drainTo(out io.Writer, snap indexed.Snapshot[any, any]) error {
	for _, u := range indexed.ReadAll(snap) {
		fmt.Fprintf(out, "%v\t%v\t%d\t%+d\n", u.Key, u.Val, u.Time, u.Diff)
	}
	return nil
}
