// Package main is the timeline history inspection tool.
//
// It operates on export documents produced by the timeline engine:
//
//	timeline stats history.json     Show per-state and aggregate statistics
//	timeline verify history.json    Decode every state and report problems
//	timeline archive history.json   Append the document to the save archive
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/easelhq/timeline"
	"github.com/easelhq/timeline/codec"
	"github.com/easelhq/timeline/persist"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var configPath string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&configPath, "c", "", "Path to configuration file (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "timeline - history export inspection tool\n\n")
		fmt.Fprintf(os.Stderr, "Usage: timeline [options] <command> <export-file>\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  stats    Show per-state and aggregate statistics\n")
		fmt.Fprintf(os.Stderr, "  verify   Decode every state and report problems\n")
		fmt.Fprintf(os.Stderr, "  archive  Append the document to the save archive\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("timeline %s (%s)\n", version, commit)
		return 0
	}

	args := flag.Args()
	if len(args) < 2 {
		flag.Usage()
		return 2
	}
	command, path := args[0], args[1]

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: load config: %v\n", err)
		return 1
	}

	switch command {
	case "stats":
		err = runStats(path)
	case "verify":
		err = runVerify(path)
	case "archive":
		err = runArchive(cfg, path)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", command)
		flag.Usage()
		return 2
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// openExport loads an export document into a manager configured with the
// document's own codec and compressor, and budgets large enough that the
// import cannot evict anything.
func openExport(path string) (*timeline.Manager[map[string]any], []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	_, codecName, compressorName, err := timeline.PeekExport(data)
	if err != nil {
		return nil, nil, err
	}

	cd, ok := codec.ByName(codecName)
	if !ok {
		return nil, nil, fmt.Errorf("unknown codec %q in export", codecName)
	}
	cp, ok := codec.CompressorByName(compressorName)
	if !ok {
		return nil, nil, fmt.Errorf("unknown compressor %q in export", compressorName)
	}

	m := timeline.New[map[string]any](
		timeline.WithCodec(cd),
		timeline.WithCompressor(cp),
		timeline.WithMaxEntries(1<<30),
		timeline.WithMemoryBudget(1<<20),
	)
	if err := m.Import(data); err != nil {
		return nil, nil, err
	}
	return m, data, nil
}

func runStats(path string) error {
	m, _, err := openExport(path)
	if err != nil {
		return err
	}
	defer m.Close()

	entries := m.Entries()
	stats := m.Stats()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tACTION\tCATEGORY\tDESCRIPTION\tSIZE\tZIP\tELEMENTS\tAGE")
	for i, e := range entries {
		zip := ""
		if e.Compressed {
			zip = "*"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			i, e.ActionType, e.Category, e.Description,
			humanize.Bytes(uint64(e.MemorySize)), zip, len(e.ElementIDs),
			humanize.Time(e.Timestamp))
	}
	w.Flush()

	fmt.Printf("\n%d states (%d undoable, %d redoable), %s stored\n",
		stats.TotalStates, stats.UndoableStates, stats.RedoableStates,
		humanize.Bytes(uint64(stats.MemoryUsage)))
	return nil
}

func runVerify(path string) error {
	m, _, err := openExport(path)
	if err != nil {
		return err
	}
	defer m.Close()

	states, err := m.History()
	if err != nil {
		return fmt.Errorf("decode states: %w", err)
	}

	fmt.Printf("OK: %d states decoded\n", len(states))
	return nil
}

func runArchive(cfg *Config, path string) error {
	m, data, err := openExport(path)
	if err != nil {
		return err
	}
	m.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := os.MkdirAll(filepath.Dir(cfg.ArchiveDB), 0o755); err != nil {
		return fmt.Errorf("create archive directory: %w", err)
	}
	sink, err := persist.OpenSQLite(ctx, cfg.ArchiveDB)
	if err != nil {
		return err
	}
	defer sink.Close()

	if err := sink.Save(ctx, data); err != nil {
		return err
	}
	pruned, err := sink.Prune(ctx, cfg.ArchiveKeep)
	if err != nil {
		return err
	}

	fmt.Printf("archived %s to %s", humanize.Bytes(uint64(len(data))), cfg.ArchiveDB)
	if pruned > 0 {
		fmt.Printf(" (pruned %d old saves)", pruned)
	}
	fmt.Println()
	return nil
}
