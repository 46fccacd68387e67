// Command cssdump feeds a stylesheet file through the parser in
// fixed-size chunks and prints a disassembly of the resulting rules,
// for manual inspection of the bytecode a given stylesheet produces.
package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"cssbc/css"
	"cssbc/css/strpool"
)

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func main() {
	app := &cli.Command{
		Name:            "cssdump",
		Usage:           "parses a CSS file and prints its compiled bytecode",
		HideHelpCommand: true,
		OnUsageError:    usageErrorHandler,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "chunk", Aliases: []string{"c"}, Value: 4096, Usage: "feed the input in chunks of `BYTES` (exercises the streaming parser)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "enable debug logging"},
		},
		ArgsUsage: "FILE",
		Action:    run,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "cssdump: %v\n", err)
		os.Exit(1)
	}
}

func run(_ context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("expected exactly one FILE argument")
	}

	log := zap.NewNop()
	if cmd.Bool("debug") {
		var err error
		log, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("unable to set up logging: %w", err)
		}
		defer log.Sync()
	}

	data, err := os.ReadFile(cmd.Args().First())
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	pool := strpool.New()
	sheet, err := css.NewStylesheet(pool, css.StylesheetParams{Level: css.Level3}, log)
	if err != nil {
		return fmt.Errorf("creating stylesheet: %w", err)
	}

	chunk := int(cmd.Int("chunk"))
	if chunk <= 0 {
		chunk = len(data)
		if chunk == 0 {
			chunk = 1
		}
	}
	for off := 0; off < len(data); off += chunk {
		end := off + chunk
		if end > len(data) {
			end = len(data)
		}
		if err := sheet.AppendData(data[off:end]); err != nil {
			return fmt.Errorf("appending data: %w", err)
		}
	}
	if err := sheet.DataDone(); err != nil {
		log.Warn("stylesheet had recoverable errors", zap.Error(err))
	}

	fmt.Printf("rules: %d  words: %d\n\n", len(sheet.Rules()), sheet.Size())
	for i, r := range sheet.Rules() {
		fmt.Printf("rule %d: %d selector(s), %d word(s)\n", i, len(r.Selectors), r.Style.Len())
		for _, sel := range r.Selectors {
			fmt.Printf("  %-40s specificity=(%d,%d,%d)\n", sel.Raw, sel.Specificity.IDs, sel.Specificity.Classes, sel.Specificity.Types)
		}
		for _, w := range r.Style.Words() {
			fmt.Printf("    opcode=%-4d flags=%02x value=%-5d\n", w.Opcode(), w.Flags(), w.Value())
		}
	}
	return nil
}
