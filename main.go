package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"jafhe/internal/config"
	"jafhe/internal/format"
	"jafhe/internal/viewer"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:      "jafhe",
		Usage:     "view a binary file as offset, hex and text columns",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to the config file",
				Value: config.ConfigPath(),
			},
			&cli.StringFlag{
				Name:    "offset",
				Aliases: []string{"o"},
				Usage:   "start at this offset (decimal, 0x hex, 0o octal, 0b binary)",
			},
			&cli.StringFlag{
				Name:  "charset",
				Usage: "text column charset (ascii, latin1, cp437, windows-1252, ebcdic)",
			},
			&cli.IntFlag{
				Name:  "line-length",
				Usage: "bytes per row",
			},
			&cli.StringFlag{
				Name:  "log",
				Usage: "write debug log to this file",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if path := cmd.String("log"); path != "" {
		f, err := tea.LogToFile(path, "jafhe")
		if err != nil {
			return err
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	cfg, err := config.LoadFrom(cmd.String("config"))
	if err != nil {
		log.Printf("config: %v", err)
	}
	if cs := cmd.String("charset"); cs != "" {
		if _, err := format.ParseCharset(cs); err != nil {
			return err
		}
		cfg.Viewer.Charset = cs
	}
	if n := cmd.Int("line-length"); n != 0 {
		if err := cfg.SetLineLength(int(n)); err != nil {
			return err
		}
	}

	if cmd.NArg() > 1 {
		return fmt.Errorf("expected at most one file, got %d", cmd.NArg())
	}

	model, err := viewer.NewModel(cfg, cmd.Args().First())
	if err != nil {
		return err
	}
	model.SetConfigPath(cmd.String("config"))
	if off := cmd.String("offset"); off != "" {
		if err := model.Goto(off); err != nil {
			return err
		}
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	_, err = p.Run()
	return err
}
