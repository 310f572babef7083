package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/kkrtools/kkr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

var ErrParseFailed = errors.New("parsing failed")

var format string

var parseCmd = &cobra.Command{
	Use:   "parse [dir...]",
	Short: "Parse the KKR runs in each directory",
	Long: `Parses every run directory concurrently and prints one document
per directory, in the order given. Exits non-zero if any run did not
parse cleanly.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&format, "format", "f", "json",
		"output format, json or yaml")
}

// Output is what gets printed for one run directory
type Output struct {
	Dir      string      `json:"dir" yaml:"dir"`
	Success  bool        `json:"success" yaml:"success"`
	Errors   []string    `json:"errors" yaml:"errors"`
	Warnings []string    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Record   *kkr.Record `json:"record" yaml:"record"`
}

func runParse(cmd *cobra.Command, dirs []string) error {
	if format != "json" && format != "yaml" {
		return fmt.Errorf("unknown format %q", format)
	}
	p := kkr.NewParser(conf, logger)
	outs := make([]Output, len(dirs))
	var eg errgroup.Group
	eg.SetLimit(runtime.NumCPU())
	for i, dir := range dirs {
		i, dir := i, dir
		eg.Go(func() error {
			res := p.ParseDir(dir, conf.Seed())
			outs[i] = Output{
				Dir:      dir,
				Success:  res.Success,
				Errors:   res.Errors,
				Warnings: res.Warnings,
				Record:   res.Record,
			}
			return nil
		})
	}
	eg.Wait()
	if err := writeOutputs(cmd.OutOrStdout(), outs); err != nil {
		return err
	}
	var failed int
	for _, out := range outs {
		if !out.Success {
			logger.Info("run did not parse cleanly", zap.String("dir", out.Dir))
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d runs", ErrParseFailed, failed, len(outs))
	}
	return nil
}

func writeOutputs(w io.Writer, outs []Output) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(4)
		for _, out := range outs {
			if err := enc.Encode(out); err != nil {
				return err
			}
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	for _, out := range outs {
		if err := enc.Encode(out); err != nil {
			return err
		}
	}
	return nil
}
