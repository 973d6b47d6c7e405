package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	exportOut    string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the enriched case table as CSV or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportFormat != "csv" && exportFormat != "json" {
			return fmt.Errorf("invalid --format %q (valid: csv, json)", exportFormat)
		}
		res, _, _, err := runPipeline(cmd)
		if noCases(err) {
			return nil
		}
		if err != nil {
			return err
		}

		err = exportTo(exportOut, func(w io.Writer) error {
			if exportFormat == "json" {
				return encodeJSON(w, res)
			}
			return res.Table().WriteCSV(w)
		})
		if err != nil {
			return err
		}
		if exportOut != "" && exportOut != "-" {
			logger.Info("exported cases", zap.String("path", exportOut), zap.Int("rows", len(res.Cases)))
		}
		return nil
	},
}

// exportTo runs write against stdout, or against path when one is given.
func exportTo(path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := writeAndClose(f, write); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// writeAndClose closes wc after write and reports the first error of the two.
func writeAndClose(wc io.WriteCloser, write func(io.Writer) error) error {
	err := write(wc)
	if cerr := wc.Close(); err == nil {
		err = cerr
	}
	return err
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default stdout)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv or json")
	addQueryFlags(exportCmd)
	rootCmd.AddCommand(exportCmd)
}
