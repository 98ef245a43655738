package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/lsjscarlett/store-locator/internal/apiclient"
	"github.com/lsjscarlett/store-locator/internal/bulk"
	"github.com/lsjscarlett/store-locator/internal/logger"
	"github.com/lsjscarlett/store-locator/internal/services"
	"github.com/lsjscarlett/store-locator/internal/storecsv"
	"github.com/lsjscarlett/store-locator/internal/validation"
	"github.com/spf13/cobra"
)

var importNoFlush bool

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Bulk-import stores from a CSV file",
	Long: `Parse a store CSV and upsert every valid row in a single transaction.
Existing store ids update name, store_type, status, phone and services; new
ids are inserted in full. The API's search cache is flushed afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		return runImport(cmd.Context(), f, cmd.OutOrStdout())
	},
}

func init() {
	importCmd.Flags().BoolVar(&importNoFlush, "no-flush", false, "do not flush the API search cache")
	rootCmd.AddCommand(importCmd)
}

func runImport(ctx context.Context, r io.Reader, out io.Writer) error {
	log := logger.GetLogger("import")

	inputs, rejected, err := readStores(r)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		fmt.Fprintf(out, "No valid rows (%d rejected)\n", rejected)
		return nil
	}

	db, err := bulk.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.ImportStores(ctx, inputs)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Import completed: created=%d updated=%d errors=%d\n", stats.Created, stats.Updated, rejected)

	if importNoFlush {
		return nil
	}
	if _, err := apiclient.NewClient(cfg).FlushCache(ctx, false); err != nil {
		// 캐시는 TTL로도 만료되므로 실패해도 import는 성공
		log.Warnf("Search cache flush failed: %v", err)
	}
	return nil
}

// readStores parses and validates the CSV. Invalid rows are counted and
// logged; the last row wins when a store id repeats.
func readStores(r io.Reader) ([]services.StoreInput, int, error) {
	log := logger.GetLogger("import")

	parsed, err := storecsv.Parse(r)
	if err != nil {
		return nil, 0, err
	}

	rejected := len(parsed.Errors)
	for _, rowErr := range parsed.Errors {
		log.Warnf("Row skipped: %v", rowErr)
	}

	index := make(map[string]int, len(parsed.Rows))
	inputs := make([]services.StoreInput, 0, len(parsed.Rows))
	for _, row := range parsed.Rows {
		in := services.RowInput(row)
		if err := validation.Struct(in); err != nil {
			rejected++
			log.Warnf("Line %d invalid: %v", row.Line, validation.Details(err))
			continue
		}
		if i, ok := index[in.StoreID]; ok {
			inputs[i] = in
			continue
		}
		index[in.StoreID] = len(inputs)
		inputs = append(inputs, in)
	}
	return inputs, rejected, nil
}
