package main

import (
	"fmt"
	"strings"

	"github.com/lsjscarlett/store-locator/internal/apiclient"
	"github.com/spf13/cobra"
)

var flushGeocode bool

var flushCmd = &cobra.Command{
	Use:   "flush-cache",
	Short: "Flush the API's search result cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.InternalAPIKey == "" {
			return fmt.Errorf("INTERNAL_API_KEY is required")
		}

		resp, err := apiclient.NewClient(cfg).FlushCache(cmd.Context(), flushGeocode)
		if err != nil {
			return err
		}
		if resp == nil {
			return fmt.Errorf("API_BASE_URL is not set")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Flushed: %s\n", strings.Join(resp.Namespaces, ", "))
		return nil
	},
}

func init() {
	flushCmd.Flags().BoolVar(&flushGeocode, "geocode", false, "also flush cached geocoding results")
	rootCmd.AddCommand(flushCmd)
}
