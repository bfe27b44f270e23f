package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/glucowatch/internal/cache"
	"github.com/blackwell-systems/glucowatch/internal/config"
	"github.com/blackwell-systems/glucowatch/internal/output"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "List or clear cached analysis results",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached analysis results",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCacheStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		entries, err := store.List()
		if err != nil {
			return fmt.Errorf("listing cache entries: %w", err)
		}

		if flagJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}

		if len(entries) == 0 {
			fmt.Println("Cache is empty.")
			return nil
		}

		tbl := output.NewTable("Fingerprint", "Cached At", "Size")
		for _, e := range entries {
			tbl.AddRow(e.Fingerprint[:12], e.CreatedAt.Local().Format("2006-01-02 15:04"),
				fmt.Sprintf("%d B", e.SizeBytes))
		}
		tbl.Print()
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached analysis results",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCacheStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		n, err := store.Clear()
		if err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
		fmt.Printf("Removed %d cached result(s).\n", n)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func openCacheStore() (*cache.Store, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if flagNoColor {
		output.SetNoColor(true)
	}
	store, err := cache.Open(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return store, nil
}
