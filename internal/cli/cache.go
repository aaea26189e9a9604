package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the persisted vector cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete cached course vectors",
	Long: `Delete the persisted vectors and fingerprint. The next recommendation
request will re-embed the catalog from scratch.

Example:
  courserec cache clear`,
	RunE: runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	rec, closeCache, err := newRecommender()
	if err != nil {
		return err
	}
	defer closeCache()

	if err := rec.Invalidate(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	fmt.Println("Vector cache cleared.")
	return nil
}
