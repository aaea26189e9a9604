package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show catalog and vector cache status",
	Long: `Report the number of catalog courses, whether a vector cache exists,
and whether it is fresh for the current catalog content.

Example:
  courserec status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	rec, closeCache, err := newRecommender()
	if err != nil {
		return err
	}
	defer closeCache()

	st, err := rec.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("status check failed: %w", err)
	}

	if statusJSON {
		data, _ := json.MarshalIndent(st, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	fmt.Println("Dataset status:")
	fmt.Printf("  Total courses: %d\n", st.Courses)
	fmt.Printf("  Cache exists:  %v\n", st.CacheExists)
	if st.Corrupt {
		fmt.Println("  Cache state:   corrupt (will be rebuilt on next request)")
		return nil
	}
	if st.CacheExists {
		fmt.Printf("  Cache fresh:   %v\n", st.Fresh)
		fmt.Printf("  Model:         %s (dimension %d)\n", st.ModelName, st.Dimension)
		if st.BuiltAt != nil {
			fmt.Printf("  Built at:      %s\n", st.BuiltAt.Format("2006-01-02 15:04:05"))
		}
	}
	return nil
}
