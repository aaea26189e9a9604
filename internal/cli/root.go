package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"courserec/config"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "courserec",
	Short: "Course recommender - match student profiles against a course catalog",
	Long: `courserec recommends courses by embedding a course catalog and a student
profile into the same vector space and ranking by semantic similarity.
Course vectors are cached on disk and rebuilt when the catalog changes.

Example usage:
  courserec recommend -b "CS student" -g "data scientist" -i "ML, statistics"
  courserec rebuild               # Force vector regeneration
  courserec status                # Inspect catalog and cache state`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Load .env file if present (for embedding and explanation API keys)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./courserec.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}

// dataDir resolves the configured catalog directory against the root dir.
func dataDir() string {
	if filepath.IsAbs(cfg.Catalog.DataDir) {
		return cfg.Catalog.DataDir
	}
	return filepath.Join(rootDir, cfg.Catalog.DataDir)
}
