package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"courserec/internal/adapter/llm"
	"courserec/internal/domain"
	"courserec/internal/usecase"
)

var (
	recBackground string
	recGoal       string
	recInterests  string
	recTopK       int
	recDuration   string
	recLevel      string
	recJSON       bool
	recExplain    bool
	recPath       bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend courses for a student profile",
	Long: `Rank catalog courses against a student profile by semantic similarity.

Examples:
  courserec recommend -b "CS undergrad" -g "data scientist" -i "ML, statistics"
  courserec recommend -b "bootcamp grad" -g "backend engineer" -i "Go, APIs" --duration weeks --level Beginner
  courserec recommend -b "analyst" -g "ML engineer" -i "Python" --explain --json`,
	RunE: runRecommend,
}

func init() {
	rootCmd.AddCommand(recommendCmd)
	recommendCmd.Flags().StringVarP(&recBackground, "background", "b", "", "student background (required)")
	recommendCmd.Flags().StringVarP(&recGoal, "goal", "g", "", "career goal (required)")
	recommendCmd.Flags().StringVarP(&recInterests, "interests", "i", "", "interests (required)")
	recommendCmd.Flags().IntVarP(&recTopK, "top-k", "k", 0, "number of results (default from config)")
	recommendCmd.Flags().StringVar(&recDuration, "duration", "", "filter: course duration contains this text")
	recommendCmd.Flags().StringVar(&recLevel, "level", "", "filter: exact course level (case-insensitive)")
	recommendCmd.Flags().BoolVar(&recJSON, "json", false, "output as JSON")
	recommendCmd.Flags().BoolVar(&recExplain, "explain", false, "generate a per-course explanation")
	recommendCmd.Flags().BoolVar(&recPath, "path", false, "suggest a learning path over the results")
	recommendCmd.MarkFlagRequired("background")
	recommendCmd.MarkFlagRequired("goal")
	recommendCmd.MarkFlagRequired("interests")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	rec, closeCache, err := newRecommender()
	if err != nil {
		return err
	}
	defer closeCache()

	profile := domain.StudentProfile{
		Background: recBackground,
		CareerGoal: recGoal,
		Interests:  recInterests,
	}

	ctx := cmd.Context()
	filtered := recDuration != "" || recLevel != ""

	var results []domain.Recommendation
	if filtered {
		topK := recTopK
		if topK <= 0 {
			topK = cfg.Recommend.FilteredTopK
		}
		results, err = rec.RecommendFiltered(ctx, profile, recDuration, recLevel, topK)
	} else {
		topK := recTopK
		if topK <= 0 {
			topK = cfg.Recommend.TopK
		}
		results, err = rec.Recommend(ctx, profile, topK)
	}
	if err != nil {
		return fmt.Errorf("recommendation failed: %w", err)
	}

	// Ranking is done; explanations are best-effort extras on top.
	var pathSuggestion domain.Explanation
	if recExplain || recPath {
		explainer := newExplainer()
		if recExplain {
			for i := range results {
				results[i].Explanation = explainer.ExplainCourse(ctx, results[i].Course, profile).Text
			}
		}
		if recPath && len(results) > 0 {
			titles := make([]string, len(results))
			for i, r := range results {
				titles[i] = r.Course.Title
			}
			pathSuggestion = explainer.SuggestPath(ctx, titles, profile.CareerGoal)
		}
	}

	if recJSON {
		out := struct {
			Recommendations []domain.Recommendation `json:"recommendations"`
			LearningPath    string                  `json:"learning_path,omitempty"`
		}{results, pathSuggestion.Text}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No matching courses found.")
		return nil
	}

	fmt.Printf("Top %d recommendations:\n\n", len(results))
	for i, r := range results {
		fmt.Printf("--- [%d] %s (%s) ---\n", i+1, r.Course.Title, r.Course.Provider)
		fmt.Printf("    %s | %s | rating %.1f\n", r.Course.Duration, r.Course.Level, r.Course.Rating)
		fmt.Printf("    %s - %d%% (%s)\n", usecase.ScoreLabel(r.SimilarityScore), r.MatchPercentage, scoreString(r.SimilarityScore))
		fmt.Printf("    %s\n", r.Course.Description)
		if r.Explanation != "" {
			fmt.Printf("    Why: %s\n", r.Explanation)
		}
		fmt.Println()
	}

	if pathSuggestion.Text != "" {
		fmt.Printf("Suggested path: %s\n", pathSuggestion.Text)
	}

	return nil
}

func scoreString(score float64) string {
	return fmt.Sprintf("similarity %.3f", score)
}

// newExplainer builds the explanation pipeline. A missing API key or
// disabled config yields an explainer that always falls back, so ranking
// output is never blocked.
func newExplainer() *usecase.Explainer {
	timeout := time.Duration(cfg.Explain.TimeoutSeconds) * time.Second

	if !cfg.Explain.Enabled {
		return usecase.NewExplainer(nil, timeout)
	}

	client, err := llm.NewOpenAIChat(cfg.Explain.APIKeyEnv,
		llm.WithBaseURL(cfg.Explain.BaseURL),
		llm.WithModel(cfg.Explain.Model),
		llm.WithTimeout(timeout),
		llm.WithRequestsPerSec(cfg.Explain.RequestsPerSec),
	)
	if err != nil {
		fmt.Printf("Warning: explanations unavailable: %v\n", err)
		return usecase.NewExplainer(nil, timeout)
	}
	return usecase.NewExplainer(client, timeout)
}
