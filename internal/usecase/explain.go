package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"courserec/internal/domain"
	"courserec/internal/port"
)

// defaultExplainTimeout bounds one explanation call so slow generation never
// blocks returning recommendations.
const defaultExplainTimeout = 15 * time.Second

// pathFallback is returned when learning-path generation fails.
const pathFallback = "Start with the fundamentals and gradually move to specialized topics."

// Explainer generates natural-language justifications for recommendations.
// Generation failures are absorbed here: callers always get usable text, and
// the Fallback flag says whether it was generated or canned.
type Explainer struct {
	llm     port.LLM
	timeout time.Duration
}

// NewExplainer creates an explainer over the given text model. timeout <= 0
// uses the default.
func NewExplainer(llm port.LLM, timeout time.Duration) *Explainer {
	if timeout <= 0 {
		timeout = defaultExplainTimeout
	}
	return &Explainer{llm: llm, timeout: timeout}
}

// ExplainCourse asks the model why the course fits the student. On any
// error the deterministic fallback sentence is returned instead.
func (e *Explainer) ExplainCourse(ctx context.Context, course domain.Course, profile domain.StudentProfile) domain.Explanation {
	prompt := fmt.Sprintf(`Student Background: %s
Career Goal: %s
Recommended Course: %s
Course Description: %s

Explain in 2-3 sentences why this course is a good fit for this student:`,
		profile.Background, profile.CareerGoal, course.Title, course.Description)

	text, err := e.generate(ctx, prompt)
	if err != nil {
		return domain.Explanation{
			Text:     fmt.Sprintf("This course matches your interests in %s and builds relevant skills.", profile.CareerGoal),
			Fallback: true,
		}
	}
	return domain.Explanation{Text: text}
}

// SuggestPath asks the model for an ordering of the recommended courses.
// On any error the deterministic fallback sentence is returned instead.
func (e *Explainer) SuggestPath(ctx context.Context, titles []string, careerGoal string) domain.Explanation {
	if len(titles) > 3 {
		titles = titles[:3]
	}
	prompt := fmt.Sprintf(`Career Goal: %s
Recommended Courses: %s

Suggest the best order to take these courses and why. Keep it brief (2-3 sentences):`,
		careerGoal, strings.Join(titles, ", "))

	text, err := e.generate(ctx, prompt)
	if err != nil {
		return domain.Explanation{Text: pathFallback, Fallback: true}
	}
	return domain.Explanation{Text: text}
}

func (e *Explainer) generate(ctx context.Context, prompt string) (string, error) {
	if e.llm == nil {
		return "", domain.ErrExplanationUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	text, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExplanationUnavailable, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.ErrExplanationUnavailable
	}
	return text, nil
}
