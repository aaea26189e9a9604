package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"courserec/internal/domain"
)

// stubLLM returns a canned response or error.
type stubLLM struct {
	response string
	err      error
	delay    time.Duration
	prompts  []string
}

func (s *stubLLM) Generate(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubLLM) ModelName() string { return "stub-llm" }

var testCourse = domain.Course{
	Title:       "Machine Learning",
	Description: "Supervised and unsupervised learning",
}

var explainProfile = domain.StudentProfile{
	Background: "math undergrad",
	CareerGoal: "data science",
	Interests:  "statistics",
}

func TestExplainCourse(t *testing.T) {
	llm := &stubLLM{response: "This builds directly on your math background."}
	explainer := NewExplainer(llm, 0)

	exp := explainer.ExplainCourse(context.Background(), testCourse, explainProfile)
	if exp.Fallback {
		t.Error("expected generated explanation, got fallback")
	}
	if exp.Text != "This builds directly on your math background." {
		t.Errorf("unexpected text: %q", exp.Text)
	}

	if len(llm.prompts) != 1 {
		t.Fatalf("expected 1 prompt, got %d", len(llm.prompts))
	}
	prompt := llm.prompts[0]
	for _, want := range []string{testCourse.Title, testCourse.Description, explainProfile.Background, explainProfile.CareerGoal} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestExplainCourse_ErrorFallsBack(t *testing.T) {
	llm := &stubLLM{err: errors.New("quota exceeded")}
	explainer := NewExplainer(llm, 0)

	exp := explainer.ExplainCourse(context.Background(), testCourse, explainProfile)
	if !exp.Fallback {
		t.Error("expected fallback explanation")
	}
	want := "This course matches your interests in data science and builds relevant skills."
	if exp.Text != want {
		t.Errorf("fallback = %q, want %q", exp.Text, want)
	}
}

func TestExplainCourse_NilLLMFallsBack(t *testing.T) {
	explainer := NewExplainer(nil, 0)

	exp := explainer.ExplainCourse(context.Background(), testCourse, explainProfile)
	if !exp.Fallback {
		t.Error("expected fallback when no model is configured")
	}
	if !strings.Contains(exp.Text, explainProfile.CareerGoal) {
		t.Errorf("fallback missing career goal: %q", exp.Text)
	}
}

func TestExplainCourse_EmptyResponseFallsBack(t *testing.T) {
	llm := &stubLLM{response: "   \n"}
	explainer := NewExplainer(llm, 0)

	exp := explainer.ExplainCourse(context.Background(), testCourse, explainProfile)
	if !exp.Fallback {
		t.Error("expected fallback for blank generation")
	}
}

func TestExplainCourse_SlowLLMIsBounded(t *testing.T) {
	llm := &stubLLM{response: "too late", delay: time.Second}
	explainer := NewExplainer(llm, 30*time.Millisecond)

	start := time.Now()
	exp := explainer.ExplainCourse(context.Background(), testCourse, explainProfile)
	elapsed := time.Since(start)

	if !exp.Fallback {
		t.Error("expected fallback when generation exceeds the timeout")
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("explanation blocked for %v despite timeout", elapsed)
	}
}

func TestSuggestPath(t *testing.T) {
	llm := &stubLLM{response: "Start with Python, then ML."}
	explainer := NewExplainer(llm, 0)

	exp := explainer.SuggestPath(context.Background(), []string{"Python", "ML", "Deep Learning", "Extra"}, "data science")
	if exp.Fallback {
		t.Error("expected generated suggestion")
	}

	prompt := llm.prompts[0]
	if !strings.Contains(prompt, "Python, ML, Deep Learning") {
		t.Errorf("prompt missing first three titles: %q", prompt)
	}
	if strings.Contains(prompt, "Extra") {
		t.Error("expected only the first three titles in the prompt")
	}
}

func TestSuggestPath_ErrorFallsBack(t *testing.T) {
	llm := &stubLLM{err: errors.New("network down")}
	explainer := NewExplainer(llm, 0)

	exp := explainer.SuggestPath(context.Background(), []string{"A", "B"}, "data science")
	if !exp.Fallback {
		t.Error("expected fallback suggestion")
	}
	if exp.Text != pathFallback {
		t.Errorf("fallback = %q, want %q", exp.Text, pathFallback)
	}
}
