package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"starbot/internal/providers"
	"starbot/internal/structures"
)

// ErrUpstream marks failures of the text-generation collaborator. The
// deferred path surfaces it as an inline error string; it never corrupts
// stored state since every store mutation precedes the call.
var ErrUpstream = errors.New("upstream collaborator error")

const (
	NotConfiguredMessage = "Analysis is not configured."
	defaultGeminiModel   = "gemini-1.5-flash"
)

type AnalysisServiceInterface interface {
	Configured() bool
	Analyze(ctx context.Context, matrix *WeekMatrix, table, weekLabel string) (string, error)
}

type AnalysisService struct {
	apiKey string
	model  string
	logger providers.Logger
}

func NewAnalysisService(conf *structures.Config, logger providers.Logger) AnalysisServiceInterface {
	model := conf.Gemini.Model
	if model == "" {
		model = defaultGeminiModel
	}
	return &AnalysisService{
		apiKey: conf.Gemini.APIKey,
		model:  model,
		logger: logger,
	}
}

func (as *AnalysisService) Configured() bool {
	return as.apiKey != ""
}

// Analyze asks Gemini for a short commentary on the week. Without an API key
// it degrades to an explicit not-configured message instead of failing.
func (as *AnalysisService) Analyze(ctx context.Context, matrix *WeekMatrix, table, weekLabel string) (string, error) {
	if !as.Configured() {
		return NotConfiguredMessage, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(as.apiKey))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer client.Close()

	model := client.GenerativeModel(as.model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(
		"You are a cheerful workout-group coach. Given a weekly attendance table, " +
			"write a short, upbeat commentary (3 sentences max) on how the group did. " +
			"Mention standouts by name. Plain text only.",
	)}}

	resp, err := model.GenerateContent(ctx, genai.Text(as.prompt(matrix, table, weekLabel)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	text := collectText(resp)
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrUpstream)
	}
	return text, nil
}

func (as *AnalysisService) prompt(matrix *WeekMatrix, table, weekLabel string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Week %s attendance table:\n%s\n\nWeekly totals:\n", weekLabel, table)
	for _, row := range matrix.Rows {
		fmt.Fprintf(&b, "- %s: %d\n", row.Label, row.Total)
	}
	return b.String()
}

func collectText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
	}
	return strings.TrimSpace(b.String())
}
