package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/budgetbolt/backend/internal/logger"
	"github.com/budgetbolt/backend/internal/telemetry"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"
)

// UserMessage is the only failure text shown to users.
const UserMessage = "An error occurred while generating suggestions. Please try again."

// ErrSuggestionFailed is returned for every failure: transport, empty
// output or output that does not match the schema. Details are logged.
var ErrSuggestionFailed = errors.New("suggestion request failed")

// requestTimeout bounds a single model call.
const requestTimeout = 60 * time.Second

// BudgetImprovementsInput carries JSON-serialised history and goals.
type BudgetImprovementsInput struct {
	TransactionHistory string `json:"transactionHistory"`
	FinancialGoals     string `json:"financialGoals"`
	Currency           string `json:"currency"`
}

type BudgetImprovementsOutput struct {
	Suggestions []string `json:"suggestions"`
}

type MeaningfulGoalsInput struct {
	Income           float64 `json:"income"`
	SpendingPatterns string  `json:"spendingPatterns"`
}

type BudgetGoalsInput struct {
	TransactionHistory string `json:"transactionHistory"`
	Currency           string `json:"currency"`
}

// GoalsOutput is returned by both goal suggestion requests.
type GoalsOutput struct {
	SuggestedGoals []string `json:"suggestedGoals"`
}

// request describes one prompt shape.
type request struct {
	name        string
	prompt      *template.Template
	outputField string
	description string
}

var (
	budgetImprovements = request{
		name:        "budgetImprovements",
		prompt:      budgetImprovementsPrompt,
		outputField: "suggestions",
		description: "Personalized, actionable suggestions for saving money and improving the budget",
	}
	meaningfulGoals = request{
		name:        "meaningfulGoals",
		prompt:      meaningfulGoalsPrompt,
		outputField: "suggestedGoals",
		description: "Financial goals relevant to the user's income and spending",
	}
	budgetGoals = request{
		name:        "budgetGoals",
		prompt:      budgetGoalsPrompt,
		outputField: "suggestedGoals",
		description: "Concrete budget goals with associated savings amounts",
	}
)

// SuggestBudgetImprovements asks for ways to save money given history and goals.
func (c *Client) SuggestBudgetImprovements(ctx context.Context, in BudgetImprovementsInput) (*BudgetImprovementsOutput, error) {
	items, err := c.generate(ctx, budgetImprovements, in)
	if err != nil {
		return nil, err
	}
	return &BudgetImprovementsOutput{Suggestions: items}, nil
}

// SuggestMeaningfulGoals asks for goals given income and a spending description.
func (c *Client) SuggestMeaningfulGoals(ctx context.Context, in MeaningfulGoalsInput) (*GoalsOutput, error) {
	items, err := c.generate(ctx, meaningfulGoals, in)
	if err != nil {
		return nil, err
	}
	return &GoalsOutput{SuggestedGoals: items}, nil
}

// SuggestBudgetGoals asks for budget goals given transaction history.
func (c *Client) SuggestBudgetGoals(ctx context.Context, in BudgetGoalsInput) (*GoalsOutput, error) {
	items, err := c.generate(ctx, budgetGoals, in)
	if err != nil {
		return nil, err
	}
	return &GoalsOutput{SuggestedGoals: items}, nil
}

func (c *Client) generate(ctx context.Context, req request, input any) ([]string, error) {
	log := logger.Log.With().Str("component", "suggest").Str("request", req.name).Logger()

	if c == nil || c.generator == nil {
		log.Error().Msg("suggestion client not initialized")
		return nil, ErrSuggestionFailed
	}

	prompt, err := render(req.prompt, input)
	if err != nil {
		log.Error().Err(err).Msg("failed to render prompt")
		return nil, ErrSuggestionFailed
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	timeoutCtx, span := telemetry.Tracer().Start(timeoutCtx, "suggest."+req.name)
	defer span.End()

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	start := time.Now()
	resp, err := c.generator.GenerateContent(timeoutCtx, c.model, contents, generationConfig(req))
	log = log.With().Int("prompt_chars", len(prompt)).Dur("elapsed", time.Since(start)).Logger()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "model call failed")
		log.Error().Err(err).Msg("model call failed")
		return nil, ErrSuggestionFailed
	}
	if resp == nil {
		log.Warn().Msg("nil response from model")
		return nil, ErrSuggestionFailed
	}

	items, err := parseItems(resp.Text(), req.outputField)
	if err != nil {
		span.SetStatus(codes.Error, "model output rejected")
		log.Warn().Err(err).Msg("model output rejected")
		return nil, ErrSuggestionFailed
	}

	log.Debug().Int("items", len(items)).Msg("suggestions generated")
	return items, nil
}

func generationConfig(req request) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: "You are a JSON API. You MUST respond with ONLY valid JSON, no preamble or explanation. Output a single JSON object."},
			},
		},
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				req.outputField: {
					Type:        genai.TypeArray,
					Description: req.description,
					Items:       &genai.Schema{Type: genai.TypeString},
				},
			},
			Required: []string{req.outputField},
		},
	}
}

// parseItems returns the string list under field as the model sent it,
// empty lists included. A bare JSON array is accepted too, since the
// prompts ask for one.
func parseItems(text, field string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty response")
	}

	var raw []string
	objAt, arrAt := strings.IndexByte(text, '{'), strings.IndexByte(text, '[')
	if objAt >= 0 && (arrAt < 0 || objAt < arrAt) {
		obj := extractJSON(text, '{', '}')
		var fields map[string]json.RawMessage
		if err := json.Unmarshal([]byte(obj), &fields); err != nil {
			return nil, fmt.Errorf("failed to parse JSON response: %w", err)
		}
		value, ok := fields[field]
		if !ok {
			return nil, fmt.Errorf("response missing %q", field)
		}
		if err := json.Unmarshal(value, &raw); err != nil {
			return nil, fmt.Errorf("%q is not a list of strings: %w", field, err)
		}
	} else {
		arr := extractJSON(text, '[', ']')
		if arr == "" {
			return nil, fmt.Errorf("no JSON found in response")
		}
		if err := json.Unmarshal([]byte(arr), &raw); err != nil {
			return nil, fmt.Errorf("response is not a list of strings: %w", err)
		}
	}

	if raw == nil {
		return nil, fmt.Errorf("%q is null", field)
	}
	return raw, nil
}

// extractJSON returns the text between the first open and the last close
// delimiter. Models sometimes wrap JSON in prose or code fences.
func extractJSON(text string, opening, closing byte) string {
	start := strings.IndexByte(text, opening)
	if start == -1 {
		return ""
	}
	end := strings.LastIndexByte(text, closing)
	if end == -1 || end <= start {
		return ""
	}
	return text[start : end+1]
}
