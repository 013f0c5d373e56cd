package suggest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type mockGenerator struct {
	text   string
	err    error
	nilRes bool

	model  string
	prompt string
	config *genai.GenerateContentConfig
}

func (m *mockGenerator) GenerateContent(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	m.model = model
	m.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		m.prompt = contents[0].Parts[0].Text
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.nilRes {
		return nil, nil
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: m.text}}}},
		},
	}, nil
}

func TestSuggestBudgetImprovements(t *testing.T) {
	t.Parallel()

	gen := &mockGenerator{text: `{"suggestions":["Cook at home twice a week","Cancel the unused gym membership"]}`}
	c := NewClientWithGenerator(gen, "")

	out, err := c.SuggestBudgetImprovements(context.Background(), BudgetImprovementsInput{
		TransactionHistory: `[{"amount":120,"category":"Dining"}]`,
		FinancialGoals:     `[{"title":"Emergency fund"}]`,
		Currency:           "ZAR",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cook at home twice a week", "Cancel the unused gym membership"}, out.Suggestions)

	assert.Equal(t, DefaultModel, gen.model)
	assert.Contains(t, gen.prompt, `[{"amount":120,"category":"Dining"}]`)
	assert.Contains(t, gen.prompt, `[{"title":"Emergency fund"}]`)
	assert.Contains(t, gen.prompt, "Currency: ZAR")

	require.NotNil(t, gen.config)
	assert.Equal(t, "application/json", gen.config.ResponseMIMEType)
	require.NotNil(t, gen.config.ResponseSchema)
	assert.Equal(t, []string{"suggestions"}, gen.config.ResponseSchema.Required)
	field := gen.config.ResponseSchema.Properties["suggestions"]
	require.NotNil(t, field)
	assert.Equal(t, genai.TypeArray, field.Type)
	assert.Equal(t, genai.TypeString, field.Items.Type)
}

func TestSuggestMeaningfulGoals(t *testing.T) {
	t.Parallel()

	gen := &mockGenerator{text: "```json\n{\"suggestedGoals\":[\"Save three months of expenses\"]}\n```"}
	c := NewClientWithGenerator(gen, "gemini-test")

	out, err := c.SuggestMeaningfulGoals(context.Background(), MeaningfulGoalsInput{
		Income:           5400,
		SpendingPatterns: "Most spending goes to Rent and Groceries.",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Save three months of expenses"}, out.SuggestedGoals)

	assert.Equal(t, "gemini-test", gen.model)
	assert.Contains(t, gen.prompt, "Income: 5400")
	assert.Contains(t, gen.prompt, "Spending Patterns: Most spending goes to Rent and Groceries.")
	assert.Equal(t, []string{"suggestedGoals"}, gen.config.ResponseSchema.Required)
}

func TestSuggestBudgetGoalsAcceptsBareArray(t *testing.T) {
	t.Parallel()

	gen := &mockGenerator{text: `Here you go: ["Cut dining out by R500 a month", "Move R1000 to savings"]`}
	c := NewClientWithGenerator(gen, "")

	out, err := c.SuggestBudgetGoals(context.Background(), BudgetGoalsInput{
		TransactionHistory: "[]",
		Currency:           "USD",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cut dining out by R500 a month", "Move R1000 to savings"}, out.SuggestedGoals)
	assert.Contains(t, gen.prompt, "Currency: USD")
}

func TestSuggestReturnsListAsSent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty list", text: `{"suggestions":[]}`, want: []string{}},
		{name: "blank entries kept", text: `{"suggestions":["", " Keep a buffer "]}`, want: []string{"", " Keep a buffer "}},
		{name: "empty bare array", text: `[]`, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := NewClientWithGenerator(&mockGenerator{text: tt.text}, "")
			out, err := c.SuggestBudgetImprovements(context.Background(), BudgetImprovementsInput{Currency: "ZAR"})
			require.NoError(t, err)
			require.NotNil(t, out.Suggestions)
			assert.Equal(t, tt.want, out.Suggestions)
		})
	}
}

func TestSuggestFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		gen  *mockGenerator
	}{
		{name: "transport error", gen: &mockGenerator{err: errors.New("quota exceeded")}},
		{name: "nil response", gen: &mockGenerator{nilRes: true}},
		{name: "empty text", gen: &mockGenerator{text: "   "}},
		{name: "prose only", gen: &mockGenerator{text: "I cannot help with that."}},
		{name: "missing field", gen: &mockGenerator{text: `{"ideas":["a"]}`}},
		{name: "wrong field type", gen: &mockGenerator{text: `{"suggestions":"save more"}`}},
		{name: "null list", gen: &mockGenerator{text: `{"suggestions":null}`}},
		{name: "malformed object", gen: &mockGenerator{text: `{"suggestions":["a"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := NewClientWithGenerator(tt.gen, "")
			out, err := c.SuggestBudgetImprovements(context.Background(), BudgetImprovementsInput{Currency: "ZAR"})
			require.ErrorIs(t, err, ErrSuggestionFailed)
			assert.Nil(t, out)
		})
	}
}

func TestNilClientFails(t *testing.T) {
	t.Parallel()

	var c *Client
	_, err := c.SuggestBudgetGoals(context.Background(), BudgetGoalsInput{})
	require.ErrorIs(t, err, ErrSuggestionFailed)
}

func TestNewClientRequiresKey(t *testing.T) {
	t.Parallel()

	_, err := NewClient(context.Background(), "", "")
	require.Error(t, err)
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `{"a":1}`, extractJSON("noise {\"a\":1} trailing", '{', '}'))
	assert.Equal(t, "", extractJSON("no braces", '{', '}'))
	assert.Equal(t, "", extractJSON("} backwards {", '{', '}'))
}
