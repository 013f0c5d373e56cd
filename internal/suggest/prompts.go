package suggest

import (
	"strings"
	"text/template"
)

var budgetImprovementsPrompt = template.Must(template.New("budgetImprovements").Parse(
	`You are a personal finance advisor. Analyze the user's transaction history and financial goals to provide personalized suggestions on how they can save money and improve their budget.

Transaction History (JSON):
{{.TransactionHistory}}

Financial Goals (JSON):
{{.FinancialGoals}}

Currency: {{.Currency}}

Provide specific and actionable suggestions. Consider areas such as reducing spending in certain categories, setting up automated savings, or adjusting financial goals based on their current progress.

Format your output as a JSON array of strings.`))

var meaningfulGoalsPrompt = template.Must(template.New("meaningfulGoals").Parse(
	`You are a financial advisor. Based on the user's income and spending patterns, suggest relevant financial goals.

Income: {{.Income}}
Spending Patterns: {{.SpendingPatterns}}

Suggested Goals:`))

var budgetGoalsPrompt = template.Must(template.New("budgetGoals").Parse(
	`You are a personal finance advisor. Analyze the user's transaction history to provide personalized suggestions for budget goals. These goals should help the user save money and improve their financial situation.

Transaction History (JSON):
{{.TransactionHistory}}

Currency: {{.Currency}}

Provide specific and actionable suggestions for budget goals. Consider areas where the user is spending a significant amount of money and suggest ways to reduce spending in those areas.  Suggest concrete goals with associated savings amounts.

Format your output as a JSON array of strings.`))

func render(t *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
