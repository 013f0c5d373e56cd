package money

import (
	"testing"

	"github.com/budgetbolt/backend/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	t.Parallel()

	usd := Format(1234.5, model.USD, model.English)
	assert.Contains(t, usd, "$")
	assert.Contains(t, usd, "1,234.50")

	assert.Contains(t, Format(1234.5, model.ZAR, model.English), "1,234.50")

	// yen has no minor unit
	assert.NotContains(t, Format(1234, model.YEN, model.English), ".")
}

func TestFormatUnknownCurrency(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "XYZ 12.50", Format(12.5, model.Currency("XYZ"), model.English))
}

func TestFormatter(t *testing.T) {
	t.Parallel()

	f := For(model.DefaultSettings())
	assert.Equal(t, model.ZAR, f.Currency)
	assert.Contains(t, f.Format(60), "60.00")
	assert.Equal(t, "30%", f.Percent(0.3))
	assert.Equal(t, "125%", f.Percent(1.25))
}

func TestTagFallback(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "en-US", tag(model.Language("not a tag!")).String())
	assert.Equal(t, "af", tag(model.Afrikaans).String())
}
