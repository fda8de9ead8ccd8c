package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateManager_RenderQuote(t *testing.T) {
	t.Parallel()

	tm := NewTemplateManager()

	out, err := tm.Render(TemplateQuote, TemplateData{
		"ClientName":  "J. de Vries",
		"ProjectName": "Herenstraat 12",
		"CompanyName": "Schilders BV",
		"RoomCount":   4,
		"Subtotal":    337.50,
		"VATAmount":   70.88,
		"Total":       408.38,
		"Currency":    "EUR",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "J. de Vries")
	assert.Contains(t, out, "Herenstraat 12")
	assert.Contains(t, out, "EUR 408.38")
}

func TestTemplateManager_UnknownTemplate(t *testing.T) {
	t.Parallel()

	tm := NewTemplateManager()
	_, err := tm.Render("does-not-exist", TemplateData{})
	assert.Error(t, err)
}

func TestTemplateManager_HTMLEscaping(t *testing.T) {
	t.Parallel()

	tm := NewTemplateManager()
	out, err := tm.Render(TemplateVerification, TemplateData{
		"AppName":   "PaintQuote",
		"Name":      "<script>alert(1)</script>",
		"VerifyURL": "https://app.example.com/verify?token=abc",
	})
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>alert(1)</script>")
}
