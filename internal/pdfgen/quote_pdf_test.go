package pdfgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paintquote_backend/internal/models"
)

func testQuoteData() *QuoteData {
	return &QuoteData{
		Quote: &models.Quote{
			Number:    "Q-2025-0042",
			Subtotal:  337.50,
			VATAmount: 70.88,
			Total:     408.38,
			Currency:  "EUR",
			Lines: []models.QuoteLine{
				{RoomName: "Woonkamer", Description: "Wall paint, one coat", AreaM2: 50, Rate: 6.75, Amount: 337.50},
			},
		},
		Company: &models.Company{Name: "Schilders BV", Email: "info@schilders.nl", City: "Utrecht", VATID: "NL123456789B01"},
		Project: &models.Project{Name: "Herenstraat 12", ClientName: "J. de Vries", Address: "Herenstraat 12, Utrecht"},
	}
}

func TestGenerate_ProducesPDF(t *testing.T) {
	t.Parallel()

	data := testQuoteData()
	out, err := NewGenerator().Generate(data)
	require.NoError(t, err)

	require.Greater(t, len(out), 500)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestGenerate_ManyLinesPaginates(t *testing.T) {
	t.Parallel()

	data := testQuoteData()
	for i := 0; i < 80; i++ {
		data.Quote.Lines = append(data.Quote.Lines, models.QuoteLine{
			RoomName: "Kamer", Description: "Wall primer", AreaM2: 10, Rate: 3.25, Amount: 32.50,
		})
	}

	out, err := NewGenerator().Generate(data)
	require.NoError(t, err)
	assert.Greater(t, len(out), 1000)
}

func TestGenerate_IncompleteData(t *testing.T) {
	t.Parallel()

	_, err := NewGenerator().Generate(&QuoteData{Quote: &models.Quote{}})
	assert.Error(t, err)
}
