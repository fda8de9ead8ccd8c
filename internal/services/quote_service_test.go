package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paintquote_backend/internal/email"
	"paintquote_backend/internal/models"
	"paintquote_backend/internal/pdfgen"
	"paintquote_backend/internal/pricing"
	"paintquote_backend/internal/repositories"
	"paintquote_backend/internal/services/dto"
	"paintquote_backend/pkg/apperrors"
)

func testRateCard() pricing.RateCard {
	return pricing.RateCard{
		WallPrep:           4.50,
		WallPrimer:         3.00,
		WallPaint:          9.00,
		CeilingPrep:        5.00,
		CeilingPrimer:      3.50,
		CeilingPaint:       10.00,
		SecondCoatDiscount: 0.35,
		VATRate:            0.21,
	}
}

func measuredRoom(seq int, name string, walls, ceiling float64, wall, ceilSel models.TreatmentSelection) models.RoomMeasurement {
	return models.RoomMeasurement{
		Seq:               seq,
		Name:              name,
		WallSurfaceM2:     walls,
		CeilingAreaM2:     ceiling,
		WallTreatments:    models.EncodeSelection(wall),
		CeilingTreatments: models.EncodeSelection(ceilSel),
	}
}

func newQuoteFixture() (*fakeQuoteRepo, *fakeProjectRepo, *fakeAnalysisRepo, *fakeUserRepo, *fakeEmailProvider, QuoteService) {
	quoteRepo := newFakeQuoteRepo()
	projectRepo := newFakeProjectRepo()
	analysisRepo := &fakeAnalysisRepo{}
	userRepo := &fakeUserRepo{company: &models.Company{
		BaseModel: models.BaseModel{ID: "cmp-1"},
		Name:      "Schildersbedrijf Jansen",
		Email:     "info@jansen.example",
	}}
	sender := &fakeEmailProvider{}

	svc := NewQuoteService(quoteRepo, projectRepo, analysisRepo, userRepo,
		pdfgen.NewGenerator(), sender, testRateCard(), "EUR")
	return quoteRepo, projectRepo, analysisRepo, userRepo, sender, svc
}

func TestQuoteService_GenerateQuote(t *testing.T) {
	t.Parallel()

	_, projectRepo, analysisRepo, _, _, svc := newQuoteFixture()
	projectRepo.projects["prj-1"] = &models.Project{
		BaseModel: models.BaseModel{ID: "prj-1"},
		CompanyID: "cmp-1",
		Name:      "Herengracht 12",
	}
	analysisRepo.latest = &models.Analysis{
		BaseModel: models.BaseModel{ID: "an-1"},
		ProjectID: "prj-1",
		Status:    models.AnalysisStatusCompleted,
		Rooms: []models.RoomMeasurement{
			measuredRoom(1, "Woonkamer", 51.19, 48.29,
				models.TreatmentSelection{Prep: true, PaintTwoCoats: true},
				models.TreatmentSelection{PaintOneCoat: true}),
		},
	}

	quote, err := svc.GenerateQuote("cmp-1", "prj-1")
	require.NoError(t, err)

	assert.Equal(t, "Q-2025-0001", quote.Number)
	assert.Equal(t, string(models.QuoteStatusDraft), quote.Status)
	assert.Equal(t, "EUR", quote.Currency)
	assert.Len(t, quote.Lines, 3)

	// Prep 51.19*4.50 + two coats 51.19*9.00*1.35 + ceiling 48.29*10.00
	assert.InDelta(t, 230.36+621.96+482.90, quote.Subtotal, 0.05)
	assert.InDelta(t, quote.Subtotal*0.21, quote.VATAmount, 0.05)
	assert.InDelta(t, quote.Subtotal+quote.VATAmount, quote.Total, 0.01)
}

func TestQuoteService_GenerateQuote_NoUsableMeasurements(t *testing.T) {
	t.Parallel()

	_, projectRepo, analysisRepo, _, _, svc := newQuoteFixture()
	projectRepo.projects["prj-1"] = &models.Project{
		BaseModel: models.BaseModel{ID: "prj-1"},
		CompanyID: "cmp-1",
	}
	analysisRepo.latest = &models.Analysis{
		BaseModel: models.BaseModel{ID: "an-1"},
		ProjectID: "prj-1",
		Status:    models.AnalysisStatusCompleted,
		Rooms:     nil,
	}

	_, err := svc.GenerateQuote("cmp-1", "prj-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNoUsableMeasurements)
}

func TestQuoteService_GenerateQuote_NoCompletedAnalysis(t *testing.T) {
	t.Parallel()

	_, projectRepo, analysisRepo, _, _, svc := newQuoteFixture()
	projectRepo.projects["prj-1"] = &models.Project{
		BaseModel: models.BaseModel{ID: "prj-1"},
		CompanyID: "cmp-1",
	}
	analysisRepo.latestErr = repositories.ErrAnalysisNotFound

	_, err := svc.GenerateQuote("cmp-1", "prj-1")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.HTTPCode)
}

func TestQuoteService_GenerateQuote_NoTreatmentsSelected(t *testing.T) {
	t.Parallel()

	_, projectRepo, analysisRepo, _, _, svc := newQuoteFixture()
	projectRepo.projects["prj-1"] = &models.Project{
		BaseModel: models.BaseModel{ID: "prj-1"},
		CompanyID: "cmp-1",
	}
	analysisRepo.latest = &models.Analysis{
		BaseModel: models.BaseModel{ID: "an-1"},
		ProjectID: "prj-1",
		Status:    models.AnalysisStatusCompleted,
		Rooms: []models.RoomMeasurement{
			measuredRoom(1, "Entree", 17.93, 7.78,
				models.TreatmentSelection{}, models.TreatmentSelection{}),
		},
	}

	_, err := svc.GenerateQuote("cmp-1", "prj-1")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.HTTPCode)
}

func TestQuoteService_SendQuote(t *testing.T) {
	t.Parallel()

	quoteRepo, projectRepo, _, _, sender, svc := newQuoteFixture()
	projectRepo.projects["prj-1"] = &models.Project{
		BaseModel:   models.BaseModel{ID: "prj-1"},
		CompanyID:   "cmp-1",
		Name:        "Herengracht 12",
		ClientName:  "J. de Vries",
		ClientEmail: "client@example.com",
	}
	quoteRepo.quotes["qt-1"] = &models.Quote{
		BaseModel: models.BaseModel{ID: "qt-1"},
		CompanyID: "cmp-1",
		ProjectID: "prj-1",
		Number:    "Q-2025-0007",
		Status:    models.QuoteStatusDraft,
		Subtotal:  1000,
		VATAmount: 210,
		Total:     1210,
		Currency:  "EUR",
		Lines: []models.QuoteLine{
			{RoomName: "Woonkamer", Description: "Wall paint (2 coats)", AreaM2: 51.19, Rate: 12.15, Amount: 621.96},
		},
	}

	resp, err := svc.SendQuote("cmp-1", "qt-1", &dto.SendQuoteRequest{})
	require.NoError(t, err)

	assert.Equal(t, string(models.QuoteStatusSent), resp.Status)
	require.NotNil(t, resp.SentAt)
	assert.Equal(t, models.QuoteStatusSent, quoteRepo.statuses["qt-1"])

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, []string{"client@example.com"}, msg.To)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "quote-Q-2025-0007.pdf", msg.Attachments[0].Name)
	assert.Equal(t, "application/pdf", msg.Attachments[0].ContentType)
	assert.True(t, len(msg.Attachments[0].Content) > 0)
	assert.Equal(t, []string{email.TemplateQuote}, sender.tmpl)
}

func TestQuoteService_SendQuote_ExplicitRecipientWins(t *testing.T) {
	t.Parallel()

	quoteRepo, projectRepo, _, _, sender, svc := newQuoteFixture()
	projectRepo.projects["prj-1"] = &models.Project{
		BaseModel:   models.BaseModel{ID: "prj-1"},
		CompanyID:   "cmp-1",
		ClientEmail: "client@example.com",
	}
	quoteRepo.quotes["qt-1"] = &models.Quote{
		BaseModel: models.BaseModel{ID: "qt-1"},
		CompanyID: "cmp-1",
		ProjectID: "prj-1",
		Number:    "Q-2025-0008",
		Currency:  "EUR",
	}

	_, err := svc.SendQuote("cmp-1", "qt-1", &dto.SendQuoteRequest{
		RecipientEmail: "other@example.com",
	})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"other@example.com"}, sender.sent[0].To)
}

func TestQuoteService_SendQuote_NoRecipient(t *testing.T) {
	t.Parallel()

	quoteRepo, projectRepo, _, _, sender, svc := newQuoteFixture()
	projectRepo.projects["prj-1"] = &models.Project{
		BaseModel: models.BaseModel{ID: "prj-1"},
		CompanyID: "cmp-1",
	}
	quoteRepo.quotes["qt-1"] = &models.Quote{
		BaseModel: models.BaseModel{ID: "qt-1"},
		CompanyID: "cmp-1",
		ProjectID: "prj-1",
		Number:    "Q-2025-0009",
	}

	_, err := svc.SendQuote("cmp-1", "qt-1", &dto.SendQuoteRequest{})
	require.Error(t, err)
	assert.Empty(t, sender.sent)
}

func TestQuoteService_GetQuote_ScopedToCompany(t *testing.T) {
	t.Parallel()

	quoteRepo, _, _, _, _, svc := newQuoteFixture()
	quoteRepo.quotes["qt-1"] = &models.Quote{
		BaseModel: models.BaseModel{ID: "qt-1"},
		CompanyID: "cmp-1",
	}

	_, err := svc.GetQuote("cmp-other", "qt-1")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.HTTPCode)
}
