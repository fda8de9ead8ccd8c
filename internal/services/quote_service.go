package services

import (
	"fmt"
	"time"

	"paintquote_backend/internal/email"
	"paintquote_backend/internal/logger"
	"paintquote_backend/internal/metrics"
	"paintquote_backend/internal/models"
	"paintquote_backend/internal/pdfgen"
	"paintquote_backend/internal/pricing"
	"paintquote_backend/internal/repositories"
	"paintquote_backend/internal/services/dto"
	"paintquote_backend/pkg/apperrors"
)

type QuoteService interface {
	// GenerateQuote строит смету из последнего завершенного анализа проекта
	GenerateQuote(companyID, projectID string) (*dto.QuoteResponse, error)
	GetQuote(companyID, quoteID string) (*dto.QuoteResponse, error)
	ListQuotes(companyID, projectID string) ([]dto.QuoteResponse, error)
	// DownloadPDF рендерит смету в PDF без смены статуса
	DownloadPDF(companyID, quoteID string) ([]byte, string, error)
	SendQuote(companyID, quoteID string, req *dto.SendQuoteRequest) (*dto.QuoteResponse, error)
}

type QuoteServiceImpl struct {
	quoteRepo    repositories.QuoteRepository
	projectRepo  repositories.ProjectRepository
	analysisRepo repositories.AnalysisRepository
	userRepo     repositories.UserRepository
	pdfGen       *pdfgen.Generator
	emailSender  email.Provider
	rateCard     pricing.RateCard
	currency     string
}

func NewQuoteService(
	quoteRepo repositories.QuoteRepository,
	projectRepo repositories.ProjectRepository,
	analysisRepo repositories.AnalysisRepository,
	userRepo repositories.UserRepository,
	pdfGen *pdfgen.Generator,
	emailSender email.Provider,
	rateCard pricing.RateCard,
	currency string,
) QuoteService {
	return &QuoteServiceImpl{
		quoteRepo:    quoteRepo,
		projectRepo:  projectRepo,
		analysisRepo: analysisRepo,
		userRepo:     userRepo,
		pdfGen:       pdfGen,
		emailSender:  emailSender,
		rateCard:     rateCard,
		currency:     currency,
	}
}

func (s *QuoteServiceImpl) GenerateQuote(companyID, projectID string) (*dto.QuoteResponse, error) {
	project, err := s.projectRepo.FindByIDForCompany(projectID, companyID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}

	analysis, err := s.analysisRepo.FindLatestCompleted(project.ID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if len(analysis.Rooms) == 0 {
		return nil, apperrors.ErrNoUsableMeasurements
	}

	items, totals := pricing.Compute(analysis.Rooms, s.rateCard)
	if len(items) == 0 {
		// Комнаты есть, но ни одной работы не выбрано
		return nil, apperrors.ErrInvalidOperation("quote",
			"No treatments selected; choose at least one treatment before generating a quote")
	}

	number, err := s.quoteRepo.NextNumber()
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	quote := &models.Quote{
		CompanyID: companyID,
		ProjectID: project.ID,
		Number:    number,
		Status:    models.QuoteStatusDraft,
		Subtotal:  totals.Subtotal,
		VATAmount: totals.VATAmount,
		Total:     totals.Total,
		Currency:  s.currency,
	}

	lines := make([]models.QuoteLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, models.QuoteLine{
			RoomName:    it.RoomName,
			Description: it.Description,
			AreaM2:      it.AreaM2,
			Rate:        it.Rate,
			Amount:      it.Amount,
		})
	}

	if err := s.quoteRepo.CreateWithLines(quote, lines); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	metrics.RecordQuoteGenerated()
	logger.Info("Quote generated",
		"quote_id", quote.ID, "number", quote.Number, "project_id", project.ID, "total", quote.Total)

	resp := toQuoteResponse(quote)
	return &resp, nil
}

func (s *QuoteServiceImpl) GetQuote(companyID, quoteID string) (*dto.QuoteResponse, error) {
	quote, err := s.quoteRepo.FindByIDForCompany(quoteID, companyID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	resp := toQuoteResponse(quote)
	return &resp, nil
}

func (s *QuoteServiceImpl) ListQuotes(companyID, projectID string) ([]dto.QuoteResponse, error) {
	if _, err := s.projectRepo.FindByIDForCompany(projectID, companyID); err != nil {
		return nil, apperrors.ErrNotFound(err)
	}

	quotes, err := s.quoteRepo.FindByProject(projectID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	result := make([]dto.QuoteResponse, 0, len(quotes))
	for i := range quotes {
		result = append(result, toQuoteResponse(&quotes[i]))
	}
	return result, nil
}

func (s *QuoteServiceImpl) DownloadPDF(companyID, quoteID string) ([]byte, string, error) {
	quote, err := s.quoteRepo.FindByIDForCompany(quoteID, companyID)
	if err != nil {
		return nil, "", apperrors.ErrNotFound(err)
	}

	pdfBytes, err := s.renderPDF(quote, companyID)
	if err != nil {
		return nil, "", err
	}
	return pdfBytes, quoteFileName(quote), nil
}

func (s *QuoteServiceImpl) SendQuote(companyID, quoteID string, req *dto.SendQuoteRequest) (*dto.QuoteResponse, error) {
	quote, err := s.quoteRepo.FindByIDForCompany(quoteID, companyID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}

	project, err := s.projectRepo.FindByIDForCompany(quote.ProjectID, companyID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}

	recipient := req.RecipientEmail
	if recipient == "" {
		recipient = project.ClientEmail
	}
	if recipient == "" {
		return nil, apperrors.ErrInvalidOperation("quote",
			"No recipient: the project has no client email and none was provided")
	}

	company, err := s.userRepo.FindCompanyByID(companyID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}

	pdfBytes, err := s.pdfGen.Generate(&pdfgen.QuoteData{
		Quote:   quote,
		Company: company,
		Project: project,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	clientName := project.ClientName
	if clientName == "" {
		clientName = "customer"
	}

	summary := models.PendingQuoteSummary{
		CompanyName: company.Name,
		ProjectName: project.Name,
		ClientName:  clientName,
		RoomCount:   roomCount(quote.Lines),
		Subtotal:    quote.Subtotal,
		VATAmount:   quote.VATAmount,
		Total:       quote.Total,
		Currency:    quote.Currency,
	}

	msg := &email.Email{
		To:      []string{recipient},
		Subject: fmt.Sprintf("Painting quote %s from %s", quote.Number, company.Name),
		Body:    req.Message,
		Attachments: []email.Attachment{{
			Name:        quoteFileName(quote),
			Content:     pdfBytes,
			ContentType: "application/pdf",
		}},
	}
	data := email.TemplateData{
		"ClientName":  summary.ClientName,
		"ProjectName": summary.ProjectName,
		"CompanyName": summary.CompanyName,
		"RoomCount":   summary.RoomCount,
		"Subtotal":    summary.Subtotal,
		"VATAmount":   summary.VATAmount,
		"Total":       summary.Total,
		"Currency":    summary.Currency,
	}

	// Отправка синхронная: статус "sent" выставляем только если
	// письмо реально ушло
	if err := s.emailSender.SendWithTemplate(email.TemplateQuote, data, msg); err != nil {
		logger.Error("Failed to send quote email", "quote_id", quote.ID, "error", err)
		return nil, apperrors.InternalError(err)
	}

	now := time.Now()
	if err := s.quoteRepo.UpdateStatus(quote.ID, models.QuoteStatusSent, &now); err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	quote.Status = models.QuoteStatusSent
	quote.SentAt = &now

	metrics.RecordQuoteSent()
	logger.Info("Quote sent", "quote_id", quote.ID, "number", quote.Number, "recipient", recipient)

	resp := toQuoteResponse(quote)
	return &resp, nil
}

func (s *QuoteServiceImpl) renderPDF(quote *models.Quote, companyID string) ([]byte, error) {
	project, err := s.projectRepo.FindByIDForCompany(quote.ProjectID, companyID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	company, err := s.userRepo.FindCompanyByID(companyID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}

	pdfBytes, err := s.pdfGen.Generate(&pdfgen.QuoteData{
		Quote:   quote,
		Company: company,
		Project: project,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return pdfBytes, nil
}

func quoteFileName(quote *models.Quote) string {
	return fmt.Sprintf("quote-%s.pdf", quote.Number)
}

// roomCount считает уникальные комнаты по строкам сметы
func roomCount(lines []models.QuoteLine) int {
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		seen[line.RoomName] = struct{}{}
	}
	return len(seen)
}

func toQuoteResponse(q *models.Quote) dto.QuoteResponse {
	lines := make([]dto.QuoteLineResponse, 0, len(q.Lines))
	for _, line := range q.Lines {
		lines = append(lines, dto.QuoteLineResponse{
			RoomName:    line.RoomName,
			Description: line.Description,
			AreaM2:      line.AreaM2,
			Rate:        line.Rate,
			Amount:      line.Amount,
		})
	}
	return dto.QuoteResponse{
		ID:        q.ID,
		ProjectID: q.ProjectID,
		Number:    q.Number,
		Status:    string(q.Status),
		Subtotal:  q.Subtotal,
		VATAmount: q.VATAmount,
		Total:     q.Total,
		Currency:  q.Currency,
		SentAt:    q.SentAt,
		Lines:     lines,
	}
}
