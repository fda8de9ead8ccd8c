package services

import (
	"bytes"
	"context"
	"io"
	"time"

	"paintquote_backend/internal/email"
	"paintquote_backend/internal/models"
	"paintquote_backend/internal/payment"
	"paintquote_backend/internal/repositories"
	"paintquote_backend/internal/storage"
)

// Фейки перекрывают только методы, которые дергают сервисы;
// остальные унаследованы от nil-интерфейса и в тестах не вызываются.

type fakeProjectRepo struct {
	repositories.ProjectRepository

	projects  map[string]*models.Project
	plans     map[string]*models.FloorPlan
	createErr error
	created   []*models.Project
	deleted   []string
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{
		projects: make(map[string]*models.Project),
		plans:    make(map[string]*models.FloorPlan),
	}
}

func (f *fakeProjectRepo) Create(project *models.Project) error {
	if f.createErr != nil {
		return f.createErr
	}
	if project.ID == "" {
		project.ID = "prj-" + project.Name
	}
	f.projects[project.ID] = project
	f.created = append(f.created, project)
	return nil
}

func (f *fakeProjectRepo) FindByIDForCompany(id, companyID string) (*models.Project, error) {
	p, ok := f.projects[id]
	if !ok || p.CompanyID != companyID {
		return nil, repositories.ErrProjectNotFound
	}
	return p, nil
}

func (f *fakeProjectRepo) Delete(id string) error {
	if _, ok := f.projects[id]; !ok {
		return repositories.ErrProjectNotFound
	}
	delete(f.projects, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeProjectRepo) FindFloorPlanByID(id string) (*models.FloorPlan, error) {
	plan, ok := f.plans[id]
	if !ok {
		return nil, repositories.ErrProjectNotFound
	}
	return plan, nil
}

type fakeSubscriptionRepo struct {
	repositories.SubscriptionRepository

	incrementErr error
	increments   int
	decrements   int

	sub          *models.Subscription
	payments     map[string]*models.PaymentTransaction
	purchases    []*models.Purchase
	statusCounts map[models.SubscriptionStatus]int64
	recalcCalls  int
	resetCalls   int
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{
		payments: make(map[string]*models.PaymentTransaction),
	}
}

func (f *fakeSubscriptionRepo) IncrementProjectUsage(companyID string, now time.Time) error {
	if f.incrementErr != nil {
		return f.incrementErr
	}
	f.increments++
	return nil
}

func (f *fakeSubscriptionRepo) DecrementProjectUsage(companyID string) error {
	f.decrements++
	return nil
}

func (f *fakeSubscriptionRepo) FindByCompany(companyID string) (*models.Subscription, error) {
	if f.sub == nil || f.sub.CompanyID != companyID {
		return nil, repositories.ErrSubscriptionNotFound
	}
	return f.sub, nil
}

func (f *fakeSubscriptionRepo) Update(sub *models.Subscription) error {
	f.sub = sub
	return nil
}

func (f *fakeSubscriptionRepo) RecalculateAndPersist(companyID string, now time.Time) (*models.Subscription, error) {
	if f.sub == nil {
		return nil, repositories.ErrSubscriptionNotFound
	}
	f.recalcCalls++
	return f.sub, nil
}

func (f *fakeSubscriptionRepo) ResetPeriodUsage(companyID string) error {
	f.resetCalls++
	if f.sub != nil {
		f.sub.ProjectsUsed = 0
	}
	return nil
}

func (f *fakeSubscriptionRepo) CreatePurchase(purchase *models.Purchase) error {
	if purchase.ID == "" {
		purchase.ID = "pur-" + purchase.PlanName
	}
	f.purchases = append(f.purchases, purchase)
	return nil
}

func (f *fakeSubscriptionRepo) FindActivePurchases(subscriptionID string, now time.Time) ([]models.Purchase, error) {
	var active []models.Purchase
	for _, p := range f.purchases {
		if p.SubscriptionID == subscriptionID && p.Active && p.EndDate.After(now) {
			active = append(active, *p)
		}
	}
	return active, nil
}

func (f *fakeSubscriptionRepo) ExtendPurchase(purchaseID string, newEnd time.Time) error {
	for _, p := range f.purchases {
		if p.ID == purchaseID {
			p.EndDate = newEnd
			return nil
		}
	}
	return repositories.ErrPurchaseNotFound
}

func (f *fakeSubscriptionRepo) CancelPurchaseAtPeriodEnd(purchaseID string) error {
	for _, p := range f.purchases {
		if p.ID == purchaseID {
			now := time.Now()
			p.Cancelled = true
			p.CancelAtPeriodEnd = true
			p.CancelledAt = &now
			return nil
		}
	}
	return repositories.ErrPurchaseNotFound
}

func (f *fakeSubscriptionRepo) CreatePaymentTransaction(tx *models.PaymentTransaction) error {
	f.payments[tx.InvID] = tx
	return nil
}

func (f *fakeSubscriptionRepo) FindPaymentByInvID(invID string) (*models.PaymentTransaction, error) {
	tx, ok := f.payments[invID]
	if !ok {
		return nil, repositories.ErrPaymentNotFound
	}
	return tx, nil
}

func (f *fakeSubscriptionRepo) UpdatePaymentStatus(invID string, status models.PaymentStatus, when time.Time) error {
	tx, ok := f.payments[invID]
	if !ok {
		return repositories.ErrPaymentNotFound
	}
	tx.Status = status
	return nil
}

func (f *fakeSubscriptionRepo) CountByStatus() (map[models.SubscriptionStatus]int64, error) {
	return f.statusCounts, nil
}

type fakeQuoteRepo struct {
	repositories.QuoteRepository

	quotes     map[string]*models.Quote
	nextNumber string
	statuses   map[string]models.QuoteStatus
}

func newFakeQuoteRepo() *fakeQuoteRepo {
	return &fakeQuoteRepo{
		quotes:     make(map[string]*models.Quote),
		nextNumber: "Q-2025-0001",
		statuses:   make(map[string]models.QuoteStatus),
	}
}

func (f *fakeQuoteRepo) CreateWithLines(quote *models.Quote, lines []models.QuoteLine) error {
	if quote.ID == "" {
		quote.ID = "qt-" + quote.Number
	}
	for i := range lines {
		lines[i].QuoteID = quote.ID
	}
	quote.Lines = lines
	f.quotes[quote.ID] = quote
	return nil
}

func (f *fakeQuoteRepo) FindByIDForCompany(id, companyID string) (*models.Quote, error) {
	q, ok := f.quotes[id]
	if !ok || q.CompanyID != companyID {
		return nil, repositories.ErrQuoteNotFound
	}
	return q, nil
}

func (f *fakeQuoteRepo) UpdateStatus(quoteID string, status models.QuoteStatus, sentAt *time.Time) error {
	f.statuses[quoteID] = status
	return nil
}

func (f *fakeQuoteRepo) NextNumber() (string, error) {
	return f.nextNumber, nil
}

type fakeAnalysisRepo struct {
	repositories.AnalysisRepository

	analyses  map[string]*models.Analysis
	latest    *models.Analysis
	latestErr error

	rooms     map[string]*models.RoomMeasurement
	completed map[string][]models.RoomMeasurement
	failed    map[string]string
}

func newFakeAnalysisRepo() *fakeAnalysisRepo {
	return &fakeAnalysisRepo{
		analyses:  make(map[string]*models.Analysis),
		completed: make(map[string][]models.RoomMeasurement),
		failed:    make(map[string]string),
	}
}

func (f *fakeAnalysisRepo) Create(analysis *models.Analysis) error {
	if analysis.ID == "" {
		analysis.ID = "an-1"
	}
	f.analyses[analysis.ID] = analysis
	return nil
}

func (f *fakeAnalysisRepo) FindByID(id string) (*models.Analysis, error) {
	a, ok := f.analyses[id]
	if !ok {
		return nil, repositories.ErrAnalysisNotFound
	}
	return a, nil
}

func (f *fakeAnalysisRepo) FindLatestCompleted(projectID string) (*models.Analysis, error) {
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	return f.latest, nil
}

func (f *fakeAnalysisRepo) MarkCompleted(analysisID string, rawResponse, model string, rooms []models.RoomMeasurement) error {
	f.completed[analysisID] = rooms
	if a, ok := f.analyses[analysisID]; ok {
		a.Status = models.AnalysisStatusCompleted
		a.RawResponse = rawResponse
		a.Model = model
		a.RoomCount = len(rooms)
		a.Rooms = rooms
	}
	return nil
}

func (f *fakeAnalysisRepo) MarkFailed(analysisID string, rawResponse, model, errorText string) error {
	f.failed[analysisID] = errorText
	if a, ok := f.analyses[analysisID]; ok {
		a.Status = models.AnalysisStatusFailed
		a.ErrorText = errorText
	}
	return nil
}

func (f *fakeAnalysisRepo) FindRoom(roomID string) (*models.RoomMeasurement, error) {
	room, ok := f.rooms[roomID]
	if !ok {
		return nil, repositories.ErrRoomNotFound
	}
	return room, nil
}

func (f *fakeAnalysisRepo) UpdateRoomTreatments(roomID string, wall, ceiling models.TreatmentSelection) error {
	room, ok := f.rooms[roomID]
	if !ok {
		return repositories.ErrRoomNotFound
	}
	room.WallTreatments = models.EncodeSelection(wall)
	room.CeilingTreatments = models.EncodeSelection(ceiling)
	return nil
}

type fakeUserRepo struct {
	repositories.UserRepository

	company *models.Company
}

func (f *fakeUserRepo) FindCompanyByID(id string) (*models.Company, error) {
	return f.company, nil
}

type fakeEmailProvider struct {
	sent []*email.Email
	tmpl []string
}

func (f *fakeEmailProvider) Send(msg *email.Email) error {
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeEmailProvider) SendWithTemplate(templateName string, data email.TemplateData, msg *email.Email) error {
	f.tmpl = append(f.tmpl, templateName)
	f.sent = append(f.sent, msg)
	return nil
}

type fakeStorage struct {
	storage.Storage

	files map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: make(map[string][]byte)}
}

func (f *fakeStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	data, ok := f.files[path]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type fakeAnalyzer struct {
	response string
	model    string
	err      error
	calls    int
}

func (f *fakeAnalyzer) AnalyzeFloorPlan(ctx context.Context, imageData []byte, contentType string) (string, string, error) {
	f.calls++
	if f.err != nil {
		return "", f.model, f.err
	}
	return f.response, f.model, nil
}

type fakePaymentProvider struct {
	checkoutErr error
	event       *payment.WebhookEvent
	parseErr    error
	sessions    []payment.CheckoutParams
}

func (f *fakePaymentProvider) CreateCheckoutSession(ctx context.Context, params payment.CheckoutParams) (*payment.CheckoutResult, error) {
	if f.checkoutErr != nil {
		return nil, f.checkoutErr
	}
	f.sessions = append(f.sessions, params)
	return &payment.CheckoutResult{
		SessionID: "cs_test_" + params.InvID,
		URL:       "https://checkout.stripe.test/" + params.InvID,
	}, nil
}

func (f *fakePaymentProvider) ParseWebhook(payload []byte, signature string) (*payment.WebhookEvent, error) {
	if f.parseErr != nil {
		return nil, f.parseErr
	}
	return f.event, nil
}
