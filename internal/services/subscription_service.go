package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"paintquote_backend/internal/entitlement"
	"paintquote_backend/internal/logger"
	"paintquote_backend/internal/metrics"
	"paintquote_backend/internal/models"
	"paintquote_backend/internal/payment"
	"paintquote_backend/internal/repositories"
	"paintquote_backend/internal/services/dto"
	"paintquote_backend/pkg/apperrors"
)

type SubscriptionService interface {
	GetSubscription(companyID string) (*dto.SubscriptionResponse, error)
	ListPlans() []dto.PlanResponse
	CreateCheckout(ctx context.Context, companyID string, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	HandleWebhook(payload []byte, signature string) error
	CancelAtPeriodEnd(companyID string) error
	ListPayments(companyID string) ([]dto.PaymentResponse, error)
	GetPlatformStats() (*dto.PlatformStatsResponse, error)
}

// После скольких подряд неудачных платежей активная подписка
// переводится в past_due
const maxPaymentFailures = 3

type SubscriptionServiceImpl struct {
	subscriptionRepo repositories.SubscriptionRepository
	catalog          entitlement.Catalog
	engine           *entitlement.Engine
	provider         payment.Provider
}

func NewSubscriptionService(
	subscriptionRepo repositories.SubscriptionRepository,
	catalog entitlement.Catalog,
	engine *entitlement.Engine,
	provider payment.Provider,
) SubscriptionService {
	return &SubscriptionServiceImpl{
		subscriptionRepo: subscriptionRepo,
		catalog:          catalog,
		engine:           engine,
		provider:         provider,
	}
}

// GetSubscription возвращает подписку после свежего пересчета лимитов
func (s *SubscriptionServiceImpl) GetSubscription(companyID string) (*dto.SubscriptionResponse, error) {
	now := time.Now()
	sub, err := s.subscriptionRepo.RecalculateAndPersist(companyID, now)
	if err != nil {
		if apperrors.Is(err, repositories.ErrSubscriptionNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	return &dto.SubscriptionResponse{
		PlanName:      sub.PlanName,
		Status:        string(sub.Status),
		TrialEnd:      sub.TrialEnd,
		DaysRemaining: s.engine.DaysRemaining(sub, now),
		MaxProjects:   sub.MaxProjects,
		MaxUsers:      sub.MaxUsers,
		MaxStorageMB:  sub.MaxStorageMB,
		MaxAPIRate:    sub.MaxAPIRate,
		ProjectsUsed:  sub.ProjectsUsed,
		StorageUsedMB: sub.StorageUsedMB,
	}, nil
}

// ListPlans возвращает каталог в порядке возрастания тиров
func (s *SubscriptionServiceImpl) ListPlans() []dto.PlanResponse {
	names := s.catalog.PlanNames()
	result := make([]dto.PlanResponse, 0, len(names))
	for _, name := range names {
		plan, ok := s.catalog.Plan(name)
		if !ok {
			continue
		}
		result = append(result, dto.PlanResponse{
			Name:         plan.Name,
			Tier:         plan.Tier,
			PriceMonthly: plan.PriceMonthly,
			PriceYearly:  plan.PriceYearly,
			MaxProjects:  plan.Benefits.Projects,
			MaxUsers:     plan.Benefits.Users,
			MaxStorageMB: plan.Benefits.StorageMB,
			MaxAPIRate:   plan.Benefits.APIRate,
		})
	}
	return result
}

// CreateCheckout создает checkout-сессию у платежного провайдера
// и pending-транзакцию у нас
func (s *SubscriptionServiceImpl) CreateCheckout(ctx context.Context, companyID string, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	plan, ok := s.catalog.Plan(req.PlanName)
	if !ok {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("Unknown plan: %s", req.PlanName))
	}

	cycle := models.BillingCycle(req.Cycle)
	amount := plan.PriceMonthly
	if cycle == models.BillingCycleYearly {
		amount = plan.PriceYearly
	}
	if amount <= 0 {
		return nil, apperrors.ErrInvalidPaymentAmount
	}

	if _, err := s.subscriptionRepo.FindByCompany(companyID); err != nil {
		return nil, apperrors.ErrNotFound(err)
	}

	invID := uuid.NewString()

	result, err := s.provider.CreateCheckoutSession(ctx, payment.CheckoutParams{
		InvID:       invID,
		CompanyID:   companyID,
		PlanName:    plan.Name,
		Cycle:       string(cycle),
		Description: fmt.Sprintf("PaintQuote %s plan (%s)", plan.Name, cycle),
		Amount:      amount,
		Currency:    "eur",
	})
	if err != nil {
		metrics.RecordCheckout(plan.Name, "error")
		return nil, apperrors.Wrap(err, apperrors.CodePaymentFailed, "payment", "Failed to create checkout session", 502)
	}

	tx := &models.PaymentTransaction{
		CompanyID: companyID,
		PlanName:  plan.Name,
		Cycle:     cycle,
		Amount:    amount,
		Currency:  "EUR",
		Status:    models.PaymentStatusPending,
		InvID:     invID,
		SessionID: result.SessionID,
	}
	if err := s.subscriptionRepo.CreatePaymentTransaction(tx); err != nil {
		return nil, apperrors.InternalError(err)
	}

	metrics.RecordCheckout(plan.Name, "created")

	return &dto.CheckoutResponse{
		SessionID:   result.SessionID,
		CheckoutURL: result.URL,
	}, nil
}

// HandleWebhook обрабатывает событие платежного провайдера.
// Идемпотентен: повторная доставка оплаченного события не создает
// вторую покупку.
func (s *SubscriptionServiceImpl) HandleWebhook(payload []byte, signature string) error {
	event, err := s.provider.ParseWebhook(payload, signature)
	if err != nil {
		return apperrors.NewBadRequestError("Invalid webhook payload")
	}

	switch event.Type {
	case "checkout_completed":
		return s.activatePurchase(event.InvID)
	case "payment_failed":
		return s.recordFailure(event.InvID)
	default:
		// Неинтересные события подтверждаем без действий
		return nil
	}
}

func (s *SubscriptionServiceImpl) activatePurchase(invID string) error {
	tx, err := s.subscriptionRepo.FindPaymentByInvID(invID)
	if err != nil {
		return apperrors.ErrNotFound(err)
	}
	if tx.Status == models.PaymentStatusPaid {
		return nil // повторная доставка
	}

	sub, err := s.subscriptionRepo.FindByCompany(tx.CompanyID)
	if err != nil {
		return apperrors.InternalError(err)
	}

	now := time.Now()
	active, err := s.subscriptionRepo.FindActivePurchases(sub.ID, now)
	if err != nil {
		return apperrors.InternalError(err)
	}

	// Продление мутирует существующую покупку (двигает конец периода),
	// а не вставляет вторую строку: две строки одного плана считались
	// бы активными одновременно и удваивали лимиты до конца текущего
	// периода. Новая строка - только для нового/дополнительного плана.
	var renewal *models.Purchase
	for i := range active {
		p := &active[i]
		if p.PlanName != tx.PlanName {
			continue
		}
		if renewal == nil || p.EndDate.After(renewal.EndDate) {
			renewal = p
		}
	}

	periodEnd := addCycle(now, tx.Cycle)
	if renewal != nil {
		periodEnd = addCycle(renewal.EndDate, tx.Cycle)
		if err := s.subscriptionRepo.ExtendPurchase(renewal.ID, periodEnd); err != nil {
			return apperrors.InternalError(err)
		}
	} else {
		purchase := &models.Purchase{
			SubscriptionID: sub.ID,
			PlanName:       tx.PlanName,
			Cycle:          tx.Cycle,
			StartDate:      now,
			EndDate:        periodEnd,
			Active:         true,
		}
		if err := s.subscriptionRepo.CreatePurchase(purchase); err != nil {
			return apperrors.InternalError(err)
		}
	}

	if err := s.subscriptionRepo.UpdatePaymentStatus(invID, models.PaymentStatusPaid, now); err != nil {
		return apperrors.InternalError(err)
	}

	if _, err := s.subscriptionRepo.RecalculateAndPersist(tx.CompanyID, now); err != nil {
		return apperrors.InternalError(err)
	}

	// Начался новый оплаченный период: счетчик периода и счетчик
	// неудачных платежей обнуляются
	if err := s.subscriptionRepo.ResetPeriodUsage(tx.CompanyID); err != nil {
		logger.Warn("Failed to reset period usage", "company_id", tx.CompanyID, "error", err)
	}
	if sub.PaymentFailures > 0 {
		sub.PaymentFailures = 0
		_ = s.subscriptionRepo.Update(sub)
	}

	metrics.RecordCheckout(tx.PlanName, "paid")
	logger.Info("Purchase activated", "company_id", tx.CompanyID, "plan", tx.PlanName, "until", periodEnd)
	return nil
}

func addCycle(from time.Time, cycle models.BillingCycle) time.Time {
	if cycle == models.BillingCycleYearly {
		return from.AddDate(1, 0, 0)
	}
	return from.AddDate(0, 1, 0)
}

func (s *SubscriptionServiceImpl) recordFailure(invID string) error {
	tx, err := s.subscriptionRepo.FindPaymentByInvID(invID)
	if err != nil {
		return apperrors.ErrNotFound(err)
	}
	if tx.Status != models.PaymentStatusPending {
		return nil
	}

	if err := s.subscriptionRepo.UpdatePaymentStatus(invID, models.PaymentStatusFailed, time.Now()); err != nil {
		return apperrors.InternalError(err)
	}

	sub, err := s.subscriptionRepo.FindByCompany(tx.CompanyID)
	if err == nil {
		sub.PaymentFailures++
		if sub.PaymentFailures >= maxPaymentFailures && sub.Status == models.SubscriptionStatusActive {
			sub.Status = models.SubscriptionStatusPastDue
			logger.Warn("Subscription marked past_due",
				"company_id", tx.CompanyID, "failures", sub.PaymentFailures)
		}
		_ = s.subscriptionRepo.Update(sub)
	}

	metrics.RecordCheckout(tx.PlanName, "failed")
	return nil
}

// GetPlatformStats возвращает сводку по подпискам всей платформы
func (s *SubscriptionServiceImpl) GetPlatformStats() (*dto.PlatformStatsResponse, error) {
	counts, err := s.subscriptionRepo.CountByStatus()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.PlatformStatsResponse{
		Trial:   counts[models.SubscriptionStatusTrial],
		Active:  counts[models.SubscriptionStatusActive],
		PastDue: counts[models.SubscriptionStatusPastDue],
		Expired: counts[models.SubscriptionStatusExpired],
	}
	for _, n := range counts {
		resp.Total += n
	}
	return resp, nil
}

// CancelAtPeriodEnd помечает все активные покупки к отмене в конце
// периода; доступ сохраняется до конца оплаченного срока
func (s *SubscriptionServiceImpl) CancelAtPeriodEnd(companyID string) error {
	sub, err := s.subscriptionRepo.FindByCompany(companyID)
	if err != nil {
		return apperrors.ErrNotFound(err)
	}

	active, err := s.subscriptionRepo.FindActivePurchases(sub.ID, time.Now())
	if err != nil {
		return apperrors.InternalError(err)
	}
	if len(active) == 0 {
		return apperrors.ErrInvalidOperation("subscription", "No active purchases to cancel")
	}

	for _, p := range active {
		if err := s.subscriptionRepo.CancelPurchaseAtPeriodEnd(p.ID); err != nil {
			return apperrors.InternalError(err)
		}
	}
	return nil
}

// ListPayments возвращает историю платежей компании
func (s *SubscriptionServiceImpl) ListPayments(companyID string) ([]dto.PaymentResponse, error) {
	payments, err := s.subscriptionRepo.FindPaymentsByCompany(companyID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		result = append(result, dto.PaymentResponse{
			ID:       p.ID,
			PlanName: p.PlanName,
			Cycle:    string(p.Cycle),
			Amount:   p.Amount,
			Currency: p.Currency,
			Status:   string(p.Status),
			PaidAt:   p.PaidAt,
		})
	}
	return result, nil
}
