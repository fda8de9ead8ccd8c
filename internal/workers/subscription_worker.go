package workers

import (
	"context"
	"time"

	"paintquote_backend/internal/email"
	"paintquote_backend/internal/entitlement"
	"paintquote_backend/internal/logger"
	"paintquote_backend/internal/metrics"
	"paintquote_backend/internal/models"
	"paintquote_backend/internal/repositories"
)

const (
	expiryCheckInterval = 1 * time.Hour
	trialWarnInterval   = 24 * time.Hour
	tokenCleanInterval  = 12 * time.Hour

	// За сколько дней до конца триала предупреждаем
	trialWarnDays = 2
)

type SubscriptionWorker struct {
	subscriptionRepo repositories.SubscriptionRepository
	userRepo         repositories.UserRepository
	emailSender      email.Provider
	engine           *entitlement.Engine
	plansURL         string

	// По какому TrialEnd компания уже предупреждена. Держится в памяти:
	// после рестарта возможен один повтор, это приемлемо.
	warned map[string]time.Time
}

func NewSubscriptionWorker(
	subscriptionRepo repositories.SubscriptionRepository,
	userRepo repositories.UserRepository,
	emailSender email.Provider,
	engine *entitlement.Engine,
	plansURL string,
) *SubscriptionWorker {
	return &SubscriptionWorker{
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		emailSender:      emailSender,
		engine:           engine,
		plansURL:         plansURL,
		warned:           make(map[string]time.Time),
	}
}

// Start запускает фоновые задачи для подписок
func (w *SubscriptionWorker) Start(ctx context.Context) {
	go w.expireStaleSubscriptions(ctx)
	go w.warnExpiringTrials(ctx)
	go w.cleanExpiredTokens(ctx)
}

// expireStaleSubscriptions пересчитывает подписки, у которых
// кэшированный статус отстал от реального положения дел
func (w *SubscriptionWorker) expireStaleSubscriptions(ctx context.Context) {
	ticker := time.NewTicker(expiryCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Subscription expiry worker stopped")
			return
		case <-ticker.C:
			w.runExpiryPass()
		}
	}
}

func (w *SubscriptionWorker) runExpiryPass() {
	now := time.Now()
	stale, err := w.subscriptionRepo.FindStale(now)
	if err != nil {
		logger.WorkerLog("subscription", "find_stale", err)
		return
	}

	expired := 0
	for i := range stale {
		before := stale[i].Status
		sub, err := w.subscriptionRepo.RecalculateAndPersist(stale[i].CompanyID, now)
		if err != nil {
			logger.WorkerLog("subscription", "recalculate", err)
			continue
		}
		if before != models.SubscriptionStatusExpired && sub.Status == models.SubscriptionStatusExpired {
			expired++
			metrics.RecordSubscriptionExpired()
		}
	}

	if expired > 0 {
		logger.Info("Expired stale subscriptions", "count", expired, "checked", len(stale))
	}
}

// warnExpiringTrials шлет владельцам письмо о скором конце триала
func (w *SubscriptionWorker) warnExpiringTrials(ctx context.Context) {
	ticker := time.NewTicker(trialWarnInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Trial warning worker stopped")
			return
		case <-ticker.C:
			w.runTrialWarnPass()
		}
	}
}

func (w *SubscriptionWorker) runTrialWarnPass() {
	subs, err := w.subscriptionRepo.FindExpiringTrials(trialWarnDays)
	if err != nil {
		logger.WorkerLog("subscription", "find_expiring_trials", err)
		return
	}

	for i := range subs {
		// Окно в 2 дня шире интервала тикера: без отметки одна и та же
		// компания получала бы письмо каждый прогон
		if w.warned[subs[i].CompanyID].Equal(subs[i].TrialEnd) {
			continue
		}
		if w.sendTrialWarning(&subs[i]) {
			w.warned[subs[i].CompanyID] = subs[i].TrialEnd
		}
	}
}

func (w *SubscriptionWorker) sendTrialWarning(sub *models.Subscription) bool {
	users, err := w.userRepo.FindByCompany(sub.CompanyID)
	if err != nil {
		logger.WorkerLog("subscription", "find_company_users", err)
		return false
	}

	daysLeft := w.engine.DaysRemaining(sub, time.Now())

	sent := false
	for i := range users {
		if users[i].Role != models.UserRoleOwner {
			continue
		}
		msg := &email.Email{
			To:      []string{users[i].Email},
			Subject: "Your trial is ending soon",
		}
		data := email.TemplateData{
			"Name":     users[i].Name,
			"AppName":  "PaintQuote",
			"DaysLeft": daysLeft,
			"PlansURL": w.plansURL,
		}
		if err := w.emailSender.SendWithTemplate(email.TemplateTrialExpiring, data, msg); err != nil {
			logger.WorkerLog("subscription", "send_trial_warning", err)
			continue
		}
		sent = true
	}
	return sent
}

// cleanExpiredTokens подчищает протухшие refresh-токены
func (w *SubscriptionWorker) cleanExpiredTokens(ctx context.Context) {
	ticker := time.NewTicker(tokenCleanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Token cleanup worker stopped")
			return
		case <-ticker.C:
			if err := w.userRepo.CleanExpiredRefreshTokens(); err != nil {
				logger.WorkerLog("subscription", "clean_refresh_tokens", err)
			}
		}
	}
}
