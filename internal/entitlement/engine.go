package entitlement

import (
	"time"

	"paintquote_backend/internal/models"
)

// Engine агрегирует триал и все активные покупки компании в единый
// набор действующих лимитов и статус. Все методы чистые по (подписка,
// покупки, время); персистентность - забота сервисного слоя, который
// обязан записывать результат пересчета одной транзакцией.
type Engine struct {
	catalog Catalog
}

func NewEngine(catalog Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// Result - итог пересчета entitlement
type Result struct {
	Limits   Benefits
	Status   models.SubscriptionStatus
	PlanName string
}

// Recalculate пересчитывает агрегированные лимиты и статус подписки.
// Лимиты по каждому измерению складываются независимо: триальные
// бенефиты (пока окно живо) плюс бенефиты каждой активной покупки.
// Безлимит (-1) липкий и коммутативный: порядок покупок не влияет.
func (e *Engine) Recalculate(sub *models.Subscription, now time.Time) Result {
	trialActive := !now.After(sub.TrialEnd)
	active := activePurchases(sub.Purchases, now)

	// Ничего не активно: все измерения принудительно 0
	if !trialActive && len(active) == 0 {
		return Result{
			Limits:   Benefits{},
			Status:   lapsedStatus(sub.Purchases),
			PlanName: sub.PlanName,
		}
	}

	var limits Benefits
	if trialActive {
		limits = addBenefits(limits, TrialBenefits)
	}
	for _, p := range active {
		limits = addBenefits(limits, e.catalog.PlanBenefits(p.PlanName))
	}

	if len(active) > 0 {
		names := make([]string, 0, len(active))
		for _, p := range active {
			names = append(names, p.PlanName)
		}
		return Result{
			Limits:   limits,
			Status:   models.SubscriptionStatusActive,
			PlanName: e.catalog.HighestTierName(names),
		}
	}

	return Result{
		Limits:   limits,
		Status:   models.SubscriptionStatusTrial,
		PlanName: TrialPlanName,
	}
}

// Apply записывает итог пересчета в агрегат (в памяти).
// Единственный путь мутации кэшированных лимитов и статуса.
func (r Result) Apply(sub *models.Subscription) {
	sub.MaxProjects = r.Limits.Projects
	sub.MaxUsers = r.Limits.Users
	sub.MaxStorageMB = r.Limits.StorageMB
	sub.MaxAPIRate = r.Limits.APIRate
	sub.Status = r.Status
	if r.PlanName != "" {
		sub.PlanName = r.PlanName
	}
}

// lapsedStatus различает естественное истечение и явную отмену:
// если последняя по сроку покупка была отменена - cancelled, иначе
// (в том числе для чистого триала без покупок) - expired.
func lapsedStatus(purchases []models.Purchase) models.SubscriptionStatus {
	var last *models.Purchase
	for i := range purchases {
		if last == nil || purchases[i].EndDate.After(last.EndDate) {
			last = &purchases[i]
		}
	}
	if last != nil && last.Cancelled {
		return models.SubscriptionStatusCancelled
	}
	return models.SubscriptionStatusExpired
}

// RecordProjectCreation увеличивает счетчики использования в памяти.
// Триальный счетчик растет, пока живо триальное окно, независимо от
// кэшированного статуса: при пересечении триала с активной покупкой
// статус уже "active", а окно еще идет.
func (e *Engine) RecordProjectCreation(sub *models.Subscription, now time.Time) {
	sub.ProjectsUsed++
	if !now.After(sub.TrialEnd) {
		sub.TrialProjectsUsed++
	}
}

// IsActive - "живой" предикат активности, независимый от кэшированного
// статуса. Кэшированный Status обновляется только при пересчете, поэтому
// проверки доступа обязаны ходить сюда.
func (e *Engine) IsActive(sub *models.Subscription, now time.Time) bool {
	if !now.After(sub.TrialEnd) {
		return true
	}
	return len(activePurchases(sub.Purchases, now)) > 0
}

// CanCreateProject проверяет, можно ли создать еще один проект.
// Лимит берется из кэшированной колонки (она валидна, пока единственный
// путь записи - пересчет), активность - живым предикатом.
func (e *Engine) CanCreateProject(sub *models.Subscription, now time.Time) bool {
	if !e.IsActive(sub, now) {
		return false
	}
	limit := sub.MaxProjects
	if limit == Unlimited {
		return true
	}
	if limit <= 0 {
		return false
	}
	return sub.ProjectsUsed < limit
}

// DaysRemaining возвращает число целых дней до самого позднего конца
// действия (триал или активная покупка), с округлением ненулевого
// остатка вверх. 0 - если ничего не действует.
func (e *Engine) DaysRemaining(sub *models.Subscription, now time.Time) int {
	var latest time.Time

	if sub.TrialEnd.After(now) {
		latest = sub.TrialEnd
	}
	for _, p := range activePurchases(sub.Purchases, now) {
		if p.EndDate.After(latest) {
			latest = p.EndDate
		}
	}

	if latest.IsZero() || !latest.After(now) {
		return 0
	}

	diff := latest.Sub(now)
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return days
}

// activePurchases фильтрует покупки: активный флаг и конец в будущем
func activePurchases(purchases []models.Purchase, now time.Time) []models.Purchase {
	var active []models.Purchase
	for _, p := range purchases {
		if p.Active && p.EndDate.After(now) {
			active = append(active, p)
		}
	}
	return active
}

// addBenefits складывает лимиты поизмеренно с липким безлимитом
func addBenefits(a, b Benefits) Benefits {
	return Benefits{
		Projects:  addDimension(a.Projects, b.Projects),
		Users:     addDimension(a.Users, b.Users),
		StorageMB: addDimension(a.StorageMB, b.StorageMB),
		APIRate:   addDimension(a.APIRate, b.APIRate),
	}
}

func addDimension(a, b int) int {
	if a == Unlimited || b == Unlimited {
		return Unlimited
	}
	return a + b
}
