package entitlement

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"paintquote_backend/internal/models"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTrialSub(trialEnd time.Time, purchases ...models.Purchase) *models.Subscription {
	return &models.Subscription{
		TrialStart: trialEnd.AddDate(0, 0, -7),
		TrialEnd:   trialEnd,
		Purchases:  purchases,
	}
}

func purchase(plan string, end time.Time) models.Purchase {
	return models.Purchase{
		PlanName:  plan,
		Cycle:     models.BillingCycleMonthly,
		StartDate: end.AddDate(0, -1, 0),
		EndDate:   end,
		Active:    true,
	}
}

func TestRecalculate_TrialOnly(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultCatalog())
	sub := newTrialSub(testNow.Add(48 * time.Hour))

	res := engine.Recalculate(sub, testNow)

	// Активный триал без покупок: ровно триальные бенефиты
	assert.Equal(t, TrialBenefits, res.Limits)
	assert.Equal(t, models.SubscriptionStatusTrial, res.Status)
	assert.Equal(t, "trial", res.PlanName)
}

func TestRecalculate_ExpiredForcesZero(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultCatalog())

	// Истекший триал и только протухшие покупки: все лимиты - 0
	stale := purchase("professional", testNow.Add(-time.Hour))
	sub := newTrialSub(testNow.Add(-24*time.Hour), stale)

	res := engine.Recalculate(sub, testNow)

	assert.Equal(t, Benefits{}, res.Limits)
	assert.Equal(t, models.SubscriptionStatusExpired, res.Status)
}

func TestRecalculate_TrialPlusPurchaseStacks(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultCatalog())
	sub := newTrialSub(
		testNow.Add(48*time.Hour),
		purchase("starter", testNow.AddDate(0, 1, 0)),
	)

	res := engine.Recalculate(sub, testNow)

	assert.Equal(t, Benefits{
		Projects:  3 + 10,
		Users:     1 + 3,
		StorageMB: 500 + 5000,
		APIRate:   50 + 100,
	}, res.Limits)
	assert.Equal(t, models.SubscriptionStatusActive, res.Status)
	assert.Equal(t, "starter", res.PlanName)
}

func TestRecalculate_UnlimitedIsSticky(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultCatalog())
	end := testNow.AddDate(0, 1, 0)

	purchases := []models.Purchase{
		purchase("starter", end),
		purchase("enterprise", end),
		purchase("professional", end),
	}

	// Безлимит побеждает независимо от порядка обработки
	for i := 0; i < 10; i++ {
		shuffled := make([]models.Purchase, len(purchases))
		copy(shuffled, purchases)
		rand.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		sub := newTrialSub(testNow.Add(-time.Hour), shuffled...)
		res := engine.Recalculate(sub, testNow)

		assert.Equal(t, Benefits{
			Projects:  Unlimited,
			Users:     Unlimited,
			StorageMB: Unlimited,
			APIRate:   Unlimited,
		}, res.Limits)
		assert.Equal(t, "enterprise", res.PlanName)
	}
}

func TestRecalculate_PrimaryPlanNameByTier(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultCatalog())
	end := testNow.AddDate(0, 1, 0)

	tests := []struct {
		name  string
		plans []string
		want  string
	}{
		{"starter and enterprise", []string{"starter", "enterprise"}, "enterprise"},
		{"starter and professional", []string{"starter", "professional"}, "professional"},
		{"single starter", []string{"starter"}, "starter"},
		{"duplicate plans", []string{"professional", "professional"}, "professional"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var purchases []models.Purchase
			for _, plan := range tt.plans {
				purchases = append(purchases, purchase(plan, end))
			}
			sub := newTrialSub(testNow.Add(-time.Hour), purchases...)

			res := engine.Recalculate(sub, testNow)
			assert.Equal(t, tt.want, res.PlanName)
		})
	}
}

func TestRecalculate_Idempotent(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultCatalog())
	sub := newTrialSub(
		testNow.Add(time.Hour),
		purchase("professional", testNow.AddDate(0, 1, 0)),
	)

	first := engine.Recalculate(sub, testNow)
	first.Apply(sub)
	second := engine.Recalculate(sub, testNow)

	assert.Equal(t, first, second)
}

func TestIsActive(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultCatalog())

	tests := []struct {
		name string
		sub  *models.Subscription
		want bool
	}{
		{
			"trial still running",
			newTrialSub(testNow.Add(time.Minute)),
			true,
		},
		{
			"trial end boundary is inclusive",
			newTrialSub(testNow),
			true,
		},
		{
			"everything expired",
			newTrialSub(testNow.Add(-time.Minute)),
			false,
		},
		{
			"inactive purchase does not count",
			func() *models.Subscription {
				p := purchase("starter", testNow.AddDate(0, 1, 0))
				p.Active = false
				return newTrialSub(testNow.Add(-time.Hour), p)
			}(),
			false,
		},
		{
			"purchase keeps company active after trial",
			newTrialSub(testNow.Add(-time.Hour), purchase("starter", testNow.AddDate(0, 1, 0))),
			true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, engine.IsActive(tt.sub, testNow))
		})
	}
}

func TestCanCreateProject(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultCatalog())

	t.Run("false when not active regardless of limits", func(t *testing.T) {
		t.Parallel()

		sub := newTrialSub(testNow.Add(-time.Hour))
		sub.MaxProjects = 100
		sub.ProjectsUsed = 0
		assert.False(t, engine.CanCreateProject(sub, testNow))
	})

	t.Run("unlimited always allows", func(t *testing.T) {
		t.Parallel()

		sub := newTrialSub(testNow.Add(time.Hour))
		sub.MaxProjects = Unlimited
		sub.ProjectsUsed = 100000
		assert.True(t, engine.CanCreateProject(sub, testNow))
	})

	t.Run("zero limit blocks", func(t *testing.T) {
		t.Parallel()

		sub := newTrialSub(testNow.Add(time.Hour))
		sub.MaxProjects = 0
		assert.False(t, engine.CanCreateProject(sub, testNow))
	})

	t.Run("counter below limit allows", func(t *testing.T) {
		t.Parallel()

		sub := newTrialSub(testNow.Add(time.Hour))
		sub.MaxProjects = 3
		sub.ProjectsUsed = 2
		assert.True(t, engine.CanCreateProject(sub, testNow))
	})

	t.Run("counter at limit blocks", func(t *testing.T) {
		t.Parallel()

		sub := newTrialSub(testNow.Add(time.Hour))
		sub.MaxProjects = 3
		sub.ProjectsUsed = 3
		assert.False(t, engine.CanCreateProject(sub, testNow))
	})

	t.Run("fresh subscription with zero-value counter", func(t *testing.T) {
		t.Parallel()

		// Неинициализированный счетчик - это 0, а не ошибка
		sub := newTrialSub(testNow.Add(time.Hour))
		sub.MaxProjects = 3
		assert.True(t, engine.CanCreateProject(sub, testNow))
	})
}

func TestDaysRemaining(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultCatalog())

	tests := []struct {
		name string
		sub  *models.Subscription
		want int
	}{
		{
			"30 hours rounds up to 2 days",
			newTrialSub(testNow.Add(30 * time.Hour)),
			2,
		},
		{
			"exactly 24 hours is 1 day",
			newTrialSub(testNow.Add(24 * time.Hour)),
			1,
		},
		{
			"10 minutes still counts as 1 day",
			newTrialSub(testNow.Add(10 * time.Minute)),
			1,
		},
		{
			"nothing left returns 0",
			newTrialSub(testNow.Add(-time.Hour)),
			0,
		},
		{
			"latest active purchase wins over trial",
			newTrialSub(
				testNow.Add(24*time.Hour),
				purchase("starter", testNow.Add(10*24*time.Hour)),
			),
			10,
		},
		{
			"inactive purchase is ignored",
			func() *models.Subscription {
				p := purchase("starter", testNow.Add(100*24*time.Hour))
				p.Active = false
				return newTrialSub(testNow.Add(24*time.Hour), p)
			}(),
			1,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, engine.DaysRemaining(tt.sub, testNow))
		})
	}
}

func TestApply_WritesAggregateFields(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultCatalog())
	sub := newTrialSub(testNow.Add(-time.Hour), purchase("professional", testNow.AddDate(0, 1, 0)))

	res := engine.Recalculate(sub, testNow)
	res.Apply(sub)

	assert.Equal(t, 50, sub.MaxProjects)
	assert.Equal(t, 10, sub.MaxUsers)
	assert.Equal(t, 20000, sub.MaxStorageMB)
	assert.Equal(t, 500, sub.MaxAPIRate)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, "professional", sub.PlanName)
}

func TestRecalculate_CancelledLapseStatus(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultCatalog())

	cancelled := purchase("starter", testNow.AddDate(0, 0, -1))
	cancelled.Cancelled = true
	sub := newTrialSub(testNow.AddDate(0, -2, 0), cancelled)

	res := engine.Recalculate(sub, testNow)

	// Явно отмененная последняя покупка дает cancelled, не expired
	assert.Equal(t, models.SubscriptionStatusCancelled, res.Status)
	assert.Equal(t, Benefits{}, res.Limits)

	// Естественное истечение без отмены остается expired
	lapsed := newTrialSub(testNow.AddDate(0, -2, 0), purchase("starter", testNow.AddDate(0, 0, -1)))
	assert.Equal(t, models.SubscriptionStatusExpired, engine.Recalculate(lapsed, testNow).Status)
}

func TestRecordProjectCreation_TrialPurchaseOverlap(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultCatalog())
	sub := newTrialSub(testNow.Add(72*time.Hour), purchase("starter", testNow.AddDate(0, 1, 0)))

	res := engine.Recalculate(sub, testNow)
	res.Apply(sub)
	// Покупка поверх живого триала: статус уже active
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)

	engine.RecordProjectCreation(sub, testNow)

	// Триальный счетчик идет по окну, а не по кэшированному статусу
	assert.Equal(t, 1, sub.ProjectsUsed)
	assert.Equal(t, 1, sub.TrialProjectsUsed)
}

func TestRecordProjectCreation_AfterTrialWindow(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultCatalog())
	sub := newTrialSub(testNow.Add(-time.Hour), purchase("starter", testNow.AddDate(0, 1, 0)))

	engine.RecordProjectCreation(sub, testNow)

	assert.Equal(t, 1, sub.ProjectsUsed)
	assert.Equal(t, 0, sub.TrialProjectsUsed)
}
