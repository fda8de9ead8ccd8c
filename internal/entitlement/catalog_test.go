package entitlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalog_UnknownPlanDefaultsToZero(t *testing.T) {
	t.Parallel()

	c := DefaultCatalog()

	// Отсутствующий план - нулевые бенефиты, без ошибки
	assert.Equal(t, Benefits{}, c.PlanBenefits("no-such-plan"))
	assert.Equal(t, 0, c.Benefit("no-such-plan", DimensionProjects))
	assert.Equal(t, 0, c.Tier("no-such-plan"))
}

func TestCatalog_Benefit(t *testing.T) {
	t.Parallel()

	c := DefaultCatalog()

	assert.Equal(t, 10, c.Benefit("starter", DimensionProjects))
	assert.Equal(t, 10, c.Benefit("professional", DimensionUsers))
	assert.Equal(t, Unlimited, c.Benefit("enterprise", DimensionStorageMB))
	assert.Equal(t, 0, c.Benefit("starter", Dimension("bogus")))
}

func TestCatalog_HighestTierName(t *testing.T) {
	t.Parallel()

	c := DefaultCatalog()

	assert.Equal(t, "enterprise", c.HighestTierName([]string{"starter", "enterprise"}))
	assert.Equal(t, "professional", c.HighestTierName([]string{"professional", "starter"}))
	assert.Equal(t, "starter", c.HighestTierName([]string{"starter", "unknown"}))
	assert.Equal(t, "", c.HighestTierName(nil))
}

func TestCatalog_PlanNamesOrderedByTier(t *testing.T) {
	t.Parallel()

	c := DefaultCatalog()
	assert.Equal(t, []string{"starter", "professional", "enterprise"}, c.PlanNames())
}
