package entitlement

// Unlimited - сентинел "без ограничений" для любого лимита.
// Липкий при агрегации: одно безлимитное слагаемое делает
// безлимитным весь результат измерения.
const Unlimited = -1

// Dimension - одно из четырех измерений лимитов
type Dimension string

const (
	DimensionProjects  Dimension = "projects"
	DimensionUsers     Dimension = "users"
	DimensionStorageMB Dimension = "storage_mb"
	DimensionAPIRate   Dimension = "api_rate"
)

// Benefits - численные лимиты плана по всем измерениям
type Benefits struct {
	Projects  int `json:"projects"`
	Users     int `json:"users"`
	StorageMB int `json:"storage_mb"`
	APIRate   int `json:"api_rate"`
}

type Plan struct {
	Name         string   `json:"name"`
	Tier         int      `json:"tier"` // starter(1) < professional(2) < enterprise(3)
	PriceMonthly float64  `json:"price_monthly"`
	PriceYearly  float64  `json:"price_yearly"`
	Benefits     Benefits `json:"benefits"`
}

// TrialPlanName - имя псевдоплана триального окна; триал не входит
// в каталог покупаемых планов
const TrialPlanName = "trial"

// TrialBenefits - фиксированные лимиты триального окна
var TrialBenefits = Benefits{
	Projects:  3,
	Users:     1,
	StorageMB: 500,
	APIRate:   50,
}

// Catalog - иммутабельный каталог планов. Инжектится в движок и сервисы
// явно, а не читается из глобального состояния: это снимает риск
// расхождения определений каталога между модулями.
type Catalog struct {
	plans map[string]Plan
}

func NewCatalog(plans ...Plan) Catalog {
	m := make(map[string]Plan, len(plans))
	for _, p := range plans {
		m[p.Name] = p
	}
	return Catalog{plans: m}
}

// DefaultCatalog возвращает каталог с актуальными тарифами
func DefaultCatalog() Catalog {
	return NewCatalog(
		Plan{
			Name:         "starter",
			Tier:         1,
			PriceMonthly: 29,
			PriceYearly:  290,
			Benefits:     Benefits{Projects: 10, Users: 3, StorageMB: 5000, APIRate: 100},
		},
		Plan{
			Name:         "professional",
			Tier:         2,
			PriceMonthly: 79,
			PriceYearly:  790,
			Benefits:     Benefits{Projects: 50, Users: 10, StorageMB: 20000, APIRate: 500},
		},
		Plan{
			Name:         "enterprise",
			Tier:         3,
			PriceMonthly: 199,
			PriceYearly:  1990,
			Benefits:     Benefits{Projects: Unlimited, Users: Unlimited, StorageMB: Unlimited, APIRate: Unlimited},
		},
	)
}

// Plan возвращает план по имени
func (c Catalog) Plan(name string) (Plan, bool) {
	p, ok := c.plans[name]
	return p, ok
}

// PlanNames возвращает имена планов в порядке возрастания tier
func (c Catalog) PlanNames() []string {
	names := make([]string, 0, len(c.plans))
	for tier := 1; tier <= len(c.plans); tier++ {
		for name, p := range c.plans {
			if p.Tier == tier {
				names = append(names, name)
			}
		}
	}
	return names
}

// PlanBenefits возвращает лимиты плана.
// Неизвестный план дает нулевые лимиты: конфигурационная ошибка
// деградирует до нуля, а не роняет запрос.
func (c Catalog) PlanBenefits(name string) Benefits {
	p, ok := c.plans[name]
	if !ok {
		return Benefits{}
	}
	return p.Benefits
}

// Benefit возвращает лимит плана по одному измерению
func (c Catalog) Benefit(name string, d Dimension) int {
	b := c.PlanBenefits(name)
	switch d {
	case DimensionProjects:
		return b.Projects
	case DimensionUsers:
		return b.Users
	case DimensionStorageMB:
		return b.StorageMB
	case DimensionAPIRate:
		return b.APIRate
	default:
		return 0
	}
}

// Tier возвращает tier плана, 0 для неизвестного
func (c Catalog) Tier(name string) int {
	p, ok := c.plans[name]
	if !ok {
		return 0
	}
	return p.Tier
}

// HighestTierName выбирает отображаемое имя плана среди набора имен:
// фиксированный порядок starter < professional < enterprise,
// без учета давности покупки.
func (c Catalog) HighestTierName(names []string) string {
	best := ""
	bestTier := 0
	for _, name := range names {
		if t := c.Tier(name); t > bestTier {
			best = name
			bestTier = t
		}
	}
	return best
}
