package domain

const (
	PlanFree     = "free"
	PlanPlus     = "plus"
	PlanPro      = "pro"
	PlanBusiness = "business"

	// DefaultPlan используется при ленивом создании квоты.
	DefaultPlan = PlanFree
)

const (
	kb = int64(1024)
	mb = 1024 * kb
	gb = 1024 * mb
	tb = 1024 * gb
)

// PlanLimits описывает лимиты тарифного плана.
type PlanLimits struct {
	Name           string `json:"name"`
	StorageBytes   int64  `json:"storage_bytes"`
	MaxUploadBytes int64  `json:"max_upload_bytes"`
	Priority       int    `json:"priority"`
}

// Статический каталог тарифов. Приоритет определяет, чей потолок
// становится общим лимитом при объединении доменов.
var planCatalog = map[string]PlanLimits{
	// Бесплатный тариф не ограничивает размер одной загрузки отдельно:
	// единственный потолок это сама квота.
	PlanFree: {Name: PlanFree, StorageBytes: 15 * gb, MaxUploadBytes: 15 * gb, Priority: 0},
	PlanPlus:     {Name: PlanPlus, StorageBytes: 100 * gb, MaxUploadBytes: 5 * gb, Priority: 1},
	PlanPro:      {Name: PlanPro, StorageBytes: 1 * tb, MaxUploadBytes: 20 * gb, Priority: 2},
	PlanBusiness: {Name: PlanBusiness, StorageBytes: 5 * tb, MaxUploadBytes: 50 * gb, Priority: 3},
}

// PlanByName возвращает лимиты тарифа. Неизвестное имя не должно ронять
// сервис, поэтому отдаём дефолтный тариф.
func PlanByName(name string) PlanLimits {
	if p, ok := planCatalog[name]; ok {
		return p
	}
	return planCatalog[DefaultPlan]
}

// HigherPriorityPlan выбирает тариф с большим приоритетом из двух.
func HigherPriorityPlan(a, b string) PlanLimits {
	pa := PlanByName(a)
	pb := PlanByName(b)
	if pb.Priority > pa.Priority {
		return pb
	}
	return pa
}
