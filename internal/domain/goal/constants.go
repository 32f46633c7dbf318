package goal

const (
	TypeIndividual     = "individual"
	TypeTeam           = "team"
	TypeOrganizational = "organizational"
)

const (
	CategoryFinancial   = "financial"
	CategoryBehavioral  = "behavioral"
	CategoryCorporate   = "corporate"
	CategoryDevelopment = "development"
)

const (
	StatusDraft      = "rascunho"
	StatusInProgress = "em_andamento"
	StatusCompleted  = "concluida"
)

const (
	RuleAll = "all"
	RuleAny = "any"
)

const (
	DefaultWeight     = 10
	minTitleLength    = 10
	minDescLength     = 50
	maxAchievable     = 1000000
	smartPointsEach   = 20
	minTimeboxMonths  = 1
	maxTimeboxMonths  = 24
	daysPerPlanMonth  = 30
	progressCompleted = 100
)

func ValidType(t string) bool {
	switch t {
	case TypeIndividual, TypeTeam, TypeOrganizational:
		return true
	}
	return false
}

func ValidCategory(c string) bool {
	switch c {
	case CategoryFinancial, CategoryBehavioral, CategoryCorporate, CategoryDevelopment:
		return true
	}
	return false
}

func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}
