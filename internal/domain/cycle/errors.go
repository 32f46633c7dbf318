package cycle

import "avd/internal/domain/errs"

var (
	ErrNotFound            = errs.NotFound("cycle_not_found", "ciclo não encontrado")
	ErrCompetencyNotFound  = errs.Validation("competency_not_found", "competência não encontrada")
	ErrWeightsSum          = errs.Validation("weights_sum", "soma dos pesos deve ser 100%")
	ErrNegativeWeight      = errs.Validation("negative_weight", "pesos não podem ser negativos")
	ErrInvalidDates        = errs.Validation("invalid_dates", "data final deve ser igual ou posterior à data inicial")
	ErrInvalidName         = errs.Validation("invalid_name", "nome do ciclo é obrigatório")
	ErrInvalidThreshold    = errs.Validation("invalid_threshold", "limite de divergência deve estar entre 0 e 100")
	ErrNoCompetencies      = errs.Validation("no_competencies", "informe ao menos uma competência")
	ErrDuplicateCompetency = errs.Validation("duplicate_competency", "competência repetida")
	ErrCompetencyWeight    = errs.Validation("competency_weight", "peso da competência deve ser positivo")
	ErrCompetencyExists    = errs.Conflict("competency_exists", "competência já cadastrada")
	ErrConfigLocked        = errs.Conflict("cycle_config_locked", "configuração do ciclo não pode ser alterada após a ativação")
	ErrInvalidTransition   = errs.Conflict("cycle_invalid_transition", "transição de status do ciclo inválida")
	ErrNotConfigured       = errs.Conflict("cycle_not_configured", "ciclo precisa de pesos e competências antes da ativação")
)

var errInvalidCompetencyName = errs.Validation("invalid_competency_name", "nome da competência é obrigatório")
