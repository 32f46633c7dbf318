package goal

import "avd/internal/domain/errs"

var (
	ErrNotFound         = errs.NotFound("goal_not_found", "meta não encontrada")
	ErrEmployeeRequired = errs.Validation("employee_required", "metas individuais exigem colaborador")
	ErrInvalidType      = errs.Validation("invalid_goal_type", "tipo de meta inválido")
	ErrInvalidCategory  = errs.Validation("invalid_goal_category", "categoria de meta inválida")
	ErrTitleTooShort    = errs.Validation("title_too_short", "título deve ter ao menos 10 caracteres")
	ErrDescTooShort     = errs.Validation("description_too_short", "descrição deve ter ao menos 50 caracteres")
	ErrInvalidWeight    = errs.Validation("invalid_goal_weight", "peso da meta deve estar entre 1 e 100")
	ErrInvalidDates     = errs.Validation("invalid_goal_dates", "data final deve ser igual ou posterior à data inicial")
	ErrNegativeProgress = errs.Validation("negative_progress", "valor atual não pode ser negativo")
	ErrNoTarget         = errs.Validation("goal_without_target", "meta sem valor alvo não permite acompanhamento")
	ErrInvalidRule      = errs.Validation("invalid_eligibility_rule", "regra de elegibilidade inválida")
	ErrInvalidStatus    = errs.Validation("invalid_goal_status", "status de meta inválido")
	ErrCycleClosed      = errs.Conflict("goal_cycle_closed", "ciclo já concluído não aceita novas metas")
	ErrGoalCompleted    = errs.Conflict("goal_completed", "meta concluída não pode ser alterada")
)
