package evaluation

import "avd/internal/domain/errs"

var (
	ErrNotFound           = errs.NotFound("evaluation_not_found", "avaliação não encontrada")
	ErrFinalized          = errs.Conflict("evaluation_finalized", "avaliação já finalizada não aceita novas notas")
	ErrInvalidTransition  = errs.Conflict("invalid_transition", "etapa da avaliação não permite esta ação")
	ErrConcurrentUpdate   = errs.Conflict("concurrent_update", "avaliação foi alterada por outra operação, tente novamente")
	ErrDuplicateRating    = errs.Conflict("duplicate_rating", "avaliador já registrou nota para esta competência")
	ErrCycleNotActive     = errs.Conflict("cycle_not_active", "ciclo de avaliação não está ativo")
	ErrCycleClosed        = errs.Conflict("cycle_closed", "ciclo de avaliação já concluído")
	ErrScoreOutOfRange    = errs.Validation("score_out_of_range", "nota fora da escala configurada")
	ErrUnknownCompetency  = errs.Validation("unknown_competency", "competência não pertence ao ciclo")
	ErrInvalidRole        = errs.Validation("invalid_rater_role", "papel de avaliador inválido")
	ErrNoRatings          = errs.Validation("no_ratings", "informe ao menos uma nota")
	ErrRepeatedCompetency = errs.Validation("repeated_competency", "competência repetida na mesma submissão")
	ErrConsensusScore     = errs.Validation("consensus_score_out_of_range", "nota de consenso deve estar entre 0 e 100")
	ErrWrongRater         = errs.Forbidden("wrong_rater", "avaliador não pode avaliar este colaborador neste papel")
	ErrNotManager         = errs.Forbidden("not_manager", "apenas o gestor do colaborador pode registrar o consenso")
	ErrNoWeights          = errs.Conflict("cycle_without_weights", "ciclo sem pesos configurados")
	ErrNotComparable      = errs.Conflict("scores_not_comparable", "autoavaliação e avaliação do gestor não cobrem competências do ciclo")
	ErrRejectReason       = errs.Validation("reject_reason_required", "informe o motivo da rejeição")
)

var errInvalidStatusFilter = errs.Validation("invalid_status", "status de avaliação inválido")
