package bonus

import "avd/internal/domain/errs"

var (
	ErrNotFound           = errs.NotFound("bonus_not_found", "cálculo de bônus não encontrado")
	ErrNoEvaluation       = errs.NotFound("evaluation_not_found", "colaborador sem avaliação no ciclo")
	ErrNotFinalized       = errs.Conflict("evaluation_not_finalized", "avaliação ainda não finalizada")
	ErrAlreadyPaid        = errs.Conflict("bonus_already_paid", "bônus já pago não pode ser alterado")
	ErrScoreOutOfRange    = errs.Validation("score_out_of_range", "nota deve estar entre 0 e 100")
	ErrInvalidBands       = errs.Validation("invalid_bands", "faixas de desempenho inválidas")
	ErrInvalidMultipliers = errs.Validation("invalid_multipliers", "multiplicadores de bônus inválidos")
	ErrInvalidRule        = errs.Validation("invalid_eligibility_rule", "regra de elegibilidade deve ser all ou any")
)
