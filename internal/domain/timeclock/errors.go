package timeclock

import "avd/internal/domain/errs"

var (
	ErrNotFound          = errs.NotFound("discrepancy_not_found", "discrepância não encontrada")
	ErrAlertNotFound     = errs.NotFound("alert_not_found", "alerta não encontrado")
	ErrEmployeeRequired  = errs.Validation("employee_required", "colaborador obrigatório")
	ErrInvalidDate       = errs.Validation("invalid_date", "data inválida, use AAAA-MM-DD")
	ErrInvalidClock      = errs.Validation("invalid_clock", "horário de ponto inválido")
	ErrClockOrder        = errs.Validation("clock_out_before_in", "saída anterior à entrada")
	ErrNoWorkedTime      = errs.Validation("no_worked_time", "informe minutos trabalhados ou entrada e saída")
	ErrNegativeMinutes   = errs.Validation("negative_minutes", "minutos não podem ser negativos")
	ErrInvalidMinutes    = errs.Validation("invalid_activity_minutes", "minutos de atividade devem ser positivos")
	ErrDescription       = errs.Validation("description_required", "descrição obrigatória")
	ErrInvalidSource     = errs.Validation("invalid_source", "origem de importação inválida")
	ErrEmptyImport       = errs.Validation("empty_import", "nenhum registro para importar")
	ErrImportTooLarge    = errs.Validation("import_too_large", "importação excede o limite de registros")
	ErrJustification     = errs.Validation("justification_required", "justificativa obrigatória")
	ErrInvalidRange      = errs.Validation("invalid_range", "período inválido")
	ErrInvalidFilter     = errs.Validation("invalid_filter", "filtro inválido")
	ErrAlreadyReviewed   = errs.Conflict("discrepancy_reviewed", "discrepância já foi analisada")
	ErrAlertResolved     = errs.Conflict("alert_resolved", "alerta já resolvido")
	ErrInvalidThresholds = errs.Validation("invalid_thresholds", "limites de discrepância inválidos")
)
