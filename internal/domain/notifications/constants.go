package notifications

const (
	TypeConsensusRequired = "consensus_required"
	TypeConsensusReminder = "consensus_reminder"
	TypeConsensusRejected = "consensus_rejected"
	TypeEvaluationFinal   = "evaluation_finalized"
	TypeBonusCalculated   = "bonus_calculated"
	TypeDiscrepancyAlert  = "discrepancy_alert"
	TypeGoalDeadline      = "goal_deadline"
)
