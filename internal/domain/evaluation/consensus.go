package evaluation

import "math"

// NextStatus returns the workflow status after a rater of role submits
// against an evaluation in current. Peer and subordinate ratings never move
// the workflow.
func NextStatus(current, role string) (string, error) {
	if current == StatusFinalized {
		return "", ErrFinalized
	}
	switch role {
	case RoleSelf:
		if current != StatusPending {
			return "", ErrInvalidTransition.Withf("autoavaliação exige status %s, atual %s", StatusPending, current)
		}
		return StatusSelfDone, nil
	case RoleManager:
		if current != StatusSelfDone {
			return "", ErrInvalidTransition.Withf("avaliação do gestor exige status %s, atual %s", StatusSelfDone, current)
		}
		return StatusManagerDone, nil
	case RolePeer, RoleSubordinate:
		return current, nil
	}
	return "", ErrInvalidRole
}

func Divergence(selfScore, managerScore float64) float64 {
	return math.Abs(selfScore - managerScore)
}

// Resolve decides where an evaluation goes once the manager has submitted.
// A divergence strictly above threshold requires consensus.
func Resolve(selfScore, managerScore, threshold float64) string {
	if Divergence(selfScore, managerScore) > threshold {
		return StatusPendingConsensus
	}
	return StatusFinalized
}

// CanFinalize reports whether Finalize may run from status.
func CanFinalize(status string) bool {
	return status == StatusConsensusDone
}
