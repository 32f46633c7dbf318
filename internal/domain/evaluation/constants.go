package evaluation

const (
	StatusPending          = "pending"
	StatusSelfDone         = "self_done"
	StatusManagerDone      = "manager_done"
	StatusPendingConsensus = "pending_consensus"
	StatusConsensusDone    = "consensus_done"
	StatusFinalized        = "finalized"
)

const (
	RoleSelf        = "self"
	RoleManager     = "manager"
	RolePeer        = "peer"
	RoleSubordinate = "subordinate"
)

var Roles = []string{RoleSelf, RoleManager, RolePeer, RoleSubordinate}

var Statuses = []string{
	StatusPending,
	StatusSelfDone,
	StatusManagerDone,
	StatusPendingConsensus,
	StatusConsensusDone,
	StatusFinalized,
}

func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

func ValidStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}
