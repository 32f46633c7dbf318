package timeclock

const (
	TypeAcceptable    = "acceptable"
	TypeOverReported  = "over_reported"
	TypeUnderReported = "under_reported"

	StatusPending   = "pending"
	StatusReviewed  = "reviewed"
	StatusJustified = "justified"
	StatusFlagged   = "flagged"

	AlertTypeTimeDiscrepancy = "time_discrepancy"
	AlertOpen                = "open"
	AlertResolved            = "resolved"

	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"

	SourceImport = "import"
	SourceManual = "manual"
	SourceAPI    = "api"

	dateLayout    = "2006-01-02"
	maxImportSize = 5000
	defaultLimit  = 100
	maxLimit      = 1000
)

func ValidType(t string) bool {
	switch t {
	case TypeAcceptable, TypeOverReported, TypeUnderReported:
		return true
	}
	return false
}

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusReviewed, StatusJustified, StatusFlagged:
		return true
	}
	return false
}

func ValidSource(s string) bool {
	switch s {
	case SourceImport, SourceManual, SourceAPI:
		return true
	}
	return false
}
