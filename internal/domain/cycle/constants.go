package cycle

const (
	StatusPlanned = "planejado"
	StatusActive  = "ativo"
	StatusClosed  = "concluido"
)

// weightTolerance absorbs float noise from NUMERIC round trips.
const weightTolerance = 1e-6
