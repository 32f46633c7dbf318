package bonus

const (
	StatusCalculated = "calculado"
	StatusPaid       = "pago"
)

const (
	maxMultiplier = 10
	batchLimit    = 10000
)
