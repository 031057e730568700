package offering

// Offering is a bookable salon service: a haircut, a coloring, a manicure.
type Offering struct {
	Id              int
	Name            string
	DurationMinutes int
	PriceCents      int
	Active          bool
}
