package domain

// Operational defaults for a delivery day.
const (
	DefaultMaxWorkingMinutes = 600.0
	DefaultMaxDistanceKm     = 100.0
	DefaultSpeedKmh          = 12.0
	DefaultMinimumGuarantee  = 500.0

	// Pay tiers by assigned order count.
	Tier1MinOrders = 25
	Tier1Rate      = 35.0
	Tier2MinOrders = 50
	Tier2Rate      = 42.0
)

// Limits holds the per-agent daily caps and pay floor applied by the engine.
type Limits struct {
	MaxWorkingMinutes float64
	MaxDistanceKm     float64
	SpeedKmh          float64
	MinimumGuarantee  float64
}

func DefaultLimits() Limits {
	return Limits{
		MaxWorkingMinutes: DefaultMaxWorkingMinutes,
		MaxDistanceKm:     DefaultMaxDistanceKm,
		SpeedKmh:          DefaultSpeedKmh,
		MinimumGuarantee:  DefaultMinimumGuarantee,
	}
}

// TravelMinutes converts a straight-line distance to travel time at the configured speed.
func (l Limits) TravelMinutes(distanceKm float64) float64 {
	return distanceKm / l.SpeedKmh * 60
}

// Within reports whether projected totals respect both caps.
func (l Limits) Within(totalTimeMin, totalDistanceKm float64) bool {
	return totalTimeMin <= l.MaxWorkingMinutes && totalDistanceKm <= l.MaxDistanceKm
}

// Pay returns an agent's daily pay for orderCount orders.
//
// The tiers are discontinuous: 24 orders earn the flat guarantee, 25 earn 875.
func (l Limits) Pay(orderCount int) float64 {
	switch {
	case orderCount >= Tier2MinOrders:
		return float64(orderCount) * Tier2Rate
	case orderCount >= Tier1MinOrders:
		return float64(orderCount) * Tier1Rate
	default:
		return l.MinimumGuarantee
	}
}

// MarginalPay is the extra pay for accepting one more order.
func (l Limits) MarginalPay(orderCount int) float64 {
	return l.Pay(orderCount+1) - l.Pay(orderCount)
}

// Pay applies the default tiers.
func Pay(orderCount int) float64 { return DefaultLimits().Pay(orderCount) }
