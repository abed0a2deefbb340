package services

import (
	"delivery-allocation-service/internal/domain"
	"math"
)

// agentSlot pairs an agent's fixed base location with its running allocation.
type agentSlot struct {
	agent      domain.Agent
	allocation domain.AgentAllocation
}

// projection is the state an agent would reach by accepting an order.
type projection struct {
	distanceKm      float64
	totalTimeMin    float64
	totalDistanceKm float64
}

// project computes the totals after adding order to slot. Every leg is measured
// from the agent's base location; consecutive deliveries are not chained.
func project(limits domain.Limits, slot *agentSlot, order domain.Order) projection {
	dist := domain.Haversine(slot.agent.Location, order.Location)
	travel := limits.TravelMinutes(dist)

	return projection{
		distanceKm:      dist,
		totalTimeMin:    slot.allocation.TotalTimeMin + travel + order.EstimatedTimeMinutes,
		totalDistanceKm: slot.allocation.TotalDistanceKm + dist,
	}
}

// findBestAgent returns the index of the feasible slot with the smallest
// marginal pay increase for order, or -1 when every slot would breach a cap.
//
// Selection is by marginal pay, not by distance: a closer agent loses to one
// whose next order costs less. Ties keep the first slot found.
func findBestAgent(limits domain.Limits, slots []agentSlot, order domain.Order) int {
	best := -1
	minIncrease := math.Inf(1)

	for i := range slots {
		p := project(limits, &slots[i], order)
		if !limits.Within(p.totalTimeMin, p.totalDistanceKm) {
			continue
		}

		increase := limits.MarginalPay(len(slots[i].allocation.OrderIDs))
		if increase < minIncrease {
			minIncrease = increase
			best = i
		}
	}

	return best
}
