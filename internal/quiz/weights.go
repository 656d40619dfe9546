package quiz

type loPool struct {
	ID       string
	Weight   int
	PoolSize int
}

// allocateByWeights splits desiredTotal question slots across learning
// objectives in proportion to their syllabus weights, capped at each
// objective's pool size. Slots lost to flooring or thin pools are handed
// round-robin to objectives with room left.
func allocateByWeights(los []loPool, desiredTotal int) map[string]int {
	out := make(map[string]int, len(los))
	if len(los) == 0 || desiredTotal <= 0 {
		return out
	}

	totalWeight := 0
	for _, lo := range los {
		totalWeight += lo.Weight
	}
	if totalWeight == 0 {
		totalWeight = 1
	}

	counts := make([]int, len(los))
	allocated := 0
	for i, lo := range los {
		target := lo.Weight * desiredTotal / totalWeight
		if target > lo.PoolSize {
			target = lo.PoolSize
		}
		counts[i] = target
		allocated += target
	}

	deficit := desiredTotal - allocated
	for deficit > 0 {
		progressed := false
		for i, lo := range los {
			if deficit == 0 {
				break
			}
			if counts[i] < lo.PoolSize {
				counts[i]++
				deficit--
				progressed = true
			}
		}
		if !progressed {
			break // every pool exhausted
		}
	}

	for i, lo := range los {
		out[lo.ID] = counts[i]
	}
	return out
}
