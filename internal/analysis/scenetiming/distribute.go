package scenetiming

import (
	"fmt"
	"math"

	"github.com/erniesg/aidobe-sub002/internal/model/timeline"
)

// DistributeEven splits total across count slots. The walk tracks the ideal
// cumulative time at each slot so rounding drift never accumulates, and any
// residual float error lands on the last slot.
func DistributeEven(total float64, count int) ([]float64, error) {
	if total <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidTarget, total)
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, count)
	}
	return evenSlots(total, count), nil
}

func evenSlots(total float64, count int) []float64 {
	base := total / float64(count)
	durations := make([]float64, 0, count)
	running := 0.0
	for i := 0; i < count; i++ {
		ideal := float64(i+1) * base
		d := ideal - running
		durations = append(durations, d)
		running += d
	}
	if math.Abs(running-total) > ContinuityTolerance {
		durations[len(durations)-1] += total - running
	}
	return durations
}

// DistributeWeighted splits total proportionally to the given weights, with
// the residual float error absorbed by the last slot.
func DistributeWeighted(total float64, weights []float64) ([]float64, error) {
	if total <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidTarget, total)
	}
	if len(weights) == 0 {
		return nil, ErrBadWeights
	}
	totalWeight := 0.0
	for i, w := range weights {
		if w <= 0 {
			return nil, fmt.Errorf("%w: weight %d is %v", ErrBadWeights, i, w)
		}
		totalWeight += w
	}

	durations := make([]float64, len(weights))
	sum := 0.0
	for i, w := range weights {
		durations[i] = w / totalWeight * total
		sum += durations[i]
	}
	if math.Abs(sum-total) > ContinuityTolerance {
		durations[len(durations)-1] += total - sum
	}
	return durations, nil
}

// DistributeBounded splits total across count slots while honoring optional
// per-slot duration bounds; a bound of zero or less is ignored. When the
// even share would violate a bound the slot count is recomputed to the
// nearest count that satisfies it, so the result may hold more slots than
// requested. If even the minimum durations cannot fit inside total, the
// minimums are returned as-is and the caller gets a longer timeline.
func DistributeBounded(total float64, count int, minDur, maxDur float64) ([]float64, error) {
	if total <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidTarget, total)
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, count)
	}

	base := total / float64(count)

	if minDur > 0 && base < minDur {
		// Fewer, minimum-length slots. The ceil means their sum meets or
		// exceeds total, so the plan may run longer than the audio.
		adjusted := int(math.Ceil(total / minDur))
		durations := make([]float64, adjusted)
		for i := range durations {
			durations[i] = minDur
		}
		return durations, nil
	}

	if maxDur > 0 && base > maxDur {
		adjusted := int(math.Ceil(total / maxDur))
		return evenSlots(total, adjusted), nil
	}

	return evenSlots(total, count), nil
}

// SlotImbalance is one slot's drift from the even share.
type SlotImbalance struct {
	Scene  int     `json:"scene"`
	Amount float64 `json:"amount"`
}

// ImbalanceSummary reports how far a distribution drifted from an even
// split of the same total.
type ImbalanceSummary struct {
	Deficits     []SlotImbalance `json:"deficits"`
	Surpluses    []SlotImbalance `json:"surpluses"`
	TotalDeficit float64         `json:"totalDeficit"`
	TotalSurplus float64         `json:"totalSurplus"`
}

// SummarizeImbalance compares each slot against the even share of total
// and collects the slots that run short or long.
func SummarizeImbalance(durations []float64, total float64) ImbalanceSummary {
	summary := ImbalanceSummary{Deficits: []SlotImbalance{}, Surpluses: []SlotImbalance{}}
	if len(durations) == 0 {
		return summary
	}
	base := total / float64(len(durations))
	for i, d := range durations {
		switch {
		case d < base-ContinuityTolerance:
			summary.Deficits = append(summary.Deficits, SlotImbalance{Scene: i, Amount: base - d})
			summary.TotalDeficit += base - d
		case d > base+ContinuityTolerance:
			summary.Surpluses = append(summary.Surpluses, SlotImbalance{Scene: i, Amount: d - base})
			summary.TotalSurplus += d - base
		}
	}
	return summary
}

// PlanFromDurations chains raw durations into a contiguous scene plan with
// the standard edge fades.
func PlanFromDurations(durations []float64) []timeline.SceneTiming {
	scenes := make([]timeline.SceneTiming, len(durations))
	cursor := 0.0
	for i, d := range durations {
		fadeIn, fadeOut := 0.0, 0.0
		if i == 0 {
			fadeIn = EdgeFadeSeconds
		}
		if i == len(durations)-1 {
			fadeOut = EdgeFadeSeconds
		}
		scenes[i] = timeline.NewSceneTiming(cursor, d, fadeIn, fadeOut)
		cursor = scenes[i].EndTime
	}
	return scenes
}
