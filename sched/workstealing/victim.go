package workstealing

import "math/rand/v2"

// backoffCap bounds the parking delay (in backoff "steps", doubled each
// round: 1, 2, 4, ..., capped) a carrier applies after a full rescan of
// every other carrier's deques comes up empty, per spec.md §4.3.
const backoffCap = 64

// victimOrder returns a random permutation of every carrier index other
// than self, the order a carrier attempts steals against on an empty
// local deque.
func victimOrder(self, carriers int) []int {
	order := make([]int, 0, carriers-1)
	for i := 0; i < carriers; i++ {
		if i != self {
			order = append(order, i)
		}
	}
	rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	return order
}

// backoff tracks the exponential parking delay applied between full
// rescans. Reset on any successful steal or local work.
type backoff struct {
	steps int
}

// next returns the number of steps to park for, advancing the sequence
// 1, 2, 4, ... up to backoffCap.
func (b *backoff) next() int {
	if b.steps == 0 {
		b.steps = 1
	} else if b.steps < backoffCap {
		b.steps *= 2
	}
	return b.steps
}

func (b *backoff) reset() { b.steps = 0 }
