// Package fleet plans channel batches and launches worker container
// groups.
package fleet

import (
	"fmt"
	"math"
	"math/rand"

	"ytfleet/internal/catalog"
)

// Batch is one partition of the channel catalog, bound to a worker group
// name and a region. It exists only for the duration of one orchestration
// run.
type Batch struct {
	Name       string
	Region     string
	ChannelIDs []string
}

// PlanBatches partitions channels into near-equal batches: sizes across
// one run differ by at most 1. The channel order is shuffled with the
// caller's random source so load and risk spread across batches instead
// of following catalog order. Regions are assigned round-robin.
func PlanBatches(channels []catalog.Channel, channelsPerBatch int, namePrefix string, regions []string, rnd *rand.Rand) []Batch {
	if len(channels) == 0 || channelsPerBatch <= 0 || len(regions) == 0 {
		return nil
	}

	shuffled := make([]catalog.Channel, len(channels))
	copy(shuffled, channels)
	rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	n := len(shuffled)
	batchCount := int(math.Ceil(float64(n) / float64(channelsPerBatch)))
	base := n / batchCount
	remainder := n % batchCount

	batches := make([]Batch, 0, batchCount)
	lo := 0
	for i := 0; i < batchCount; i++ {
		size := base
		if i < remainder {
			size++
		}
		hi := lo + size
		ids := make([]string, 0, size)
		for _, ch := range shuffled[lo:hi] {
			ids = append(ids, ch.ID)
		}
		batches = append(batches, Batch{
			Name:       fmt.Sprintf("%s-fleet-%d", namePrefix, i),
			Region:     regions[i%len(regions)],
			ChannelIDs: ids,
		})
		lo = hi
	}
	return batches
}
