package laio

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAggregatorExactlyOneFinisher(t *testing.T) {
	const segments = 64
	for round := 0; round < 50; round++ {
		cb := &IOCB{Data: round, Op: OpWritev}
		agg := newAggregator(cb, segments)

		var wantBytes int64
		sizes := make([]int, segments)
		failures := map[int]int32{}
		for i := range sizes {
			sizes[i] = rand.Intn(4096)
			if rand.Intn(8) == 0 {
				failures[i] = int32(5 + rand.Intn(20))
			} else {
				wantBytes += int64(sizes[i])
			}
		}

		var finishers int64
		var wg sync.WaitGroup
		wg.Add(segments)
		for i := 0; i < segments; i++ {
			go func(i int) {
				defer wg.Done()
				if errno, ok := failures[i]; ok {
					if agg.complete(0, errno) {
						atomic.AddInt64(&finishers, 1)
					}
					return
				}
				if agg.complete(sizes[i], 0) {
					atomic.AddInt64(&finishers, 1)
				}
			}(i)
		}
		wg.Wait()

		require.EqualValues(t, 1, finishers, "exactly one segment closes the aggregator")
		res, res2 := agg.result()
		require.Equal(t, wantBytes, res, "byte total is the sum of successful segments")
		if len(failures) == 0 {
			require.Zero(t, res2)
		} else {
			found := false
			for _, errno := range failures {
				if res2 == int64(errno) {
					found = true
					break
				}
			}
			require.True(t, found, "captured error %d must come from a failing segment", res2)
		}
	}
}

func TestAggregatorFirstArrivalWinsError(t *testing.T) {
	agg := newAggregator(&IOCB{}, 3)

	require.False(t, agg.complete(128, 0))
	require.False(t, agg.complete(0, 5))
	require.True(t, agg.complete(0, 13))

	res, res2 := agg.result()
	require.EqualValues(t, 128, res)
	require.EqualValues(t, 5, res2, "the first failing arrival keeps the error slot")
}

func TestRequestVariants(t *testing.T) {
	cb := &IOCB{Op: OpRead}
	s := singleRequest(cb)
	require.Equal(t, reqSingle, s.kind)
	require.Same(t, cb, s.iocb)
	require.Nil(t, s.agg)

	agg := newAggregator(cb, 2)
	g := segmentRequest(agg)
	require.Equal(t, reqSegment, g.kind)
	require.Same(t, agg, g.agg)
	require.Nil(t, g.iocb)
}
