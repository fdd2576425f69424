package bench

import (
	"math/rand"
	"testing"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/stretchr/testify/require"
)

// TestSketch_CrossCheckAgainstHdrHistogram feeds the same latency samples to
// our sketch and to an independent reference histogram (HdrHistogram, a
// widely used, separately-implemented quantile estimator) and checks that
// they agree within the sketch's documented two-sided relative-error bound
// plus one percentage point of slack for the reference histogram's own
// precision and its different rank convention.
// This plays the role validator.hpp plays in the original implementation,
// but as a test oracle rather than a runtime dependency.
func TestSketch_CrossCheckAgainstHdrHistogram(t *testing.T) {
	const alphaPrime = 2 * Alpha / (1 + Alpha*Alpha)

	ref := hdrhistogram.New(1, 10_000_000, 3)
	s := NewSketch(1)

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 50_000; i++ {
		lat := int64(r.ExpFloat64()*1000) + 1
		require.NoError(t, ref.RecordValue(lat))
		s.Add(0, 1, uint64(lat))
	}

	for _, pct := range []float64{50, 90, 99, 99.9} {
		want := ref.ValueAtQuantile(pct)
		got := s.Quantile(0, pct/100)
		if want == 0 {
			continue
		}
		diff := float64(got) - float64(want)
		if diff < 0 {
			diff = -diff
		}
		require.LessOrEqualf(t, diff/float64(want), alphaPrime+0.01, "pct=%v want=%d got=%d", pct, want, got)
	}
}
