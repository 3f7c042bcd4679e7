package sparsemat

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// aggregate fills the cross-backend geometric means from the completed
// results.
func (s *Summary) aggregate() {
	var (
		putRates []float64
		getRates []float64
	)

	for i := range s.Results {
		if !s.Results[i].Completed() {
			continue
		}

		putRates = append(putRates, s.Results[i].PutsPerSec)
		getRates = append(getRates, s.Results[i].GetsPerSec)
	}

	s.PutsPerSecGeoMean = geometricMean(putRates)
	s.GetsPerSecGeoMean = geometricMean(getRates)
}

// geometricMean returns exp(mean(log(v))) over the positive values, or 0
// for an empty input. Rates spanning orders of magnitude across backends
// make the arithmetic mean meaningless; the geometric mean is the standard
// cross-benchmark combiner.
func geometricMean(values []float64) float64 {
	var (
		sum float64
		n   int
	)

	for _, v := range values {
		if v <= 0 {
			continue
		}

		sum += math.Log(v)
		n++
	}

	if n == 0 {
		return 0
	}

	return math.Exp(sum / float64(n))
}

// String renders the summary as the metrics table the CLI prints: one line
// per backend and the cross-backend geometric means at the bottom.
func (s *Summary) String() string {
	var b strings.Builder

	for i := range s.Results {
		r := &s.Results[i]

		switch {
		case r.Skipped:
			fmt.Fprintf(&b, "%-8s skipped: out of memory\n", r.Name)
		case r.Err != nil:
			fmt.Fprintf(&b, "%-8s failed: %v\n", r.Name, r.Err)
		default:
			fmt.Fprintf(&b, "%-8s %14.2f puts per sec %14.2f gets per sec  objmem %s\n",
				r.Name, r.PutsPerSec, r.GetsPerSec, humanize.IBytes(r.ObjMem))
		}
	}

	fmt.Fprintf(&b, "%-8s %14.2f puts per sec %14.2f gets per sec  (geometric mean)\n",
		"all", s.PutsPerSecGeoMean, s.GetsPerSecGeoMean)

	return b.String()
}
