package simulation

import (
	"bufio"
	"fmt"
	"io"
)

// WriteReport writes one line per result and the best hit rate at the end.
//
//	 98.765% - set assoc 4
//	Best hit rate: 98.765%
//
// Results without a hit rate are shown as n/a.
func WriteReport(w io.Writer, s Summary) error {
	bw := bufio.NewWriter(w)

	for _, r := range s.Results {
		if r.HasHitRate {
			fmt.Fprintf(bw, " %.3f%% - %s\n", r.HitRate, r.Label)
		} else {
			fmt.Fprintf(bw, " n/a - %s\n", r.Label)
		}
	}

	if best, ok := s.Best(); ok {
		fmt.Fprintf(bw, "Best hit rate: %.3f%%\n", best)
	} else {
		fmt.Fprintln(bw, "Best hit rate: n/a")
	}

	return bw.Flush()
}
