package bench

import (
	"fmt"

	"github.com/fxnlabs/fftbench/internal/signal"
)

// VerifyCosinePeaks checks the transform of signal.BatchCosine. Slot s holds
// a cosine at frequency s+1, whose spectrum has equal peaks at s+1 and
// length-(s+1); only the lower half of the spectrum is searched. Slots whose
// frequency reaches length/2 alias and are skipped.
func VerifyCosinePeaks(output []complex64, p Params) error {
	if len(output) != p.Batch*p.Length {
		return fmt.Errorf("%w: have %d samples, want %d", ErrVerification, len(output), p.Batch*p.Length)
	}
	half := p.Length / 2
	for s := 0; s < p.Batch; s++ {
		freq := s + 1
		if freq >= half {
			break
		}
		slot := signal.Slot(output, p.Length, s)
		if got := signal.PeakBin(slot[:half+1]); got != freq {
			return fmt.Errorf("%w: slot %d peaks at bin %d, want %d", ErrVerification, s, got, freq)
		}
	}
	return nil
}
