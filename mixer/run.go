package mixer

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/carbocation/snpmix/mfsl"
	"go.uber.org/zap"
)

// ErrInsufficientPairs is returned when more mixed samples are requested than
// there are eligible pairs.
var ErrInsufficientPairs = errors.New("mixer: not enough eligible sample pairs")

// Config controls a mixing run.
type Config struct {
	// NumberOfMixed is how many mixed samples to create.
	NumberOfMixed int

	// Days is the pairing window: only samples collected less than Days
	// apart are mixed.
	Days float64

	// NumberOfRandomNs is the number of canonical bases masked at random in
	// every original sample.
	NumberOfRandomNs int

	// NumberOfPrimerGaps is the number of amplicon dropouts simulated in every
	// original sample. It requires PrimerGaps.
	NumberOfPrimerGaps int
	PrimerGaps         PrimerGaps

	Seed int64
}

// Result is the output of Run.
type Result struct {
	// Originals are the input samples after masking.
	Originals []mfsl.Sample
	Mixed     []mfsl.Sample

	EligiblePairs int
}

// All returns the originals followed by the mixes, the order in which they are
// written.
func (r *Result) All() []mfsl.Sample {
	out := make([]mfsl.Sample, 0, len(r.Originals)+len(r.Mixed))
	out = append(out, r.Originals...)
	return append(out, r.Mixed...)
}

// Run picks cfg.NumberOfMixed eligible pairs, masks every original sample and
// mixes the picked pairs from the masked originals. Given the same samples and
// Config the output is identical.
func Run(cfg Config, samples []mfsl.Sample, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if err := checkLengths(samples); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	for _, s := range samples {
		if s.ParseErr != nil {
			log.Warn("sample excluded from pairing", zap.String("header", s.Header), zap.Error(s.ParseErr))
		}
	}

	pairs := eligiblePairs(samples, cfg.Days)
	log.Info("found eligible pairs", zap.Int("samples", len(samples)), zap.Int("pairs", len(pairs)), zap.Float64("days", cfg.Days))

	if cfg.NumberOfMixed > len(pairs) {
		return nil, fmt.Errorf("%w: requested %d mixed samples, %d eligible pairs", ErrInsufficientPairs, cfg.NumberOfMixed, len(pairs))
	}

	picked := make([]pairIndex, 0, cfg.NumberOfMixed)
	for _, k := range rng.Perm(len(pairs))[:cfg.NumberOfMixed] {
		picked = append(picked, pairs[k])
	}

	originals := make([]mfsl.Sample, len(samples))
	copy(originals, samples)
	for i := range originals {
		seq, n := InsertRandomNs(rng, originals[i].Sequence, cfg.NumberOfRandomNs)
		originals[i].Sequence = seq
		originals[i].CountNsRandom = n

		seq, n, err := cfg.PrimerGaps.Mask(rng, originals[i].Sequence, cfg.NumberOfPrimerGaps)
		if err != nil {
			return nil, err
		}
		originals[i].Sequence = seq
		originals[i].CountNsPrimerDropout = n
	}

	mixed := make([]mfsl.Sample, 0, len(picked))
	for _, p := range picked {
		m, err := Mix(Pair{Sam1: originals[p.i], Sam2: originals[p.j]})
		if err != nil {
			return nil, err
		}
		mixed = append(mixed, m)
	}

	return &Result{
		Originals:     originals,
		Mixed:         mixed,
		EligiblePairs: len(pairs),
	}, nil
}

func checkLengths(samples []mfsl.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	want := len(samples[0].Sequence)
	for _, s := range samples[1:] {
		if len(s.Sequence) != want {
			return fmt.Errorf("%w: %q has %d bases, expected %d", ErrLengthMismatch, s.Header, len(s.Sequence), want)
		}
	}

	return nil
}
