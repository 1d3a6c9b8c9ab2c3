package bench

import "go.uber.org/zap"

// Runner runs a single benchmark case.
type Runner interface {
	Run(p Params) (Result, error)
}

// Progress is called after every attempted run of a sweep.
type Progress func(p Params, res Result, err error)

// Sweep runs every case on r in order. Failed cases are logged and skipped;
// the results of successful cases are returned in case order.
func Sweep(r Runner, cases []Params, log *zap.Logger, progress Progress) []Result {
	if log == nil {
		log = zap.NewNop()
	}
	results := make([]Result, 0, len(cases))
	for _, p := range cases {
		res, err := r.Run(p)
		if progress != nil {
			progress(p, res, err)
		}
		if err != nil {
			log.Warn("benchmark case failed, skipping",
				zap.Int("batch", p.Batch),
				zap.Int("length", p.Length),
				zap.Error(err))
			continue
		}
		results = append(results, res)
	}
	return results
}

// SweepCPU runs every case once per thread count and keeps the fastest
// result for each case.
func SweepCPU(cases []Params, threads []int, log *zap.Logger, progress Progress) []Result {
	if log == nil {
		log = zap.NewNop()
	}
	results := make([]Result, 0, len(cases))
	for _, p := range cases {
		var (
			best  Result
			found bool
		)
		for _, n := range threads {
			res, err := NewCPUDriver(n, log).Run(p)
			if progress != nil {
				progress(p, res, err)
			}
			if err != nil {
				log.Warn("benchmark case failed, skipping",
					zap.Int("batch", p.Batch),
					zap.Int("length", p.Length),
					zap.Int("threads", n),
					zap.Error(err))
				continue
			}
			if !found || res.GFLOPS > best.GFLOPS {
				best, found = res, true
			}
		}
		if found {
			results = append(results, best)
		}
	}
	return results
}

// DefaultCases are the transform shapes swept when no configuration is given.
func DefaultCases() []Params {
	return []Params{
		{Batch: 1000, Length: 1024},
		{Batch: 10000, Length: 1024},
		{Batch: 1000, Length: 2048},
		{Batch: 1000, Length: 4096},
		{Batch: 500, Length: 8192},
		{Batch: 500, Length: 16384},
		{Batch: 250, Length: 32768},
		{Batch: 250, Length: 65536},
		{Batch: 250, Length: 131072},
		{Batch: 250, Length: 262144},
		{Batch: 250, Length: 524288},
	}
}

// DefaultThreads are the CPU worker counts tried per case.
func DefaultThreads() []int {
	return []int{1, 2, 4, 8}
}
