package observe

// Averager accumulates per-step observables into running means, windowed
// per block and over the whole run.
type Averager struct {
	blockSum   [6]float64
	blockCount int
	runSum     [6]float64
	runCount   int
}

func NewAverager() *Averager { return &Averager{} }

func (a *Averager) Add(s Set) {
	v := s.Values()
	for k := range v {
		a.blockSum[k] += v[k]
		a.runSum[k] += v[k]
	}
	a.blockCount++
	a.runCount++
}

// EndBlock returns the means of the current block and resets the block
// window. Run accumulation is unaffected.
func (a *Averager) EndBlock() Set {
	var mean [6]float64
	if a.blockCount > 0 {
		for k := range mean {
			mean[k] = a.blockSum[k] / float64(a.blockCount)
		}
	}
	a.blockSum = [6]float64{}
	a.blockCount = 0
	return fromValues(mean)
}

// RunMeans returns the means over every step observed so far.
func (a *Averager) RunMeans() Set {
	var mean [6]float64
	if a.runCount > 0 {
		for k := range mean {
			mean[k] = a.runSum[k] / float64(a.runCount)
		}
	}
	return fromValues(mean)
}

func (a *Averager) Steps() int { return a.runCount }

func (a *Averager) Reset() {
	*a = Averager{}
}

// Recorder keeps the full per-step time series, for storage and plots.
type Recorder struct {
	Times []float64
	Sets  []Set
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) OnStep(t float64, s Set) {
	r.Times = append(r.Times, t)
	r.Sets = append(r.Sets, s)
}

func (r *Recorder) OnBlock(block int, mean Set) {}
