package market

// Key identifies one detector
type Key struct {
	Symbol    string
	Timeframe string
}

// Registry owns one Detector per symbol and timeframe. It is not safe for concurrent use.
type Registry struct {
	cfg       DetectorConfig
	opts      []Option
	detectors map[Key]*Detector
}

// NewRegistry creates an empty registry whose detectors share cfg and opts
func NewRegistry(cfg DetectorConfig, opts ...Option) *Registry {
	return &Registry{cfg: cfg, opts: opts, detectors: make(map[Key]*Detector)}
}

// Get returns the detector for symbol/timeframe, creating it on first use
func (r *Registry) Get(symbol, timeframe string) *Detector {
	k := Key{Symbol: symbol, Timeframe: timeframe}
	d, ok := r.detectors[k]
	if !ok {
		d = NewDetector(r.cfg, r.opts...)
		r.detectors[k] = d
	}
	return d
}

// Remove drops a detector and its history
func (r *Registry) Remove(symbol, timeframe string) {
	delete(r.detectors, Key{Symbol: symbol, Timeframe: timeframe})
}

// Len returns the number of tracked detectors
func (r *Registry) Len() int {
	return len(r.detectors)
}
