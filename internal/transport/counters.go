package transport

// Counters accumulate packet-fate and event statistics per worker and are
// summed at run completion.
type Counters struct {
	Emitted int64

	Scatters      int64
	RamanScatters int64

	Escaped         int64
	EscapedRaman    int64
	CCDArrivals     int64
	CCDRaman        int64
	CCDNonRaman     int64
	SpectrometerHit int64

	Rouletted  int64
	ZeroWeight int64
	LoopLimit  int64
	BadStart   int64
}

// add folds o into c.
func (c *Counters) add(o Counters) {
	c.Emitted += o.Emitted
	c.Scatters += o.Scatters
	c.RamanScatters += o.RamanScatters
	c.Escaped += o.Escaped
	c.EscapedRaman += o.EscapedRaman
	c.CCDArrivals += o.CCDArrivals
	c.CCDRaman += o.CCDRaman
	c.CCDNonRaman += o.CCDNonRaman
	c.SpectrometerHit += o.SpectrometerHit
	c.Rouletted += o.Rouletted
	c.ZeroWeight += o.ZeroWeight
	c.LoopLimit += o.LoopLimit
	c.BadStart += o.BadStart
}
