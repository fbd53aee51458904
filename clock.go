package subduction

// AffineClock smooths the host <-> media time mapping media = rate*host +
// offset, for A/V sync. Used when a media source's own clock (decoded
// frame timestamps) needs to be reconciled with the compositor's host
// time.
type AffineClock struct {
	rate        float64
	offset      float64
	rateAlpha   float64
	offsetAlpha float64
	initialized bool
	lastHost    uint64
	lastMedia   float64
}

// NewAffineClock creates a clock with the given initial rate and EMA
// smoothing factors for rate and offset.
func NewAffineClock(initialRate, rateAlpha, offsetAlpha float64) *AffineClock {
	return &AffineClock{
		rate:        initialRate,
		rateAlpha:   rateAlpha,
		offsetAlpha: offsetAlpha,
	}
}

// MediaTimeAt predicts the media time at the given host tick. Returns
// (0, false) before the first Update.
func (c *AffineClock) MediaTimeAt(hostTicks uint64) (float64, bool) {
	if !c.initialized {
		return 0, false
	}
	return c.rate*float64(hostTicks) + c.offset, true
}

// Update folds an observed (host, media) pair into the clock's smoothed
// mapping. The first call sets the offset exactly so the mapping passes
// through the given point; subsequent calls compute an observed rate from
// the delta since the previous observation and blend it into Rate via EMA,
// then blend the resulting prediction error into Offset via EMA.
func (c *AffineClock) Update(hostTicks uint64, mediaTime float64) {
	if !c.initialized {
		c.offset = mediaTime - c.rate*float64(hostTicks)
		c.initialized = true
		c.lastHost = hostTicks
		c.lastMedia = mediaTime
		return
	}

	if hostTicks > c.lastHost {
		deltaHost := float64(hostTicks - c.lastHost)
		deltaMedia := mediaTime - c.lastMedia
		observedRate := deltaMedia / deltaHost
		c.rate = c.rateAlpha*observedRate + (1-c.rateAlpha)*c.rate
	}

	predicted := c.rate*float64(hostTicks) + c.offset
	errOffset := mediaTime - predicted
	c.offset += c.offsetAlpha * errOffset

	c.lastHost = hostTicks
	c.lastMedia = mediaTime
}

// Reset returns the clock to its uninitialized state.
func (c *AffineClock) Reset() {
	c.initialized = false
	c.lastHost = 0
	c.lastMedia = 0
}
