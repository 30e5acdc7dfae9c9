package core

import "sync"

const AVG_COUNT uint8 = 30

// Metrics tracks conversion counts and a rolling average of the last
// AVG_COUNT conversion times. Safe for concurrent use by batch workers.
type Metrics struct {
	mu sync.Mutex

	avgCounter uint8
	samples    uint8
	msTimes    [AVG_COUNT]float64
	msAvg      float64

	conversions int64
	failures    int64
	primitives  int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

// Record registers one finished conversion. elapsed is in seconds.
func (m *Metrics) Record(elapsed float64, primitiveCount int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ms := elapsed * 1000.0
	m.msTimes[m.avgCounter] = ms
	m.avgCounter++
	m.avgCounter %= AVG_COUNT
	if m.samples < AVG_COUNT {
		m.samples++
	}

	sum := 0.0
	for i := uint8(0); i < m.samples; i++ {
		sum += m.msTimes[i]
	}
	m.msAvg = sum / float64(m.samples)

	m.conversions++
	if err != nil {
		m.failures++
		return
	}
	m.primitives += int64(primitiveCount)
}

// Snapshot returns conversions, failures, emitted primitives and the
// rolling average time in milliseconds.
func (m *Metrics) Snapshot() (conversions, failures, primitives int64, avgMS float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conversions, m.failures, m.primitives, m.msAvg
}
