package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics records counters for the cart and the push channel.
type Metrics struct {
	cartMutations *prometheus.CounterVec
	broadcasts    prometheus.Counter
	viewers       prometheus.Gauge
}

// New registers the service metrics on the provided registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations by operation and outcome.",
	}, []string{"op", "outcome"})
	broadcasts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_broadcasts_total",
		Help: "Cart snapshots fanned out to viewers.",
	})
	viewers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "connected_viewers",
		Help: "Currently connected push channel viewers.",
	})
	reg.MustRegister(cartMutations, broadcasts, viewers)
	return &Metrics{
		cartMutations: cartMutations,
		broadcasts:    broadcasts,
		viewers:       viewers,
	}
}

// ObserveCartMutation counts one cart mutation attempt.
func (m *Metrics) ObserveCartMutation(op string, err error) {
	if m == nil || m.cartMutations == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.cartMutations.WithLabelValues(op, outcome).Inc()
}

// IncBroadcast counts one fan-out of the cart snapshot.
func (m *Metrics) IncBroadcast() {
	if m == nil || m.broadcasts == nil {
		return
	}
	m.broadcasts.Inc()
}

// SetViewers records the current viewer count.
func (m *Metrics) SetViewers(n int) {
	if m == nil || m.viewers == nil {
		return
	}
	m.viewers.Set(float64(n))
}
