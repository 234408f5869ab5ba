package monitoring

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	checkoutOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_outcomes_total",
			Help: "Terminal checkout outcomes by state",
		},
		[]string{"state"},
	)

	pricingReasons = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_reasons_total",
			Help: "Quoted cart lines by dynamic pricing reason",
		},
		[]string{"reason"},
	)

	lockContention = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cart_lock_contention_total",
			Help: "Checkout attempts rejected because the cart was locked",
		},
	)

	activeCartLocks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cart_locks_active_total",
			Help: "Current number of active cart locks",
		},
	)

	pollDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "checkout_poll_duration_seconds",
			Help:    "Time from gateway submission to terminal status",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
)

type Monitor struct {
	redis *redis.Client
}

func NewMonitor(redisClient *redis.Client) *Monitor {
	monitor := &Monitor{redis: redisClient}

	// Start metrics collection
	go monitor.collectMetrics()

	return monitor
}

func (m *Monitor) collectMetrics() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		ctx := context.Background()
		m.collectLockMetrics(ctx)
	}
}

func (m *Monitor) collectLockMetrics(ctx context.Context) {
	keys, err := m.redis.Keys(ctx, "cartlock:*").Result()
	if err != nil {
		return
	}
	activeCartLocks.Set(float64(len(keys)))
}

// TrackCheckoutOutcome counts one terminal checkout state.
func TrackCheckoutOutcome(state string) {
	checkoutOutcomes.WithLabelValues(state).Inc()
}

// TrackPricingReason counts one quoted line by its pricing reason.
func TrackPricingReason(reason string) {
	pricingReasons.WithLabelValues(reason).Inc()
}

// TrackLockContention counts a checkout rejected on a held lock.
func TrackLockContention() {
	lockContention.Inc()
}

// TrackPollDuration records the gateway resolution latency.
func TrackPollDuration(d time.Duration) {
	pollDuration.Observe(d.Seconds())
}
