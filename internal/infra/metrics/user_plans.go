package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		userPlansTotal,
		userPlansExpiredTotal,
	)
}

var (
	userPlansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_plans_total",
			Help: "Entitlement transitions by resulting status.",
		},
		[]string{"status"},
	)

	userPlansExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "user_plans_expired_total",
			Help: "Entitlements moved to expired by the sweep.",
		},
	)
)

func IncUserPlan(status string) {
	userPlansTotal.WithLabelValues(norm(status)).Inc()
}

func AddUserPlansExpired(n int) {
	if n > 0 {
		userPlansExpiredTotal.Add(float64(n))
	}
}
