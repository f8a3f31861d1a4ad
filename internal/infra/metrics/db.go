package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(dbQueryErrorsTotal)
}

var dbQueryErrorsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "db_query_errors_total",
		Help: "Database errors by repository.",
	},
	[]string{"repo"},
)

func IncDBQueryError(repo string) {
	dbQueryErrorsTotal.WithLabelValues(norm(repo)).Inc()
}
