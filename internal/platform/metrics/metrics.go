package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "poke_draft"

// Metrics holds the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry         *prometheus.Registry
	poolCache        *prometheus.CounterVec
	poolQueries      *prometheus.CounterVec
	resolveFetches   *prometheus.CounterVec
	providerRequests *prometheus.CounterVec
	syncItems        *prometheus.CounterVec
	syncRunning      prometheus.Gauge
	transactions     *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		poolCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pool_cache_lookups_total",
			Help:      "Hot-read cache lookups for pool queries by result.",
		}, []string{"result"}),
		poolQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pool_source_queries_total",
			Help:      "Pool source strategy attempts by source and outcome.",
		}, []string{"source", "outcome"}),
		resolveFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolve_provider_fetches_total",
			Help:      "Provider fetches issued while resolving pool metadata by outcome.",
		}, []string{"outcome"}),
		providerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_http_requests_total",
			Help:      "Outbound metadata provider requests by status class.",
		}, []string{"status"}),
		syncItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_items_total",
			Help:      "Pokemon ids processed by metadata sync runs by result.",
		}, []string{"result"}),
		syncRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sync_running",
			Help:      "1 while a metadata sync run is active.",
		}),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Roster transaction commits by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.poolCache,
		m.poolQueries,
		m.resolveFetches,
		m.providerRequests,
		m.syncItems,
		m.syncRunning,
		m.transactions,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) PoolCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.poolCache.WithLabelValues(result).Inc()
}

func (m *Metrics) PoolSourceQuery(source, outcome string) {
	if m == nil {
		return
	}
	m.poolQueries.WithLabelValues(source, outcome).Inc()
}

func (m *Metrics) ResolveFetch(outcome string) {
	if m == nil {
		return
	}
	m.resolveFetches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ProviderRequest(status string) {
	if m == nil {
		return
	}
	m.providerRequests.WithLabelValues(status).Inc()
}

func (m *Metrics) SyncItems(result string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.syncItems.WithLabelValues(result).Add(float64(n))
}

func (m *Metrics) SyncRunning(running bool) {
	if m == nil {
		return
	}
	if running {
		m.syncRunning.Set(1)
		return
	}
	m.syncRunning.Set(0)
}

func (m *Metrics) Transaction(outcome string) {
	if m == nil {
		return
	}
	m.transactions.WithLabelValues(outcome).Inc()
}
