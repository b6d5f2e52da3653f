package api

import (
	"io"
	"sort"
	"strconv"
	"sync"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// metrics counts requests, served tables and data reloads and renders
// them in the Prometheus text exposition format.
type metrics struct {
	mu       sync.Mutex
	requests map[requestKey]uint64
	tables   map[string]uint64
	reloads  uint64
}

type requestKey struct {
	route string
	code  int
}

func newMetrics() *metrics {
	return &metrics{
		requests: make(map[requestKey]uint64),
		tables:   make(map[string]uint64),
	}
}

func (m *metrics) observeRequest(route string, code int) {
	m.mu.Lock()
	m.requests[requestKey{route: route, code: code}]++
	m.mu.Unlock()
}

func (m *metrics) observeTable(source string) {
	m.mu.Lock()
	m.tables[source]++
	m.mu.Unlock()
}

func (m *metrics) observeReload() {
	m.mu.Lock()
	m.reloads++
	m.mu.Unlock()
}

// families snapshots the counters in a stable order
func (m *metrics) families(fingerprint string, baseYear int) []*dto.MetricFamily {
	m.mu.Lock()
	defer m.mu.Unlock()

	requests := &dto.MetricFamily{
		Name: ptr("irs_mortality_http_requests_total"),
		Help: ptr("HTTP requests by route and status code."),
		Type: dto.MetricType_COUNTER.Enum(),
	}
	keys := make([]requestKey, 0, len(m.requests))
	for k := range m.requests {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].route != keys[j].route {
			return keys[i].route < keys[j].route
		}
		return keys[i].code < keys[j].code
	})
	for _, k := range keys {
		requests.Metric = append(requests.Metric, counter(float64(m.requests[k]),
			label("code", strconv.Itoa(k.code)), label("route", k.route)))
	}

	tables := &dto.MetricFamily{
		Name: ptr("irs_mortality_tables_served_total"),
		Help: ptr("Mortality tables served by source (published or derived)."),
		Type: dto.MetricType_COUNTER.Enum(),
	}
	sources := make([]string, 0, len(m.tables))
	for s := range m.tables {
		sources = append(sources, s)
	}
	sort.Strings(sources)
	for _, s := range sources {
		tables.Metric = append(tables.Metric, counter(float64(m.tables[s]), label("source", s)))
	}

	reloads := &dto.MetricFamily{
		Name:   ptr("irs_mortality_data_reloads_total"),
		Help:   ptr("Successful data set reloads."),
		Type:   dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{counter(float64(m.reloads))},
	}

	families := []*dto.MetricFamily{requests, tables, reloads}
	if fingerprint != "" {
		families = append(families, &dto.MetricFamily{
			Name: ptr("irs_mortality_data_info"),
			Help: ptr("The loaded data set."),
			Type: dto.MetricType_GAUGE.Enum(),
			Metric: []*dto.Metric{{
				Label: []*dto.LabelPair{
					label("base_year", strconv.Itoa(baseYear)),
					label("fingerprint", fingerprint),
				},
				Gauge: &dto.Gauge{Value: ptr(1.0)},
			}},
		})
	}
	return families
}

// writeMetrics encodes families in the text exposition format
func writeMetrics(w io.Writer, families []*dto.MetricFamily) error {
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if len(mf.Metric) == 0 {
			continue
		}
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}

func counter(v float64, labels ...*dto.LabelPair) *dto.Metric {
	return &dto.Metric{Label: labels, Counter: &dto.Counter{Value: ptr(v)}}
}

func label(name, value string) *dto.LabelPair {
	return &dto.LabelPair{Name: ptr(name), Value: ptr(value)}
}

func ptr[T any](v T) *T {
	return &v
}
