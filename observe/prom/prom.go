// Package prom exposes luasync executor statistics as Prometheus metrics.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/negrel/luasync"
)

// A Collector implements [prometheus.Collector] over one [luasync.Executor].
// Metrics are labeled with the executor's identity string.
type Collector struct {
	e *luasync.Executor

	spawned *prometheus.Desc
	runs    *prometheus.Desc
	panics  *prometheus.Desc
	queue   *prometheus.Desc
}

// NewExecutorCollector creates a Collector over e. Register it on any
// [prometheus.Registerer]; gathering is safe while the executor runs.
func NewExecutorCollector(e *luasync.Executor) *Collector {
	labels := prometheus.Labels{"executor": e.ID()}
	return &Collector{
		e: e,
		spawned: prometheus.NewDesc(
			"luasync_executor_tasks_spawned_total",
			"Total number of tasks spawned on the executor.",
			nil, labels,
		),
		runs: prometheus.NewDesc(
			"luasync_executor_task_runs_total",
			"Total number of task polls performed by the executor.",
			nil, labels,
		),
		panics: prometheus.NewDesc(
			"luasync_executor_task_panics_total",
			"Total number of tasks terminated by a recovered panic.",
			nil, labels,
		),
		queue: prometheus.NewDesc(
			"luasync_executor_queue_length",
			"Number of tasks currently queued for running.",
			nil, labels,
		),
	}
}

// Describe implements [prometheus.Collector].
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.spawned
	ch <- c.runs
	ch <- c.panics
	ch <- c.queue
}

// Collect implements [prometheus.Collector].
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.e.Stats()
	ch <- prometheus.MustNewConstMetric(c.spawned, prometheus.CounterValue, float64(stats.TasksSpawned))
	ch <- prometheus.MustNewConstMetric(c.runs, prometheus.CounterValue, float64(stats.TaskRuns))
	ch <- prometheus.MustNewConstMetric(c.panics, prometheus.CounterValue, float64(stats.TaskPanics))
	ch <- prometheus.MustNewConstMetric(c.queue, prometheus.GaugeValue, float64(stats.QueueLength))
}
