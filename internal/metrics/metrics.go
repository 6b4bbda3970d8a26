// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package metrics exports decoder counters in Prometheus format.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Thermoquad/sextant/pkg/nmea"
)

const namespace = "sextant"

// Collector holds the decoder counters. It is safe for concurrent use.
type Collector struct {
	registry *prometheus.Registry

	sentences  *prometheus.CounterVec
	errors     *prometheus.CounterVec
	anomalies  *prometheus.CounterVec
	noise      prometheus.Counter
	tooLong    prometheus.Counter
	satellites prometheus.Gauge
	fixQuality prometheus.Gauge
}

// New creates a collector registered on its own registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		sentences: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sentences_total",
			Help:      "Decoded sentences by kind and talker.",
		}, []string{"kind", "talker"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sentence_errors_total",
			Help:      "Rejected sentences by reason.",
		}, []string{"reason"}),
		anomalies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "anomalies_total",
			Help:      "Decoded sentences with out of range values, by anomaly.",
		}, []string{"anomaly"}),
		noise: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "noise_bytes_total",
			Help:      "Bytes discarded outside any sentence.",
		}),
		tooLong: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "too_long_total",
			Help:      "Sentences discarded for exceeding 82 bytes.",
		}),
		satellites: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "satellites_used",
			Help:      "Satellites used in the last GGA fix.",
		}),
		fixQuality: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fix_quality",
			Help:      "Fix quality indicator of the last GGA sentence.",
		}),
	}

	c.registry.MustRegister(c.sentences, c.errors, c.anomalies, c.noise, c.tooLong, c.satellites, c.fixQuality)
	return c
}

// Registry returns the registry the collector's metrics live on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry over HTTP.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveScan records framing outcomes that never reach the decoder.
func (c *Collector) ObserveScan(res nmea.ScanResult) {
	switch res.Status {
	case nmea.ScanNoise, nmea.ScanIncomplete:
		c.noise.Add(float64(res.Consumed))
	case nmea.ScanComplete:
		c.noise.Add(float64(res.Start))
	case nmea.ScanTooLong:
		c.noise.Add(float64(res.Start))
		c.tooLong.Inc()
	}
}

// Observe records one decode outcome and its validation results.
func (c *Collector) Observe(msg nmea.Message, err error, verrs []nmea.ValidationError) {
	if err != nil {
		c.errors.WithLabelValues(errorReason(err)).Inc()
		return
	}
	if msg == nil {
		c.errors.WithLabelValues("unsupported").Inc()
		return
	}

	c.sentences.WithLabelValues(msg.Kind().String(), nmea.FormatTalker(msg.MessageHeader().Talker)).Inc()
	for _, v := range verrs {
		c.anomalies.WithLabelValues(v.Type.String()).Inc()
	}

	if gga, ok := msg.(*nmea.GGA); ok {
		c.fixQuality.Set(float64(gga.FixQuality))
		if n, ok := gga.Satellites.Get(); ok {
			c.satellites.Set(float64(n))
		}
	}
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, nmea.ErrInvalidChecksum):
		return "checksum"
	case errors.Is(err, nmea.ErrMissingChecksum):
		return "missing_checksum"
	case errors.Is(err, nmea.ErrInvalidMessage):
		return "invalid_message"
	default:
		return "other"
	}
}
