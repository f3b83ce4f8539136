/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package metrics tracks the engine's observability outputs: per-command
// counters, response-time statistics, and a bounded ring buffer of machine
// state samples. None of it participates in correctness — the Command
// Engine and state.Manager never read it back.
package metrics

import (
	"sync"
	"time"

	"github.com/nabbar/grbl-engine/grblerr"
	"github.com/nabbar/grbl-engine/state"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultHistorySize is the default ring-buffer capacity for state samples.
const DefaultHistorySize = 256

// Sample is one entry of the bounded status-history ring buffer.
type Sample struct {
	At    time.Time
	State state.MachineState
}

// Snapshot is a point-in-time copy of the counters, safe to hold
// and print after Tracker's lock is released.
type Snapshot struct {
	Total      uint64
	Successful uint64
	Failed     uint64
	Retried    uint64
	Timeouts   uint64
	Alarms     uint64

	AvgResponseTime time.Duration
	MinResponseTime time.Duration
	MaxResponseTime time.Duration

	PeakThroughputPerSec float64
}

// Tracker owns a private prometheus.Registry (never the global default, so
// multiple engines in one process don't collide registering the same
// collector names twice) plus the in-memory ring buffer and counters this
// domain needs beyond what Prometheus itself retains (min/max/avg response
// time, peak throughput and the ring buffer are plain Go state behind the
// same mutex, not read back from the registry).
type Tracker struct {
	registry *prometheus.Registry

	cTotal      prometheus.Counter
	cSuccessful prometheus.Counter
	cFailed     prometheus.Counter
	cRetried    prometheus.Counter
	cTimeouts   prometheus.Counter
	cAlarms     prometheus.Counter
	hResponse   prometheus.Histogram
	gQueueDepth prometheus.Gauge

	mu         sync.Mutex
	total      uint64
	successful uint64
	failed     uint64
	retried    uint64
	timeouts   uint64
	alarms     uint64

	sumResponse time.Duration
	minResponse time.Duration
	maxResponse time.Duration

	windowStart  time.Time
	windowCount  uint64
	peakPerSec   float64

	history []Sample
	histCap int
	histPos int
	histLen int
}

// New returns a Tracker with its own prometheus.Registry. historyCap <= 0
// uses DefaultHistorySize.
func New(historyCap int) *Tracker {
	if historyCap <= 0 {
		historyCap = DefaultHistorySize
	}

	t := &Tracker{
		registry: prometheus.NewRegistry(),
		histCap:  historyCap,
		history:  make([]Sample, historyCap),
	}

	t.cTotal = prometheus.NewCounter(prometheus.CounterOpts{Name: "grbl_commands_total", Help: "Total commands submitted."})
	t.cSuccessful = prometheus.NewCounter(prometheus.CounterOpts{Name: "grbl_commands_successful", Help: "Commands completed with Ok."})
	t.cFailed = prometheus.NewCounter(prometheus.CounterOpts{Name: "grbl_commands_failed", Help: "Commands completed with an error."})
	t.cRetried = prometheus.NewCounter(prometheus.CounterOpts{Name: "grbl_commands_retried", Help: "Commands retried by a convenience caller (e.g. RunFile)."})
	t.cTimeouts = prometheus.NewCounter(prometheus.CounterOpts{Name: "grbl_commands_timeout", Help: "Commands that hit their deadline."})
	t.cAlarms = prometheus.NewCounter(prometheus.CounterOpts{Name: "grbl_alarms_total", Help: "ALARM:N responses observed."})
	t.hResponse = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "grbl_command_response_seconds",
		Help:    "Elapsed time from write to terminal response.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 16),
	})
	t.gQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{Name: "grbl_queue_depth", Help: "Pending normal commands waiting to be dispatched."})

	t.registry.MustRegister(t.cTotal, t.cSuccessful, t.cFailed, t.cRetried, t.cTimeouts, t.cAlarms, t.hResponse, t.gQueueDepth)

	return t
}

// Registry exposes the private registry for an external /metrics handler
// to serve (REST surface concern, outside this package).
func (t *Tracker) Registry() *prometheus.Registry {
	return t.registry
}

// ObserveResult folds one grblerr.Result into the counters and histogram.
func (t *Tracker) ObserveResult(res grblerr.Result) {
	t.cTotal.Inc()

	t.mu.Lock()
	t.total++
	if res.OK() {
		t.successful++
	} else {
		t.failed++
		switch res.Err.Kind {
		case grblerr.KindTimeout:
			t.timeouts++
		case grblerr.KindAlarm:
			t.alarms++
		}
	}

	if res.Elapsed > 0 {
		t.sumResponse += res.Elapsed
		if t.minResponse == 0 || res.Elapsed < t.minResponse {
			t.minResponse = res.Elapsed
		}
		if res.Elapsed > t.maxResponse {
			t.maxResponse = res.Elapsed
		}
	}

	t.bumpThroughput()
	t.mu.Unlock()

	if res.OK() {
		t.cSuccessful.Inc()
	} else {
		t.cFailed.Inc()
		switch res.Err.Kind {
		case grblerr.KindTimeout:
			t.cTimeouts.Inc()
		case grblerr.KindAlarm:
			t.cAlarms.Inc()
		}
	}
	if res.Elapsed > 0 {
		t.hResponse.Observe(res.Elapsed.Seconds())
	}
}

// ObserveRetry records one automatic/convenience retry (e.g. a RunFile
// policy resubmitting a line).
func (t *Tracker) ObserveRetry() {
	t.mu.Lock()
	t.retried++
	t.mu.Unlock()
	t.cRetried.Inc()
}

// SetQueueDepth mirrors the Command Engine's current queue depth into the
// gauge, for a /metrics scrape between ticks.
func (t *Tracker) SetQueueDepth(n int) {
	t.gQueueDepth.Set(float64(n))
}

// bumpThroughput maintains a one-second sliding window of completed
// commands and records the highest rate observed. Caller must hold mu.
func (t *Tracker) bumpThroughput() {
	now := time.Now()
	if t.windowStart.IsZero() || now.Sub(t.windowStart) >= time.Second {
		if t.windowCount > 0 {
			rate := float64(t.windowCount) / now.Sub(t.windowStart).Seconds()
			if rate > t.peakPerSec {
				t.peakPerSec = rate
			}
		}
		t.windowStart = now
		t.windowCount = 0
	}
	t.windowCount++
}

// RecordSample appends a {timestamp, MachineState} entry to the bounded
// ring buffer, overwriting the oldest entry once at capacity.
func (t *Tracker) RecordSample(st state.MachineState) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.history[t.histPos] = Sample{At: time.Now(), State: st}
	t.histPos = (t.histPos + 1) % t.histCap
	if t.histLen < t.histCap {
		t.histLen++
	}
}

// History returns the ring buffer's contents, oldest first.
func (t *Tracker) History() []Sample {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Sample, t.histLen)
	start := (t.histPos - t.histLen + t.histCap) % t.histCap
	for i := 0; i < t.histLen; i++ {
		out[i] = t.history[(start+i)%t.histCap]
	}
	return out
}

// Snapshot copies out the current counters.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	var avg time.Duration
	if t.successful+t.failed > 0 {
		avg = t.sumResponse / time.Duration(t.successful+t.failed)
	}

	return Snapshot{
		Total:                t.total,
		Successful:           t.successful,
		Failed:               t.failed,
		Retried:              t.retried,
		Timeouts:             t.timeouts,
		Alarms:               t.alarms,
		AvgResponseTime:      avg,
		MinResponseTime:      t.minResponse,
		MaxResponseTime:      t.maxResponse,
		PeakThroughputPerSec: t.peakPerSec,
	}
}
