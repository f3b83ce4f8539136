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

package state

import (
	"sync"
	"time"

	"github.com/nabbar/grbl-engine/grblerr"
	"github.com/nabbar/grbl-engine/response"
)

// Delta is the position change observed between two consecutive Status
// updates. It carries the difference on all three axes; it is reported
// when at least one axis moved by the configured threshold or more.
type Delta struct {
	X, Y, Z float64
}

// Snapshot is a value-type copy of the Manager's internal state, safe to
// hold and inspect after the read lock is released.
type Snapshot struct {
	State MachineState

	MPos response.Axes
	WPos response.Axes
	WCO  response.Axes

	FS *response.FeedSpeed
	Ov *response.Overrides
	Pn string
	Bf *response.BufferState

	ActiveWCS string
	WCS       map[string]response.Axes

	Settings map[int]float64

	Modal Modal
	Tool  *Tool

	AlarmLatched bool
	AlarmCode    int

	UpdatedAt time.Time
}

// PositionThreshold is the default minimum per-axis delta, in millimeters,
// that triggers a position_changed event.
const PositionThreshold = 0.001

// Manager consumes every parsed response.Response and exposes a read-mostly
// Snapshot. All mutation funnels through a single sync.RWMutex; there is no
// dispatcher goroutine here because, unlike the Command Engine, state reads
// don't need FIFO ordering against writers — they need freshness and
// mutual exclusion, which RWMutex gives directly.
type Manager struct {
	mu sync.RWMutex

	state MachineState
	mpos  response.Axes
	wpos  response.Axes
	wco   response.Axes
	fs    *response.FeedSpeed
	ov    *response.Overrides
	pn    string
	bf    *response.BufferState

	activeWCS string
	wcs       map[string]response.Axes

	settings map[int]float64

	modal Modal
	tool  *Tool

	alarmLatched bool
	alarmCode    int

	limits         Limits
	softLimitCheck bool
	posThreshold   float64

	updatedAt time.Time

	onStateChanged    func(prev, next MachineState)
	onPositionChanged func(d Delta)
}

// ManagerOption configures a Manager at construction.
type ManagerOption func(*Manager)

// WithLimits enables soft-limit pre-submission validation against l.
func WithLimits(l Limits) ManagerOption {
	return func(m *Manager) {
		m.limits = l
		m.softLimitCheck = l.configured()
	}
}

// WithStateChanged registers a callback invoked (outside the lock) whenever
// Update observes a Status report whose State differs from the previous
// one — the hook the supervisor uses to publish state_changed events.
func WithStateChanged(fn func(prev, next MachineState)) ManagerOption {
	return func(m *Manager) { m.onStateChanged = fn }
}

// WithPositionChanged registers a callback invoked (outside the lock)
// whenever Update observes any axis of MPos move at least the position
// threshold since the previous Status.
func WithPositionChanged(fn func(d Delta)) ManagerOption {
	return func(m *Manager) { m.onPositionChanged = fn }
}

// WithPositionThreshold overrides the minimum per-axis delta, in
// millimeters, below which position changes are not reported. Values <= 0
// keep PositionThreshold.
func WithPositionThreshold(v float64) ManagerOption {
	return func(m *Manager) {
		if v > 0 {
			m.posThreshold = v
		}
	}
}

// NewManager returns an empty Manager in MachineState Unknown.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		wcs:          make(map[string]response.Axes),
		settings:     make(map[int]float64),
		modal:        DefaultModal(),
		posThreshold: PositionThreshold,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Update applies one parsed response.Response to the machine state.
// Non-state-bearing kinds (Ok, Error, Welcome handled separately via
// OnWelcome) are no-ops here.
func (m *Manager) Update(r response.Response) {
	switch r.Kind {
	case response.KindStatus:
		m.updateStatus(r.Status)
	case response.KindAlarm:
		code := 0
		if r.Alarm != nil {
			code = *r.Alarm
		}
		m.updateAlarm(code)
	case response.KindSetting:
		if r.Setting != nil {
			m.mu.Lock()
			m.settings[r.Setting.Index] = r.Setting.Value
			m.updatedAt = time.Now()
			m.mu.Unlock()
		}
	case response.KindCoordinates:
		if r.Coordinates != nil {
			m.mu.Lock()
			m.wcs[r.Coordinates.System] = r.Coordinates.Values
			if r.Coordinates.System == m.activeWCS || m.activeWCS == "" {
				m.activeWCS = r.Coordinates.System
				m.recomputeWCO()
			}
			m.updatedAt = time.Now()
			m.mu.Unlock()
		}
	}
}

func (m *Manager) updateStatus(sr *response.StatusReport) {
	if sr == nil {
		return
	}

	m.mu.Lock()

	prevState := m.state
	prevMPos := m.mpos

	next := fromToken(string(sr.State))
	m.state = next
	m.mpos = sr.MPos

	if sr.WCO != nil {
		m.wco = *sr.WCO
		m.wpos = response.Axes{X: sr.MPos.X - sr.WCO.X, Y: sr.MPos.Y - sr.WCO.Y, Z: sr.MPos.Z - sr.WCO.Z}
	} else if sr.WPos != nil {
		m.wpos = *sr.WPos
	}

	if sr.FS != nil {
		m.fs = sr.FS
	}
	if sr.Ov != nil {
		m.ov = sr.Ov
	}
	if sr.Pn != "" {
		m.pn = sr.Pn
	}
	if sr.Bf != nil {
		m.bf = sr.Bf
	}

	m.updatedAt = time.Now()

	stateChanged := prevState != next
	delta := Delta{X: m.mpos.X - prevMPos.X, Y: m.mpos.Y - prevMPos.Y, Z: m.mpos.Z - prevMPos.Z}
	posChanged := abs(delta.X) >= m.posThreshold || abs(delta.Y) >= m.posThreshold || abs(delta.Z) >= m.posThreshold

	onState, onPos := m.onStateChanged, m.onPositionChanged
	m.mu.Unlock()

	if stateChanged && onState != nil {
		onState(prevState, next)
	}
	if posChanged && onPos != nil {
		onPos(delta)
	}
}

func (m *Manager) updateAlarm(code int) {
	m.mu.Lock()
	m.alarmLatched = true
	m.alarmCode = code
	m.state = Alarm
	m.updatedAt = time.Now()
	m.mu.Unlock()
}

// recomputeWCO refreshes wco from the active WCS table entry. Caller must
// hold the write lock.
func (m *Manager) recomputeWCO() {
	if a, ok := m.wcs[m.activeWCS]; ok {
		m.wco = a
	}
}

// OnWelcome resets modal defaults on every banner, and additionally clears
// the alarm latch when afterReset is true — the Supervisor is the only
// caller that knows whether the banner followed a 0x18 soft reset.
func (m *Manager) OnWelcome(afterReset bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fs = nil
	m.ov = nil
	m.pn = ""
	m.bf = nil
	m.modal = DefaultModal()
	m.tool = nil
	m.updatedAt = time.Now()

	if afterReset {
		m.alarmLatched = false
		m.alarmCode = 0
		if m.state == Alarm {
			m.state = Idle
		}
	}
}

// ApplyOutboundLine folds line's modal/tool words into the optimistic
// modal mirror. The Supervisor calls this for every normal/immediate line
// it writes, before the controller has any chance to respond — GRBL's line
// protocol gives no other way to track modal state short of an explicit
// "$G" query, which this engine does not issue.
func (m *Manager) ApplyOutboundLine(line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	applyOutboundLine(&m.modal, &m.tool, line)
	if sys, ok := wcsWord(line); ok {
		m.activeWCS = sys
		m.recomputeWCO()
	}
	m.updatedAt = time.Now()
}

// UnitsInch reports whether the modal mirror currently holds G20 (inches),
// the unit-normalization hook response.ParseWithUnits needs.
func (m *Manager) UnitsInch() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.modal.Units == UnitsInches
}

// AlarmLatched reports whether C5 currently holds a latched alarm.
func (m *Manager) AlarmLatched() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.alarmLatched
}

// ClearAlarm clears the latch directly. The alarm-recovery protocol calls
// it once $X completes with Ok, independent of any welcome banner.
func (m *Manager) ClearAlarm() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alarmLatched = false
	m.alarmCode = 0
	if m.state == Alarm {
		m.state = Idle
	}
}

// Snapshot copies out the current state under the read lock.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wcs := make(map[string]response.Axes, len(m.wcs))
	for k, v := range m.wcs {
		wcs[k] = v
	}
	settings := make(map[int]float64, len(m.settings))
	for k, v := range m.settings {
		settings[k] = v
	}

	var tool *Tool
	if m.tool != nil {
		cp := *m.tool
		tool = &cp
	}

	return Snapshot{
		State:        m.state,
		MPos:         m.mpos,
		WPos:         m.wpos,
		WCO:          m.wco,
		FS:           m.fs,
		Ov:           m.ov,
		Pn:           m.pn,
		Bf:           m.bf,
		ActiveWCS:    m.activeWCS,
		WCS:          wcs,
		Settings:     settings,
		Modal:        m.modal,
		Tool:         tool,
		AlarmLatched: m.alarmLatched,
		AlarmCode:    m.alarmCode,
		UpdatedAt:    m.updatedAt,
	}
}

// ValidateSoftLimit parses line for a G0/G1 absolute target and, when a
// limits envelope is configured, rejects targets that fall outside it. It
// returns nil when the line passes (including every line the tokenizer
// can't parse as motion, and every case where no limits are configured) —
// this is a client-side guard only; the controller's own check remains
// authoritative.
func (m *Manager) ValidateSoftLimit(line string) *grblerr.Err {
	m.mu.RLock()
	check := m.softLimitCheck
	limits := m.limits
	m.mu.RUnlock()

	if !check {
		return nil
	}

	targets, ok := extractAxisTargets(line)
	if !ok {
		return nil
	}

	if limits.exceeds(targets) {
		return grblerr.Rejected(grblerr.ReasonSoftLimit).WithLine(line)
	}
	return nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
