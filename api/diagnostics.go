/*
 * Copyright (c) 2023 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

package api

import (
	"encoding/json"
	"sync"
	"time"
)

type DiagnosticKind string

// The first three kinds are emitted by the engine, exactly one per handled
// event; the remaining ones are emitted by the host harness for requests that
// never reach a Context.
const (
	TransitionAccepted         DiagnosticKind = "transition-accepted"
	InvalidTransitionAttempted DiagnosticKind = "invalid-transition-attempted"
	AlreadyTerminal            DiagnosticKind = "already-terminal"

	MalformedRequest DiagnosticKind = "malformed-request"
	MachineNotFound  DiagnosticKind = "machine-not-found"
	RequestRejected  DiagnosticKind = "request-rejected"
)

// Diagnostic records the resolution of one stimulus event. For a rejected
// transition, `To` is the candidate that failed validation (or StateError when
// no rule mapped the command at all) and the current state is unchanged.
type Diagnostic struct {
	Kind      DiagnosticKind `json:"kind"`
	MachineId string         `json:"machine_id,omitempty"`
	From      StateIdentity  `json:"from"`
	To        StateIdentity  `json:"to"`
	Command   Command        `json:"command"`
	EventId   string         `json:"event_id"`
	Details   string         `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

func (d *Diagnostic) String() string {
	s, err := json.Marshal(*d)
	if err != nil {
		return err.Error()
	}
	return string(s)
}

// DiagnosticLog is the in-process channel observers read resolution outcomes
// from. The engine appends; observers only take snapshots.
type DiagnosticLog struct {
	mux     sync.RWMutex
	records []Diagnostic
}

func NewDiagnosticLog() *DiagnosticLog {
	return &DiagnosticLog{records: make([]Diagnostic, 0)}
}

func (l *DiagnosticLog) Append(d Diagnostic) {
	l.mux.Lock()
	defer l.mux.Unlock()
	l.records = append(l.records, d)
}

// Snapshot returns a copy of all recorded diagnostics, in append order.
func (l *DiagnosticLog) Snapshot() []Diagnostic {
	l.mux.RLock()
	defer l.mux.RUnlock()
	out := make([]Diagnostic, len(l.records))
	copy(out, l.records)
	return out
}

// Last returns the most recent diagnostic, if any was recorded.
func (l *DiagnosticLog) Last() (Diagnostic, bool) {
	l.mux.RLock()
	defer l.mux.RUnlock()
	if len(l.records) == 0 {
		return Diagnostic{}, false
	}
	return l.records[len(l.records)-1], true
}

func (l *DiagnosticLog) Len() int {
	l.mux.RLock()
	defer l.mux.RUnlock()
	return len(l.records)
}

// Count returns how many diagnostics of the given kind have been recorded.
func (l *DiagnosticLog) Count(kind DiagnosticKind) int {
	l.mux.RLock()
	defer l.mux.RUnlock()
	var n int
	for _, d := range l.records {
		if d.Kind == kind {
			n++
		}
	}
	return n
}
