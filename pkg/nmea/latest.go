// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package nmea

import "sync"

// Latest keeps the most recent record of each kind. It is safe for
// concurrent use.
type Latest struct {
	mu      sync.RWMutex
	records [KindGNS + 1]Message
}

// Store records m as the latest of its kind. Nil messages are ignored.
func (l *Latest) Store(m Message) {
	if m == nil {
		return
	}
	k := m.Kind()
	if int(k) >= len(l.records) {
		return
	}
	l.mu.Lock()
	l.records[k] = m
	l.mu.Unlock()
}

// Get returns the latest record of kind k, or nil.
func (l *Latest) Get(k Kind) Message {
	if int(k) >= len(l.records) {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.records[k]
}

// GGA returns the latest fix data.
func (l *Latest) GGA() (*GGA, bool) {
	m, ok := l.Get(KindGGA).(*GGA)
	return m, ok
}

// RMC returns the latest recommended minimum record.
func (l *Latest) RMC() (*RMC, bool) {
	m, ok := l.Get(KindRMC).(*RMC)
	return m, ok
}

// Snapshot returns every stored record, in kind order.
func (l *Latest) Snapshot() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Message, 0, len(l.records))
	for _, m := range l.records {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// Clear drops all stored records.
func (l *Latest) Clear() {
	l.mu.Lock()
	l.records = [KindGNS + 1]Message{}
	l.mu.Unlock()
}
