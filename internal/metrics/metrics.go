// Package metrics provides process-level counters for key derivation.
// Counters are atomic so concurrent derivations can record freely.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/mrz1836/keytree/internal/coin"
)

// Metrics holds derivation metrics using atomic counters for thread safety.
type Metrics struct {
	// Derivation metrics
	derivationsTotal  atomic.Int64
	derivationErrors  atomic.Int64
	derivationLatency atomic.Int64

	// Per-curve derivations
	secp256k1Derivations atomic.Int64
	ed25519Derivations   atomic.Int64

	// Address metrics
	addressesTotal atomic.Int64
	addressErrors  atomic.Int64
}

// Global is the global metrics instance.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

// RecordDerivation records one path derivation on curve.
func (m *Metrics) RecordDerivation(curve coin.Curve, duration time.Duration, err error) {
	m.derivationsTotal.Add(1)
	m.derivationLatency.Add(duration.Nanoseconds())

	if err != nil {
		m.derivationErrors.Add(1)
	}

	switch curve {
	case coin.Secp256k1:
		m.secp256k1Derivations.Add(1)
	case coin.Ed25519:
		m.ed25519Derivations.Add(1)
	}
}

// RecordAddress records one address encoding.
func (m *Metrics) RecordAddress(err error) {
	m.addressesTotal.Add(1)
	if err != nil {
		m.addressErrors.Add(1)
	}
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	DerivationsTotal     int64
	DerivationErrors     int64
	DerivationLatencyNs  int64
	Secp256k1Derivations int64
	Ed25519Derivations   int64
	AddressesTotal       int64
	AddressErrors        int64
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		DerivationsTotal:     m.derivationsTotal.Load(),
		DerivationErrors:     m.derivationErrors.Load(),
		DerivationLatencyNs:  m.derivationLatency.Load(),
		Secp256k1Derivations: m.secp256k1Derivations.Load(),
		Ed25519Derivations:   m.ed25519Derivations.Load(),
		AddressesTotal:       m.addressesTotal.Load(),
		AddressErrors:        m.addressErrors.Load(),
	}
}

// DerivationsTotal returns the number of derivations recorded.
func (m *Metrics) DerivationsTotal() int64 {
	return m.derivationsTotal.Load()
}

// DerivationLatencyAvgMs returns the average derivation time in
// milliseconds, or 0 before the first derivation.
func (m *Metrics) DerivationLatencyAvgMs() float64 {
	calls := m.derivationsTotal.Load()
	if calls == 0 {
		return 0
	}
	return float64(m.derivationLatency.Load()) / float64(calls) / 1e6
}

// Reset sets all metrics to zero.
func (m *Metrics) Reset() {
	m.derivationsTotal.Store(0)
	m.derivationErrors.Store(0)
	m.derivationLatency.Store(0)
	m.secp256k1Derivations.Store(0)
	m.ed25519Derivations.Store(0)
	m.addressesTotal.Store(0)
	m.addressErrors.Store(0)
}
