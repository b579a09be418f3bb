package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/carohq/cmdai/internal/domain"
	"github.com/carohq/cmdai/internal/ports"
)

// Prober periodically probes backend availability so the monitor's
// availability flag does not lag an outage by a full request timeout.
type Prober struct {
	monitor  *Monitor
	backends []ports.Backend
	interval time.Duration
	logger   ports.Logger
}

// NewProber builds a background health checker. Interval <= 0 falls back
// to the documented default.
func NewProber(m *Monitor, backends []ports.Backend, interval time.Duration, logger ports.Logger) *Prober {
	if interval <= 0 {
		interval = domain.DefaultProbeInterval
	}
	return &Prober{
		monitor:  m,
		backends: backends,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the probe loop. It probes once immediately, then on every
// tick until ctx is cancelled.
func (p *Prober) Start(ctx context.Context) {
	go func() {
		p.probeAll(ctx)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.probeAll(ctx)
			}
		}
	}()
}

func (p *Prober) probeAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, backend := range p.backends {
		wg.Add(1)
		go func(b ports.Backend) {
			defer wg.Done()
			name := b.Descriptor().Name
			probeCtx, cancel := context.WithTimeout(ctx, p.interval/2)
			defer cancel()
			available := b.Probe(probeCtx)
			p.monitor.MarkAvailability(name, available)
			if p.logger != nil && !available {
				p.logger.Debug("backend probe failed", map[string]interface{}{"backend": name})
			}
		}(backend)
	}
	wg.Wait()
}
