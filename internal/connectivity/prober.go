package connectivity

import (
	"context"
	"io"
	"net/http"
	"time"
)

// Prober periodically requests a lightweight check URL and feeds the
// result into a Monitor. Any HTTP response counts as online; only a
// transport failure counts as offline.
type Prober struct {
	monitor  *Monitor
	checkURL string
	interval time.Duration
	client   *http.Client
}

// NewProber creates a prober. A nil client gets a short-timeout default
// so a dead network cannot stall the probe loop.
func NewProber(monitor *Monitor, checkURL string, interval time.Duration, client *http.Client) *Prober {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &Prober{
		monitor:  monitor,
		checkURL: checkURL,
		interval: interval,
		client:   client,
	}
}

// Probe performs a single check and reports the observation.
func (p *Prober) Probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.checkURL, nil)
	if err != nil {
		p.monitor.SetOnline(false)
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.monitor.SetOnline(false)
		return false
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	p.monitor.SetOnline(true)
	return true
}

// Run probes immediately and then on every tick until ctx is cancelled.
func (p *Prober) Run(ctx context.Context) {
	p.Probe(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.Probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}
