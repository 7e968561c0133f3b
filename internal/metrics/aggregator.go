package metrics

import (
	"context"
	"time"

	"github.com/rileyhilliard/vitals/internal/errors"
	"github.com/rileyhilliard/vitals/internal/logger"
)

// DefaultProviderTimeout bounds a single provider sample.
const DefaultProviderTimeout = 2 * time.Second

// Sampler samples one telemetry domain into a snapshot under construction.
// Implementations keep their own delta state between calls and must
// tolerate being called again after a failed sample.
type Sampler interface {
	Name() string
	Sample(ctx context.Context, snap *SystemSnapshot) error
}

// Aggregator polls every sampler once per tick and merges the results
// into a single SystemSnapshot. Samplers run sequentially, each under its
// own timeout, so one stuck source cannot stall the tick and one failed
// source cannot blank the others.
type Aggregator struct {
	samplers []Sampler
	timeout  time.Duration
	log      logger.Logger

	// last recorded problem per sampler, so a persistent failure is
	// logged once rather than every tick
	seen map[string]string
}

// NewAggregator creates an aggregator with the standard sampler set:
// cpu, memory, network, disk, host, and a GPU sampler when a supported
// card is detected.
func NewAggregator(log logger.Logger) *Aggregator {
	if log == nil {
		log = logger.Noop()
	}

	samplers := []Sampler{
		NewCPUSampler(),
		NewMemorySampler(),
		NewNetworkSampler(),
		NewDiskSampler(),
		NewHostSampler(),
	}
	if gpu := DetectGPU(log); gpu != nil {
		samplers = append(samplers, gpu)
	}

	return NewAggregatorWith(log, samplers...)
}

// NewAggregatorWith creates an aggregator over an explicit sampler set.
func NewAggregatorWith(log logger.Logger, samplers ...Sampler) *Aggregator {
	if log == nil {
		log = logger.Noop()
	}
	return &Aggregator{
		samplers: samplers,
		timeout:  DefaultProviderTimeout,
		log:      log,
		seen:     make(map[string]string),
	}
}

// SetTimeout overrides the per-sampler timeout.
func (a *Aggregator) SetTimeout(d time.Duration) {
	if d > 0 {
		a.timeout = d
	}
}

// Collect takes one sample from every registered sampler and assembles a
// fresh snapshot. A failed sampler leaves its snapshot field nil and
// records the reason in Problems; it never aborts the remaining samplers.
func (a *Aggregator) Collect(ctx context.Context) *SystemSnapshot {
	snap := &SystemSnapshot{
		Taken:    time.Now(),
		Problems: make(map[string]string),
	}

	for _, s := range a.samplers {
		if err := a.runSampler(ctx, s, snap); err != nil {
			a.problem(snap, s.Name(), err)
			continue
		}
		delete(a.seen, s.Name())
	}

	return snap
}

// runSampler executes one sampler under its own deadline. The sampler
// writes into a scratch snapshot that is merged only on success, so a
// sample abandoned at deadline can never touch the assembled snapshot.
func (a *Aggregator) runSampler(ctx context.Context, s Sampler, snap *SystemSnapshot) error {
	sctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	scratch := &SystemSnapshot{}
	done := make(chan error, 1)
	go func() {
		done <- s.Sample(sctx, scratch)
	}()

	select {
	case err := <-done:
		if err != nil {
			return err
		}
		mergeSnapshot(snap, scratch)
		return nil
	case <-sctx.Done():
		return errors.New(errors.ErrProvider,
			s.Name()+" sample timed out",
			"The source may be hung; it will be retried next tick")
	}
}

// mergeSnapshot copies the domain fields the scratch snapshot filled in.
func mergeSnapshot(dst, src *SystemSnapshot) {
	if src.CPU != nil {
		dst.CPU = src.CPU
	}
	if src.Memory != nil {
		dst.Memory = src.Memory
	}
	if src.Network != nil {
		dst.Network = src.Network
	}
	if src.Disk != nil {
		dst.Disk = src.Disk
	}
	if src.GPU != nil {
		dst.GPU = src.GPU
	}
	if src.Host != nil {
		dst.Host = src.Host
	}
}

// problem records a sampler failure for the tick, logging it only when
// the failure is new or its message changed. The stored message is the
// one-line summary; cards render it inline next to the metric.
func (a *Aggregator) problem(snap *SystemSnapshot, name string, err error) {
	msg := errors.Summary(err)
	snap.Problems[name] = msg
	if a.seen[name] == msg {
		return
	}
	a.seen[name] = msg
	a.log.Debug("%s sampler failed: %v", name, err)
}
