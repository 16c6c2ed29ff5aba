package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Sweeper mirrors rows whose sync never completed and reports how many it handled.
type Sweeper interface {
	ProcessPending(ctx context.Context) (int, error)
}

// SyncProcessorConfig holds configuration for the sync processor
type SyncProcessorConfig struct {
	// PollInterval is how often to sweep pending rows (default: 30s)
	PollInterval time.Duration

	// SweepTimeout bounds a single sweep (default: 1m)
	SweepTimeout time.Duration
}

func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{
		PollInterval: 30 * time.Second,
		SweepTimeout: time.Minute,
	}
}

// SyncProcessor periodically runs a Sweeper. It is the fallback for sync
// messages that were never published or were lost.
type SyncProcessor struct {
	sweeper Sweeper
	config  SyncProcessorConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSyncProcessor(sweeper Sweeper, config SyncProcessorConfig) *SyncProcessor {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultSyncProcessorConfig().PollInterval
	}
	if config.SweepTimeout <= 0 {
		config.SweepTimeout = DefaultSyncProcessorConfig().SweepTimeout
	}
	return &SyncProcessor{
		sweeper: sweeper,
		config:  config,
	}
}

// Run sweeps immediately, then on every tick until ctx is done. It returns
// ctx.Err() or nil when stopped through Stop.
func (p *SyncProcessor) Run(ctx context.Context) error {
	stopCh, doneCh, err := p.markRunning()
	if err != nil {
		return err
	}
	p.runLoop(ctx, stopCh, doneCh)
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

// Start runs the loop in the background. Returns an error if already running.
func (p *SyncProcessor) Start(ctx context.Context) error {
	stopCh, doneCh, err := p.markRunning()
	if err != nil {
		return err
	}
	go p.runLoop(ctx, stopCh, doneCh)

	slog.InfoContext(ctx, "Sync processor started", "poll_interval", p.config.PollInterval)
	return nil
}

func (p *SyncProcessor) markRunning() (stopCh, doneCh chan struct{}, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return nil, nil, fmt.Errorf("sync processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	return p.stopCh, p.doneCh, nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *SyncProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Sync processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Sync processor stop timed out")
		return ctx.Err()
	}
	return nil
}

func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SyncProcessor) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan struct{}) {
	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
		close(doneCh)
	}()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.sweep(ctx)

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

func (p *SyncProcessor) sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.config.SweepTimeout)
	defer cancel()

	n, err := p.sweeper.ProcessPending(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Pending sync sweep failed", "error", err)
		return
	}
	if n > 0 {
		slog.InfoContext(ctx, "Pending sync sweep completed", "count", n)
	}
}
