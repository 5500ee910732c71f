package workflow

import (
	"sync"
	"sync/atomic"
	"time"

	"log/slog"

	"scribe/internal/logging"
)

const progressInterval = 15 * time.Second

// progressReporter logs how far a long-running stage has come at a fixed
// interval so an unattended run still leaves a trail in the logs.
type progressReporter struct {
	logger    *slog.Logger
	stage     string
	total     int
	completed atomic.Int64
	started   time.Time
	done      chan struct{}
	once      sync.Once
	wg        sync.WaitGroup
}

func newProgress(logger *slog.Logger, stage string, total int) *progressReporter {
	p := &progressReporter{
		logger:  logger,
		stage:   stage,
		total:   total,
		started: time.Now(),
		done:    make(chan struct{}),
	}
	p.wg.Add(1)
	go p.loop()
	return p
}

func (p *progressReporter) loop() {
	defer p.wg.Done()
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			p.logger.Info("stage progress",
				logging.String(logging.FieldStage, p.stage),
				logging.Int64("completed", p.completed.Load()),
				logging.Int("total", p.total),
				logging.Duration("elapsed", time.Since(p.started)),
			)
		}
	}
}

func (p *progressReporter) advance() {
	p.completed.Add(1)
}

// stop ends the reporting goroutine and waits for it to exit. Safe to call
// more than once.
func (p *progressReporter) stop() {
	p.once.Do(func() { close(p.done) })
	p.wg.Wait()
}
