package worker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/punchamoorthee/payflow/internal/domain"
	"github.com/punchamoorthee/payflow/internal/service"
)

// TransferJob is a fully resolved transfer waiting for a worker.
type TransferJob struct {
	RequestID string
	Payer     *domain.User
	Src       *domain.Account
	Payee     *domain.User
	Dst       *domain.Account
	Amount    decimal.Decimal
}

// Pool runs transfers asynchronously against a bounded queue. A full
// queue rejects submissions so the HTTP layer can push back with 429.
type Pool struct {
	jobs   chan TransferJob
	engine *service.Engine
	logger *slog.Logger
	wg     sync.WaitGroup
}

func NewPool(bufferSize int, engine *service.Engine, logger *slog.Logger) *Pool {
	return &Pool{
		jobs:   make(chan TransferJob, bufferSize),
		engine: engine,
		logger: logger,
	}
}

func (p *Pool) Start(workerCount int) {
	for i := 0; i < workerCount; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for job := range p.jobs {
		_, err := p.engine.Transfer(context.Background(), job.Payer, job.Src, job.Payee, job.Dst, job.Amount)
		if err != nil {
			p.logger.Error("async transfer failed",
				"request_id", job.RequestID,
				"error", err,
			)
		}
	}
}

// Submit enqueues the job, reporting false when the queue is full.
func (p *Pool) Submit(job TransferJob) bool {
	select {
	case p.jobs <- job:
		return true
	default:
		return false
	}
}

// Shutdown stops accepting work and drains the queue.
func (p *Pool) Shutdown() {
	close(p.jobs)
	p.wg.Wait()
}
