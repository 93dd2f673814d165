// Package accrual начисляет наступившие выплаты по купленным пакетам в фоне.
package accrual

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/minegrid/internal/domain"
)

const (
	defaultServiceTimeout         = 3 * time.Second
	defaultTickInterval           = 10 * time.Second
	defaultLimitPerIteration uint = 100
	defaultWorkers           uint = 10
)

//go:generate mockgen -source=processor.go -destination=mocks/mocks.go -package=mocks

// Servicer — сервисный слой, достаточный для обработчика начислений.
type Servicer interface {
	DueUserMiners(ctx context.Context, now time.Time, limit uint) ([]int64, error)
	SettleDuePayouts(ctx context.Context, userMinerID int64, now time.Time) (*domain.UserMiner, error)
}

// Processor периодически находит пакеты с наступившими выплатами и начисляет их.
// Начисление идемпотентно (чистая функция от сохраненного состояния и now), поэтому
// ретрай после любой ошибки — просто следующий тик.
type Processor struct {
	svs               Servicer
	l                 *logrus.Entry
	now               func() time.Time
	tickInterval      time.Duration
	limitPerIteration uint
	workers           uint
}

// New создает новый экземпляр обработчика начислений.
func New(svs Servicer, l *logrus.Logger) *Processor {
	loggerEntry := l.WithFields(logrus.Fields{
		"component": "accrual",
		"module":    "processor",
	})

	return &Processor{
		svs:               svs,
		l:                 loggerEntry,
		now:               time.Now,
		tickInterval:      defaultTickInterval,
		limitPerIteration: defaultLimitPerIteration,
		workers:           defaultWorkers,
	}
}

// SetTickInterval устанавливает период между итерациями обработчика.
func (p *Processor) SetTickInterval(interval time.Duration) *Processor {
	p.tickInterval = interval
	return p
}

// SetLimitPerIteration устанавливает кол-во пакетов, обрабатываемых в одной итерации.
func (p *Processor) SetLimitPerIteration(limit uint) *Processor {
	p.limitPerIteration = limit
	return p
}

// SetWorkers устанавливает кол-во воркеров, начисляющих выплаты параллельно.
func (p *Processor) SetWorkers(workers uint) *Processor {
	p.workers = workers
	return p
}

// SetClock подменяет источник времени (для тестов).
func (p *Processor) SetClock(now func() time.Time) *Processor {
	p.now = now
	return p
}

// Run запускает обработку начислений в бесконечном цикле до отмены контекста.
//
// Алгоритм работы:
//  1. В каждой итерации через сервисный слой запрашивается список пакетов с
//     наступившими выплатами. Объем списка лимитируется через SetLimitPerIteration.
//  2. Пакеты раздаются N воркерам (кол-во настраивается через SetWorkers), каждый
//     воркер начисляет выплаты по своему пакету отдельной транзакцией.
//  3. Интервал между итерациями слегка рассыпается джиттером, чтобы несколько
//     инстансов не тикали синхронно.
func (p *Processor) Run(ctx context.Context) {
	p.l.WithFields(logrus.Fields{
		"tickInterval":      p.tickInterval.String(),
		"limitPerIteration": p.limitPerIteration,
		"workers":           p.workers,
	}).Info("Starting")

	for {
		select {
		case <-ctx.Done():
			p.l.Info("Got stop signal, exiting...")
			return
		case <-time.After(jitter(p.tickInterval, 0.1, 0.1)):
			if err := p.process(ctx); err != nil {
				if !errors.Is(err, ErrNoDuePackages) {
					p.l.WithError(err).Error("process error")
				}
			}
		}
	}
}

// process выполняет одну итерацию: получение списка пакетов и их параллельное начисление.
// Возвращает ErrNoDuePackages, если начислять нечего.
func (p *Processor) process(ctx context.Context) error {
	now := p.now()

	ids, idsErr := p.produce(ctx, now)
	if idsErr != nil {
		return fmt.Errorf("process: %w", idsErr)
	}

	results := p.runWorkers(ctx, ids, now)
	for _, result := range results {
		l := p.l.WithFields(logrus.Fields{
			"worker":      result.WorkerID,
			"userMinerID": result.UserMinerID,
		})
		switch {
		case errors.Is(result.Error, domain.ErrStaleState):
			// конкурентный тик успел первым, пакет уже начислен.
			l.Debug("stale state, skipping")
		case result.Error != nil:
			l.WithError(result.Error).Error("settle payouts")
		case result.Settled != nil && result.Settled.LastPayoutAt != nil:
			l.WithFields(logrus.Fields{
				"payoutsReceived": result.Settled.PayoutsReceived,
				"active":          result.Settled.Active,
			}).Info("Settled")
		}
	}
	return nil
}

// workerResult представляет результат начисления по одному пакету.
type workerResult struct {
	WorkerID    uint
	UserMinerID int64
	Settled     *domain.UserMiner
	Error       error
}

// runWorkers запускает параллельных воркеров начисления и ожидает конца их работы.
// Реализует паттерн fan-out/fan-in.
func (p *Processor) runWorkers(ctx context.Context, ids []int64, now time.Time) []workerResult {
	var taskCh = make(chan int64, len(ids))
	for _, id := range ids {
		taskCh <- id
	}
	close(taskCh)

	wg := new(sync.WaitGroup)
	wg.Add(int(p.workers)) //nolint:gosec

	var resultCh = make(chan workerResult, len(ids))

	for i := range p.workers {
		go p.worker(ctx, wg, i+1, taskCh, resultCh, now)
	}
	wg.Wait()
	close(resultCh)

	var results = make([]workerResult, 0, len(ids))
	for result := range resultCh {
		results = append(results, result)
	}
	return results
}

// worker начисляет выплаты по пакетам из канала и отправляет результаты.
func (p *Processor) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	workerID uint,
	taskCh <-chan int64,
	resultCh chan<- workerResult,
	now time.Time,
) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case id, ok := <-taskCh:
			if !ok {
				return
			}
			settleCtx, cancel := context.WithTimeout(ctx, defaultServiceTimeout)
			settled, err := p.svs.SettleDuePayouts(settleCtx, id, now)
			cancel()

			resultCh <- workerResult{
				WorkerID:    workerID,
				UserMinerID: id,
				Settled:     settled,
				Error:       err,
			}
		}
	}
}

// produce получает список пакетов с наступившими выплатами.
// Возвращает ErrNoDuePackages, если такие пакеты отсутствуют.
func (p *Processor) produce(ctx context.Context, now time.Time) ([]int64, error) {
	produceCtx, cancel := context.WithTimeout(ctx, defaultServiceTimeout)
	defer cancel()

	ids, idsErr := p.svs.DueUserMiners(produceCtx, now, p.limitPerIteration)
	if idsErr != nil {
		return nil, fmt.Errorf("produce: %w", idsErr)
	}

	if len(ids) == 0 {
		return nil, ErrNoDuePackages
	}
	return ids, nil
}
