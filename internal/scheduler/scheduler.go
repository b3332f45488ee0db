package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/skalibog/bspa/pkg/logger"
	"github.com/skalibog/bspa/pkg/models"
	"go.uber.org/zap"
)

// CycleState хранит состояние планировщика между циклами.
// Передается явным объектом, а не глобальными переменными,
// чтобы планировщик оставался тестируемым в изоляции.
type CycleState struct {
	mu           sync.Mutex
	lastSignalAt time.Time
	inFlight     bool
	cycles       int
}

// NewCycleState создает пустое состояние планировщика
func NewCycleState() *CycleState {
	return &CycleState{}
}

// begin помечает начало цикла; false, если предыдущий еще не завершен
func (s *CycleState) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return false
	}
	s.inFlight = true
	return true
}

// finish помечает завершение цикла
func (s *CycleState) finish(sent bool, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	s.cycles++
	if sent {
		s.lastSignalAt = now
	}
}

// LastSignalAt возвращает время последней успешной отправки
func (s *CycleState) LastSignalAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSignalAt
}

// Cycles возвращает число завершенных циклов
func (s *CycleState) Cycles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycles
}

// ReportFunc строит отчет одного цикла
type ReportFunc func(ctx context.Context) (models.Report, error)

// SendFunc отправляет готовое сообщение
type SendFunc func(ctx context.Context, text string) error

// RenderFunc превращает отчет в сообщение
type RenderFunc func(report models.Report) string

// Scheduler периодически строит отчет и отправляет его в чат
type Scheduler struct {
	interval time.Duration
	state    *CycleState
	build    ReportFunc
	render   RenderFunc
	send     SendFunc
}

// New создает новый планировщик
func New(interval time.Duration, state *CycleState, build ReportFunc, render RenderFunc, send SendFunc) *Scheduler {
	return &Scheduler{
		interval: interval,
		state:    state,
		build:    build,
		render:   render,
		send:     send,
	}
}

// Run запускает цикл планировщика. Блокирует до отмены контекста.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Первый отчет сразу, не дожидаясь первого тика
	s.runCycle(ctx)

	for {
		select {
		case <-ticker.C:
			s.runCycle(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// runCycle выполняет один цикл: отчет, рендер, отправка
func (s *Scheduler) runCycle(ctx context.Context) {
	if !s.state.begin() {
		logger.Warn("Предыдущий цикл еще выполняется, тик пропущен")
		return
	}

	sent := false
	defer func() {
		s.state.finish(sent, time.Now())
	}()

	report, err := s.build(ctx)
	if err != nil {
		logger.Error("Ошибка построения отчета", zap.Error(err))
		return
	}

	if err := s.send(ctx, s.render(report)); err != nil {
		logger.Error("Ошибка отправки отчета", zap.Error(err))
		return
	}

	sent = true
	logger.Info("Отчет отправлен",
		zap.String("symbol", report.Symbol),
		zap.String("signal", report.Signal.Message),
		zap.Float64("change", report.Signal.PercentChange))
}
