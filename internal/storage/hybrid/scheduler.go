package hybrid

import (
	"sync"
	"time"
)

// scheduler tarea repetitiva cancelable. Sustituye al timer implícito del
// event-loop: el contrato de cancelación es explícito y probable sin red.
type scheduler struct {
	stopCh chan struct{}
	doneCh chan struct{}
	once   sync.Once
}

func newScheduler(interval time.Duration, task func()) *scheduler {
	s := &scheduler{
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	go func() {
		defer close(s.doneCh)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
				task()
			}
		}
	}()
	return s
}

// stop cancela la tarea y espera a que el goroutine termine: no quedan timers
// filtrados entre ciclos de vida de instancias. Es idempotente.
func (s *scheduler) stop() {
	s.once.Do(func() { close(s.stopCh) })
	<-s.doneCh
}
