package remote

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chabs-app/chabs-api/internal/storage"
	"github.com/chabs-app/chabs-api/pkg/logger"
)

// subscriber mantiene una conexión dedicada en LISTEN y reparte las
// notificaciones entre las suscripciones activas.
//
// La entrega se hace con el mutex tomado: Cancel toma el mismo mutex, así que
// al retornar Cancel ya no hay callback en vuelo ni entregas posteriores.
type subscriber struct {
	pool *pgxpool.Pool
	log  *logger.Logger

	mu     sync.Mutex
	subs   map[int]*subscription
	nextID int

	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

type subscription struct {
	owner      *subscriber
	id         int
	collection string
	fn         func(storage.ChangeEvent)
}

// Cancel detiene la entrega de inmediato y libera el listener registrado.
func (s *subscription) Cancel() {
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()
	delete(s.owner.subs, s.id)
}

func newSubscriber(pool *pgxpool.Pool, log *logger.Logger) *subscriber {
	return &subscriber{pool: pool, log: log, subs: map[int]*subscription{}}
}

func (s *subscriber) subscribe(collection string, fn func(storage.ChangeEvent)) (storage.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		ctx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		s.done = make(chan struct{})
		s.started = true
		go s.listen(ctx)
	}

	s.nextID++
	sub := &subscription{owner: s, id: s.nextID, collection: collection, fn: fn}
	s.subs[sub.id] = sub
	return sub, nil
}

func (s *subscriber) close() {
	s.mu.Lock()
	started := s.started
	s.started = false
	s.subs = map[int]*subscription{}
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	if started {
		cancel()
		<-done
	}
}

// listen mantiene la conexión LISTEN viva; ante un corte reintenta con espera fija.
func (s *subscriber) listen(ctx context.Context) {
	defer close(s.done)
	for {
		if err := s.listenOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Warn().Err(err).Msg("listener de cambios desconectado, reintentando")
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

func (s *subscriber) listenOnce(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return err
	}
	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		s.dispatch([]byte(n.Payload))
	}
}

func (s *subscriber) dispatch(payload []byte) {
	var ev storage.ChangeEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		s.log.Warn().Err(err).Msg("notificación de cambio malformada")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		if sub.collection == ev.Collection {
			sub.fn(ev)
		}
	}
}
