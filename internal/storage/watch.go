package storage

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Veraticus/recipebook/internal/common"
	"github.com/Veraticus/recipebook/internal/model"
)

// changeNotifier fans out "the recipes table changed" signals to live subscriptions.
type changeNotifier struct {
	subscriptions map[uint64]*subscription
	nextID        uint64
	mu            sync.Mutex
	closed        bool
}

// subscription is one live GetAll stream.
type subscription struct {
	changed    chan struct{}
	cancelFunc context.CancelFunc
}

func newChangeNotifier() *changeNotifier {
	return &changeNotifier{
		subscriptions: make(map[uint64]*subscription),
	}
}

// register adds a subscription and returns its id, or false once the notifier is closed.
func (n *changeNotifier) register(sub *subscription) (uint64, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return 0, false
	}
	n.nextID++
	n.subscriptions[n.nextID] = sub
	return n.nextID, true
}

func (n *changeNotifier) unregister(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.subscriptions, id)
}

// notify wakes every subscription. Pending signals coalesce.
func (n *changeNotifier) notify() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, sub := range n.subscriptions {
		select {
		case sub.changed <- struct{}{}:
		default:
		}
	}
}

func (n *changeNotifier) close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.closed = true
	for id, sub := range n.subscriptions {
		sub.cancelFunc()
		delete(n.subscriptions, id)
	}
}

func (n *changeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subscriptions)
}

// Subscribe emits the full store contents now and again after every committed write.
// A slow reader only ever sees the newest snapshot. Cancelling ctx or calling the
// returned function ends the stream and closes the channel.
func (s *SQLiteStorage) Subscribe(ctx context.Context) (<-chan []model.Recipe, func(), error) {
	if err := validateContext(ctx); err != nil {
		return nil, nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{
		changed:    make(chan struct{}, 1),
		cancelFunc: cancel,
	}

	// Register before the first read so no write between the two is missed.
	id, ok := s.notifier.register(sub)
	if !ok {
		cancel()
		return nil, nil, common.NewStorageError("subscribe", ErrStoreClosed)
	}

	initial, err := s.GetAll(subCtx)
	if err != nil {
		s.notifier.unregister(id)
		cancel()
		return nil, nil, err
	}

	out := make(chan []model.Recipe, 1)
	out <- initial

	go func() {
		defer close(out)
		defer s.notifier.unregister(id)

		for {
			select {
			case <-subCtx.Done():
				return
			case <-sub.changed:
				snapshot, err := s.GetAll(subCtx)
				if err != nil {
					if subCtx.Err() != nil {
						return
					}
					slog.Warn("Failed to reload recipes for subscriber", "error", err)
					continue
				}
				// Replace an unread snapshot rather than block on a slow reader.
				select {
				case <-out:
				default:
				}
				out <- snapshot
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(cancel)
	}

	return out, stop, nil
}
