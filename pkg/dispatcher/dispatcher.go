// Package dispatcher is the Event Dispatcher: a single-consumer loop over
// an eventqueue.Queue that guarantees at-most-one Flow Engine operation in
// progress per repository, per spec.md §4.4.
package dispatcher

import (
	"context"
	"sync"

	"github.com/go-logr/logr"
	"github.com/jlewi/qline/pkg/eventqueue"
)

// Handler is what the dispatcher invokes for each event kind. A concrete
// implementation (pkg/controller) owns the provider, the per-repository
// working copies, and the Flow Engine instances this fans out to.
type Handler interface {
	HandleInitialize(ctx context.Context) error
	HandlePing()
	HandleStop()
	HandlePrComment(ctx context.Context, ev eventqueue.Event) error
	HandleCheckCompleted(ctx context.Context, ev eventqueue.Event) error
}

// Dispatcher runs Handler against events from a Queue, fanning out
// repository-scoped events (PrComment, CheckCompleted) onto one worker
// goroutine per repository so two repositories never block each other,
// while guaranteeing every event for the same repository is processed in
// arrival order by exactly one worker at a time.
type Dispatcher struct {
	log     logr.Logger
	queue   *eventqueue.Queue
	handler Handler

	mu      sync.Mutex
	workers map[string]chan eventqueue.Event
	wg      sync.WaitGroup
}

// New returns a Dispatcher reading from queue and invoking handler.
func New(queue *eventqueue.Queue, handler Handler, log logr.Logger) *Dispatcher {
	return &Dispatcher{
		log:     log,
		queue:   queue,
		handler: handler,
		workers: map[string]chan eventqueue.Event{},
	}
}

// Run processes events until a Stop event drains the queue, or ctx is
// cancelled. It returns once every worker has finished the events already
// routed to it.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case ev, ok := <-d.queue.Events():
			if !ok {
				d.closeWorkers()
				d.wg.Wait()
				return nil
			}
			d.log.V(1).Info("dispatching event", "id", ev.ID, "correlationID", ev.CorrelationID.String(), "kind", ev.Kind.String(), "repo", ev.Repo, "cause", ev.Cause)

			if ev.Kind == eventqueue.KindStop {
				d.handler.HandleStop()
				d.closeWorkers()
				d.wg.Wait()
				return nil
			}

			d.route(ctx, ev)
		case <-ctx.Done():
			d.closeWorkers()
			d.wg.Wait()
			return ctx.Err()
		}
	}
}

// route sends repository-scoped events to that repository's worker, and
// handles repo-less control events (Initialize, Ping) inline — they aren't
// git mutations, so they don't need per-repository serialization.
func (d *Dispatcher) route(ctx context.Context, ev eventqueue.Event) {
	switch ev.Kind {
	case eventqueue.KindInitialize:
		if err := d.handler.HandleInitialize(ctx); err != nil {
			d.log.Error(err, "initialize failed", "id", ev.ID)
		}
	case eventqueue.KindPing:
		d.handler.HandlePing()
	default:
		d.workerFor(ev.Repo) <- ev
	}
}

func (d *Dispatcher) workerFor(repo string) chan<- eventqueue.Event {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch, ok := d.workers[repo]
	if ok {
		return ch
	}

	ch = make(chan eventqueue.Event, 64)
	d.workers[repo] = ch
	d.wg.Add(1)
	go d.runWorker(repo, ch)
	return ch
}

func (d *Dispatcher) runWorker(repo string, ch chan eventqueue.Event) {
	defer d.wg.Done()
	for ev := range ch {
		d.process(ev)
	}
}

func (d *Dispatcher) process(ev eventqueue.Event) {
	ctx := context.Background()
	var err error
	switch ev.Kind {
	case eventqueue.KindPrComment:
		err = d.handler.HandlePrComment(ctx, ev)
	case eventqueue.KindCheckCompleted:
		err = d.handler.HandleCheckCompleted(ctx, ev)
	default:
		d.log.Info("unexpected event kind reached worker", "kind", ev.Kind.String(), "id", ev.ID)
		return
	}
	if err != nil {
		d.log.Error(err, "event handling failed", "id", ev.ID, "kind", ev.Kind.String(), "repo", ev.Repo)
	}
}

func (d *Dispatcher) closeWorkers() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, ch := range d.workers {
		close(ch)
	}
}
