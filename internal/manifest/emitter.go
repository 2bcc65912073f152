package manifest

import (
	"log"
	"sync"
)

// #region emitter

// AsyncEmitter decouples manifest writes from the control loop: Emit never
// blocks, so a slow store cannot stall a tick. A lost write is logged and
// dropped; dispatch safety takes priority over audit completeness.
type AsyncEmitter struct {
	store *Store
	ch    chan Manifest
	wg    sync.WaitGroup

	closeOnce sync.Once
}

// NewAsyncEmitter starts the background writer with the given queue depth.
func NewAsyncEmitter(store *Store, queueDepth int) *AsyncEmitter {
	if queueDepth < 1 {
		queueDepth = 16
	}
	e := &AsyncEmitter{
		store: store,
		ch:    make(chan Manifest, queueDepth),
	}
	e.wg.Add(1)
	go e.run()
	return e
}

// Emit hands a manifest to the background writer. Non-blocking: when the
// queue is full the manifest is dropped and the loss logged.
func (e *AsyncEmitter) Emit(m Manifest) {
	select {
	case e.ch <- m:
	default:
		log.Printf("[STORE] emit queue full, dropping manifest %s", m.DecisionID)
	}
}

// Close drains queued manifests and stops the writer.
func (e *AsyncEmitter) Close() {
	e.closeOnce.Do(func() {
		close(e.ch)
	})
	e.wg.Wait()
}

func (e *AsyncEmitter) run() {
	defer e.wg.Done()
	for m := range e.ch {
		if err := e.store.Put(m); err != nil {
			log.Printf("[STORE] manifest write failed for %s: %v", m.DecisionID, err)
		}
	}
}

// #endregion emitter
