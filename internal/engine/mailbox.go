package engine

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// mailboxSet gives each FDU UUID its own serialization point: operations
// against the same FDU never interleave, but two different FDUs still run
// concurrently. A plain per-UUID mutex, not a channel/goroutine per FDU —
// there is no unbounded queue to bound, and the mutex drops cleanly once the
// last caller for a UUID returns.
type mailboxSet struct {
	log *logrus.Entry

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newMailboxSet(log *logrus.Entry) *mailboxSet {
	return &mailboxSet{log: log, locks: make(map[string]*sync.Mutex)}
}

func (m *mailboxSet) lockFor(uuid string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[uuid]
	if !ok {
		l = &sync.Mutex{}
		m.locks[uuid] = l
	}
	return l
}

// run serializes fn against every other call to run for the same uuid, and
// recovers a panic inside fn so one misbehaving FDU operation can't take
// down the rest of the engine.
func (m *mailboxSet) run(uuid string, fn func() error) (err error) {
	l := m.lockFor(uuid)
	l.Lock()
	defer l.Unlock()

	defer func() {
		if r := recover(); r != nil {
			m.log.WithField("fdu", uuid).Errorf("recovered panic: %v", r)
			err = fmt.Errorf("internal error handling FDU %s: %v", uuid, r)
		}
	}()

	return fn()
}
