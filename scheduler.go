package dieselrt

import (
	"fmt"
	"sync"
)

// transferFlushThreshold is how many upload bytes may accumulate on the copy
// list before it is submitted early.
const transferFlushThreshold = 16 << 20

// queueConsumers lists, per queue, the queues whose next submission must wait
// for work flushed on it. Copy feeds both others, compute feeds graphics.
var queueConsumers = [queueTypeCount][]QueueType{
	QueueCopy:    {QueueCompute, QueueGraphics},
	QueueCompute: {QueueGraphics},
}

// CommandListScheduler keeps at most one open command list per queue type
// and submits them with the cross-queue waits that order copy before compute
// before graphics.
type CommandListScheduler struct {
	// mu guards device state: the open lists and the backend calls that
	// create and submit them.
	mu            sync.Mutex
	backend       Backend
	lists         [queueTypeCount]CommandList
	transferBytes uint64
	submissions   uint64
}

func NewCommandListScheduler(backend Backend) *CommandListScheduler {
	return &CommandListScheduler{backend: backend}
}

// Get returns the open list for t, creating and opening one if needed.
func (s *CommandListScheduler) Get(t QueueType) (CommandList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if list := s.lists[t]; list != nil {
		return list, nil
	}
	list, err := s.backend.CreateCommandList(t)
	if err != nil {
		return nil, fmt.Errorf("create %s command list: %w", t, err)
	}
	if err := list.Open(); err != nil {
		return nil, fmt.Errorf("open %s command list: %w", t, err)
	}
	s.lists[t] = list
	return list, nil
}

// Flush closes and submits the open list for t. Downstream queues are made
// to wait on the submission. An empty slot is a no-op returning 0.
func (s *CommandListScheduler) Flush(t QueueType) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked(t)
}

func (s *CommandListScheduler) flushLocked(t QueueType) (uint64, error) {
	if t == QueueCopy {
		s.transferBytes = 0
	}
	list := s.lists[t]
	if list == nil {
		return 0, nil
	}
	s.lists[t] = nil
	if err := list.Close(); err != nil {
		return 0, fmt.Errorf("close %s command list: %w", t, err)
	}
	id := s.backend.ExecuteCommandList(list, t)
	if id == 0 {
		return 0, nil
	}
	s.submissions++
	for _, consumer := range queueConsumers[t] {
		s.backend.QueueWaitForCommandList(consumer, t, id)
	}
	return id, nil
}

// FlushAll flushes copy, then compute, then graphics. Every queue is
// attempted, the first error is returned.
func (s *CommandListScheduler) FlushAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var first error
	for t := QueueCopy; t < queueTypeCount; t++ {
		if _, err := s.flushLocked(t); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// AddTransferBytes accounts n upload bytes against the copy list and
// flushes it once the threshold is reached. It reports whether a flush ran.
func (s *CommandListScheduler) AddTransferBytes(n uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transferBytes += n
	if s.transferBytes < transferFlushThreshold {
		return false, nil
	}
	_, err := s.flushLocked(QueueCopy)
	return true, err
}

// Pending reports whether any list is open.
func (s *CommandListScheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.lists {
		if l != nil {
			return true
		}
	}
	return false
}

// Submissions counts lists that produced a submission id.
func (s *CommandListScheduler) Submissions() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submissions
}
