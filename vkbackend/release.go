package vkbackend

// pendingRelease destroys one object once nothing can reference it.
type pendingRelease struct {
	// after is the last submission id that may use the object.
	after uint64
	// lists counts command lists that were recording when the object was
	// released and have not been executed yet.
	lists   int
	release func()
}

// releaseTracker holds released objects back until every list that was
// recording at release time has been executed or dropped, and every
// submission up to the last of them has completed.
type releaseTracker struct {
	recording map[*commandList][]*pendingRelease
	pending   []*pendingRelease
}

func (r *releaseTracker) begin(l *commandList) {
	if r.recording == nil {
		r.recording = make(map[*commandList][]*pendingRelease)
	}
	r.recording[l] = nil
}

// add queues fn. issued is the highest submission id handed out so far.
func (r *releaseTracker) add(issued uint64, fn func()) {
	p := &pendingRelease{after: issued, lists: len(r.recording), release: fn}
	for l, held := range r.recording {
		r.recording[l] = append(held, p)
	}
	r.pending = append(r.pending, p)
}

// end records that l was submitted as id, or dropped when id is 0.
func (r *releaseTracker) end(l *commandList, id uint64) {
	for _, p := range r.recording[l] {
		p.lists--
		p.after = max(p.after, id)
	}
	delete(r.recording, l)
}

// collect runs the releases that are safe once every submission up to
// completed has finished.
func (r *releaseTracker) collect(completed uint64) {
	kept := r.pending[:0]
	for _, p := range r.pending {
		if p.lists == 0 && p.after <= completed {
			p.release()
			continue
		}
		kept = append(kept, p)
	}
	clear(r.pending[len(kept):])
	r.pending = kept
}

// releaseAll runs every queued release. The device must be idle.
func (r *releaseTracker) releaseAll() {
	for _, p := range r.pending {
		p.release()
	}
	r.pending = nil
	clear(r.recording)
}
