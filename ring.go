package diaglog

// ring is a fixed-capacity FIFO of entries; callers hold the logger's store lock
type ring struct {
	buf   []Entry
	head  int // index of the oldest entry
	count int
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]Entry, capacity)}
}

// push appends e, evicting the oldest entry when full. Reports whether an entry was evicted.
func (r *ring) push(e Entry) bool {
	if r.count < len(r.buf) {
		r.buf[(r.head+r.count)%len(r.buf)] = e
		r.count++
		return false
	}
	r.buf[r.head] = e
	r.head = (r.head + 1) % len(r.buf)
	return true
}

// snapshot copies entries oldest first, optionally keeping only those matching keep
func (r *ring) snapshot(keep func(Entry) bool) []Entry {
	out := make([]Entry, 0, r.count)
	for i := 0; i < r.count; i++ {
		e := r.buf[(r.head+i)%len(r.buf)]
		if keep == nil || keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func (r *ring) len() int {
	return r.count
}

func (r *ring) reset() {
	clear(r.buf)
	r.head = 0
	r.count = 0
}
