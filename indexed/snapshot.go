package indexed

// Snapshot is the shared read contract of both tiers: each Read call drains
// one stored batch into the caller's accumulator and reports whether more
// remain. Read keeps returning false once exhausted.
//
// Batches drain in reverse storage order, so the batch appended last is
// yielded first. Consumers must drain to exhaustion into an unordered
// accumulator before doing any time ordered work; drain order carries no
// chronology.
type Snapshot[K, V any] interface {
	Read(buf *[]Update[K, V]) bool
}

// ReadAll drains s to exhaustion and returns everything it yielded.
func ReadAll[K, V any](s Snapshot[K, V]) []Update[K, V] {
	var buf []Update[K, V]
	for s.Read(&buf) {
	}
	return buf
}

// IndexedSnapshot is a consistent read of all the data stored for one stream:
// its trace snapshot and its future snapshot, taken at the same sequence
// point by the orchestrator. Draining yields the trace batches before the
// future batches; within each tier the usual reverse order drain applies.
type IndexedSnapshot[K, V any] struct {
	Future *FutureSnapshot[K, V]
	Trace  *TraceSnapshot[K, V]
}

func (s *IndexedSnapshot[K, V]) Read(buf *[]Update[K, V]) bool {
	if s.Trace.Read(buf) {
		return true
	}
	return s.Future.Read(buf)
}
