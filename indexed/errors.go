package indexed

import "errors"

var (
	// ErrNonContiguousAppend is returned when a batch's lower bound does not
	// exactly meet the tier's current upper bound.
	ErrNonContiguousAppend = errors.New("batch lower does not match the current upper bound")

	// ErrUpdateBeforeTsLower is returned when a batch appended to a Future
	// contains an update whose time is below the ts_lower watermark.
	ErrUpdateBeforeTsLower = errors.New("batch contains an update before ts_lower")

	// ErrTsLowerRegression is returned by Future.Truncate for a bound below
	// the current ts_lower. Equal bounds are a permitted no-op.
	ErrTsLowerRegression = errors.New("cannot regress ts_lower")

	// ErrNonAdvancingCompaction is returned by Trace.AllowCompaction for a
	// since at or below the current one; the frontier must strictly advance.
	ErrNonAdvancingCompaction = errors.New("compaction frontier must strictly advance")

	// ErrCompactionNotBelowUpper is returned by Trace.AllowCompaction for a
	// since at or past the trace upper; data not yet written cannot have its
	// distinctions compacted away.
	ErrCompactionNotBelowUpper = errors.New("compaction frontier must be strictly below the trace upper")

	// ErrBadMeta is returned when a serialized meta record fails validation
	// during rehydration.
	ErrBadMeta = errors.New("invalid index meta")

	// ErrBatchCorrupt is returned when a stored batch payload cannot be
	// decoded.
	ErrBatchCorrupt = errors.New("stored batch payload is corrupt")
)
