package indexed

import (
	"testing"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/google/uuid"

	"github.com/stratlog/go-stratlog/storage"
)

// TestContext bundles what most tests of the tiers need: a quiet logger and a
// memory backed blob cache with access to the underlying store.
type TestContext[K, V any] struct {
	T     *testing.T
	Log   logger.Logger
	Blob  *storage.MemBlob
	Cache *BlobCache[K, V]
}

// NewTestContext returns a TestContext labelled uniquely so log lines from
// parallel tests can be told apart.
func NewTestContext[K, V any](t *testing.T, testLabelPrefix string) *TestContext[K, V] {
	logger.New("NOOP")
	log := logger.Sugar.WithServiceName(testLabelPrefix + "-" + uuid.NewString()[:8])
	blob := storage.NewMemBlob()
	return &TestContext[K, V]{
		T:     t,
		Log:   log,
		Blob:  blob,
		Cache: NewBlobCache[K, V](log, blob),
	}
}
