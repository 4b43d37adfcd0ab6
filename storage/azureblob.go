package storage

import (
	"context"
	"fmt"
	"io"

	azStorageBlob "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/datatrails/go-datatrails-common/azblob"
	"github.com/datatrails/go-datatrails-common/logger"
)

const (
	azblobBlobNotFound      = "BlobNotFound"
	azblobBlobAlreadyExists = "BlobAlreadyExists"
)

// azureStore is the narrow slice of the azblob storer the blob contract
// needs. *azblob.Storer satisfies it.
type azureStore interface {
	Put(
		ctx context.Context,
		identity string,
		source io.ReadSeekCloser,
		opts ...azblob.Option,
	) (*azblob.WriteResponse, error)
	Reader(
		ctx context.Context,
		identity string,
		opts ...azblob.Option,
	) (*azblob.ReaderResponse, error)
}

// AzureBlob satisfies Blob against an azure blob container (or the azurite
// emulator for development).
//
// Write-once is enforced server side: every Put carries an etag none-match
// wildcard, which is the way to spell 'fail without modifying if the blob
// exists'. Two writers racing the same key lose nothing; exactly one wins and
// the other observes ErrKeyExists.
type AzureBlob struct {
	log    logger.Logger
	store  azureStore
	prefix string
}

// NewAzureBlob wraps store. All keys are stored under the given path prefix,
// which lets several stores share a container.
func NewAzureBlob(log logger.Logger, store azureStore, prefix string) *AzureBlob {
	return &AzureBlob{log: log, store: store, prefix: prefix}
}

func (b *AzureBlob) identity(key string) (string, error) {
	if key == "" {
		return "", ErrKeyEmpty
	}
	return b.prefix + key, nil
}

func (b *AzureBlob) Set(ctx context.Context, key string, value []byte) error {
	identity, err := b.identity(key)
	if err != nil {
		return err
	}
	_, err = b.store.Put(
		ctx, identity, azblob.NewBytesReaderCloser(value),
		azblob.WithEtagNoneMatch("*"),
	)
	if err != nil {
		if isStorageErrorCode(err, azblobBlobAlreadyExists) {
			return fmt.Errorf("%w: %s", ErrKeyExists, key)
		}
		return fmt.Errorf("put blob %s: %w", identity, err)
	}
	b.log.Debugf("azureblob: wrote %s (%d bytes)", identity, len(value))
	return nil
}

func (b *AzureBlob) Get(ctx context.Context, key string) ([]byte, error) {
	identity, err := b.identity(key)
	if err != nil {
		return nil, err
	}
	rr, err := b.store.Reader(ctx, identity)
	if err != nil {
		if isStorageErrorCode(err, azblobBlobNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		}
		return nil, fmt.Errorf("read blob %s: %w", identity, err)
	}
	defer rr.Reader.Close()
	value, err := io.ReadAll(rr.Reader)
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", identity, err)
	}
	return value, nil
}

func (b *AzureBlob) Exists(ctx context.Context, key string) (bool, error) {
	identity, err := b.identity(key)
	if err != nil {
		return false, err
	}
	rr, err := b.store.Reader(ctx, identity)
	if err != nil {
		if isStorageErrorCode(err, azblobBlobNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("read blob %s: %w", identity, err)
	}
	rr.Reader.Close()
	return true, nil
}

// isStorageErrorCode reports whether err is an azure sdk storage error
// carrying the given service error code.
func isStorageErrorCode(err error, code string) bool {
	if err == nil {
		return false
	}
	ierr, ok := err.(*azStorageBlob.InternalError)
	if ierr == nil || !ok {
		return false
	}
	serr := &azStorageBlob.StorageError{}
	if !ierr.As(&serr) {
		return false
	}
	return string(serr.ErrorCode) == code
}
