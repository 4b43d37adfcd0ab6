package storage

import "errors"

var (
	ErrKeyEmpty    = errors.New("blob key cannot be empty")
	ErrKeyInvalid  = errors.New("blob key contains characters not valid for this store")
	ErrKeyExists   = errors.New("blob key has already been written")
	ErrKeyNotFound = errors.New("blob key not found")
)
