package service

import "context"

// StorageServiceInterface defines the contract for the external blob store
type StorageServiceInterface interface {
	// Upload stores binaryData under fileName in the named bucket and
	// returns the storage path. upsert=true overwrites a same-named file.
	Upload(ctx context.Context, bucket string, fileName string, binaryData []byte, contentType string, upsert bool) (string, error)
	// PublicURL resolves a storage path to a retrievable URL
	PublicURL(storagePath string) string
}
