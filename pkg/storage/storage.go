package storage

import "context"

// Object key prefixes of the files the service stores.
const (
	PrefixPoster       = "posters"
	PrefixPaymentProof = "proofs"
)

type Storage interface {
	// BulkUpload stores every object or fails as a whole. Responses keep the
	// order of objects.
	BulkUpload(context.Context, []*UploadObject) ([]*UploadResponse, error)
}

type UploadObject struct {
	// Bucket overrides the configured bucket when set.
	Bucket      string
	Prefix      string
	FileName    string
	ContentType string
	Data        []byte
}

type UploadResponse struct {
	Url      string
	FileName string
}
