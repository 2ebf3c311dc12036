package ports

import "context"

// MediaUploader pushes a local file to the hosted media store and returns
// its public URL. The local file is removed when the upload fails.
type MediaUploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}
