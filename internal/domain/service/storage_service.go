package service

import "context"

// ExportStorage is the sink namespace exports are written to
type ExportStorage interface {
	// Put writes data under key and returns a location a human can follow
	Put(ctx context.Context, key string, data []byte) (string, error)

	// Type returns the backend name (filesystem, s3)
	Type() string
}

// SnapshotCommitter is implemented by storages that group the files of one
// export into a single revision
type SnapshotCommitter interface {
	// Commit records everything Put since the last commit and returns the revision id.
	// It returns an empty id when nothing changed.
	Commit(ctx context.Context, message, email string) (string, error)
}
