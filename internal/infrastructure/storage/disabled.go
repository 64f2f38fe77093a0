package storage

import (
	"context"
	"io"
	"time"

	"github.com/avocado/teamhub/internal/domain/course"
	"github.com/avocado/teamhub/internal/domain/shared"
)

// DisabledFileStore is used when storage is not configured.
// Every operation fails with STORAGE_UNAVAILABLE.
type DisabledFileStore struct{}

var _ course.FileStore = DisabledFileStore{}

func (DisabledFileStore) Upload(context.Context, string, string, io.Reader, int64) error {
	return shared.ErrStorageUnavailable
}

func (DisabledFileStore) Delete(context.Context, string) error {
	return shared.ErrStorageUnavailable
}

func (DisabledFileStore) PresignDownload(context.Context, string) (string, time.Time, error) {
	return "", time.Time{}, shared.ErrStorageUnavailable
}
