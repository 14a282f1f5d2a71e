package service

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/bravo68web/confdash/internal/domain/models"
	"github.com/bravo68web/confdash/internal/domain/service"
	"github.com/bravo68web/confdash/pkg/logger"
)

// ExportResult summarizes a namespace export
type ExportResult struct {
	Namespace string
	Prefix    string
	Files     []string
	Locations []string
	// Revision is set when the storage commits each export as one revision
	Revision string
}

// ExportService copies every file of a namespace into export storage
type ExportService struct {
	storage service.ExportStorage
	now     func() time.Time
	log     *logger.Logger
}

// NewExportService creates an ExportService writing to storage
func NewExportService(storage service.ExportStorage) *ExportService {
	return &ExportService{
		storage: storage,
		now:     time.Now,
		log:     logger.Get().WithFields(logger.Component("export-service")),
	}
}

// Export walks the namespace tree and writes each file under
// <namespace>/<timestamp>/<path>. It stops at the first failure.
func (s *ExportService) Export(ctx context.Context, api *APIService, namespace, email string) (*ExportResult, error) {
	prefix := path.Join(namespace, s.now().UTC().Format("20060102T150405Z"))
	res := &ExportResult{Namespace: namespace, Prefix: prefix}

	var walk func(dir string) error
	walk = func(dir string) error {
		entries, err := api.ListFiles(ctx, namespace, dir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			if e.IsDir() {
				if err := walk(path.Join(dir, e.BaseName())); err != nil {
					return err
				}
				continue
			}
			ref := models.FileRef{Namespace: namespace, Path: dir, Name: e.Name}
			fc, err := api.FetchFile(ctx, ref, email)
			if err != nil {
				return err
			}
			loc, err := s.storage.Put(ctx, path.Join(prefix, ref.FullPath()), []byte(fc.Content))
			if err != nil {
				return fmt.Errorf("export %s: %w", ref.FullPath(), err)
			}
			res.Files = append(res.Files, ref.FullPath())
			res.Locations = append(res.Locations, loc)
		}
		return nil
	}

	if err := walk(""); err != nil {
		return res, err
	}
	if c, ok := s.storage.(service.SnapshotCommitter); ok {
		rev, err := c.Commit(ctx, fmt.Sprintf("Export %s (%d files)", namespace, len(res.Files)), email)
		if err != nil {
			return res, fmt.Errorf("commit export: %w", err)
		}
		res.Revision = rev
	}
	s.log.Info("Namespace exported",
		logger.Namespace(namespace),
		logger.Int("files", len(res.Files)),
		logger.String("storage", s.storage.Type()),
		logger.String("prefix", prefix),
		logger.String("revision", res.Revision),
	)
	return res, nil
}
