package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/phrazzld/taskroster-api/internal/platform/logger"
	"github.com/spf13/afero"
)

var (
	// ErrUnsupportedType is returned when the content is not an accepted image.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrTooLarge is returned when the content exceeds the size limit.
	ErrTooLarge = errors.New("file too large")

	// ErrEmptyFile is returned when no content was supplied.
	ErrEmptyFile = errors.New("file is empty")
)

// sniffLen is how many leading bytes are used to detect the content type.
const sniffLen = 3072

// allowedTypes maps accepted MIME types to the extension used on disk.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/heic": ".heic",
	"image/heif": ".heif",
}

// File is an uploaded file as received from the client.
type File struct {
	Name   string
	Reader io.Reader
}

// Store writes completion images under a base directory.
type Store struct {
	fs       afero.Fs
	dir      string
	maxBytes int64
	timeFunc func() time.Time
	logger   *slog.Logger
}

// NewStore creates a Store writing to dir on fs. Files larger than maxBytes are rejected.
func NewStore(fs afero.Fs, dir string, maxBytes int64, logger *slog.Logger) (*Store, error) {
	if err := fs.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &Store{
		fs:       fs,
		dir:      dir,
		maxBytes: maxBytes,
		timeFunc: time.Now,
		logger:   logger.With("component", "upload_store"),
	}, nil
}

// Save validates f and writes it as task_{taskID}_{userID}_{unixNano}{ext},
// returning the stored path.
func (s *Store) Save(ctx context.Context, taskID, userID uuid.UUID, f File) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// One byte past the limit is enough to detect an oversized upload.
	data, err := io.ReadAll(io.LimitReader(f.Reader, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	if int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, s.maxBytes)
	}

	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	mtype := mimetype.Detect(head)
	ext, ok := extensionFor(mtype)
	if !ok {
		log.Debug("rejected upload",
			"detected_type", mtype.String(),
			"client_name", filepath.Base(f.Name))
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mtype.String())
	}

	name := fmt.Sprintf("task_%s_%s_%d%s", taskID, userID, s.timeFunc().UnixNano(), ext)
	path := filepath.Join(s.dir, name)

	if err := afero.WriteReader(s.fs, path, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	log.Info("stored completion image",
		"task_id", taskID,
		"path", path,
		"content_type", mtype.String(),
		"size", len(data))
	return path, nil
}

// Remove deletes a previously stored file. A missing file is not an error.
func (s *Store) Remove(path string) error {
	if err := s.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove upload %s: %w", path, err)
	}
	return nil
}

func extensionFor(m *mimetype.MIME) (string, bool) {
	for ; m != nil; m = m.Parent() {
		if ext, ok := allowedTypes[m.String()]; ok {
			return ext, true
		}
	}
	return "", false
}
