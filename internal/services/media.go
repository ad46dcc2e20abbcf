package services

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"inkwell/internal/blob"
	"inkwell/internal/config"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrFileTooLarge rejects uploads over the configured limit before any
// network call.
var ErrFileTooLarge = errors.New("image is too large, the limit is 5 MB")

// ErrUnsupportedType rejects non-image uploads before any network call.
var ErrUnsupportedType = errors.New("only JPEG, PNG, GIF and WebP images are allowed")

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Upload describes one incoming file.
type Upload struct {
	Name        string
	Size        int64
	ContentType string
	Reader      io.Reader
}

// BlobAPI is the slice of the blob client the media service uses.
type BlobAPI interface {
	Upload(bucket, path string, data []byte, contentType string) error
	Remove(bucket string, paths []string) error
	PublicURL(bucket, path string) string
}

// Media orchestrates image uploads: validate, name, upload on the normal
// credential, retry once on the elevated credential when policy denies, map
// store errors to user-facing messages.
type Media struct {
	blob     BlobAPI
	elevated BlobAPI // nil when no service-role key is configured
	cfg      config.UploadConfig
	log      zerolog.Logger
}

func NewMedia(anon, elevated BlobAPI, cfg config.UploadConfig, log zerolog.Logger) *Media {
	return &Media{blob: anon, elevated: elevated, cfg: cfg, log: log}
}

// UploadProfilePicture replaces a user's avatar. The previous image is
// deleted best-effort first; its failure never blocks the new upload.
func (m *Media) UploadProfilePicture(up Upload, previousURL string) (string, error) {
	data, err := m.validate(up)
	if err != nil {
		return "", err
	}

	if previousURL != "" {
		m.deletePrevious(previousURL)
	}

	return m.store(m.cfg.AvatarBucket, m.cfg.AvatarFolder, up, data)
}

// UploadArticleImage stores an article thumbnail. Same flow as avatars,
// different namespace, no previous-image cleanup.
func (m *Media) UploadArticleImage(up Upload) (string, error) {
	data, err := m.validate(up)
	if err != nil {
		return "", err
	}
	return m.store(m.cfg.ThumbnailBucket, m.cfg.ThumbnailFolder, up, data)
}

// validate enforces type and size limits, then reads the file. Both checks
// happen before any byte leaves the process.
func (m *Media) validate(up Upload) ([]byte, error) {
	if !allowedImageTypes[strings.ToLower(up.ContentType)] {
		return nil, ErrUnsupportedType
	}
	if up.Size > m.cfg.MaxSize {
		return nil, ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(up.Reader, m.cfg.MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > m.cfg.MaxSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

func (m *Media) store(bucket, folder string, up Upload, data []byte) (string, error) {
	path := folder + "/" + uniqueName(up.Name)

	err := m.blob.Upload(bucket, path, data, up.ContentType)
	if blob.IsPermissionDenied(err) && m.elevated != nil {
		m.log.Warn().Str("path", path).Msg("storage policy denied upload, retrying with service role")
		err = m.elevated.Upload(bucket, path, data, up.ContentType)
	}
	if err != nil {
		m.log.Error().Err(err).Str("bucket", bucket).Str("path", path).Msg("image upload failed")
		return "", friendlyUploadError(err, bucket)
	}

	return m.blob.PublicURL(bucket, path), nil
}

// deletePrevious removes the old avatar referenced by a public URL.
// Best-effort: failures are logged and the new upload proceeds regardless.
func (m *Media) deletePrevious(previousURL string) {
	parts := strings.Split(previousURL, "/")
	fileName := parts[len(parts)-1]
	if fileName == "" {
		return
	}
	path := m.cfg.AvatarFolder + "/" + fileName

	err := m.blob.Remove(m.cfg.AvatarBucket, []string{path})
	if blob.IsPermissionDenied(err) && m.elevated != nil {
		err = m.elevated.Remove(m.cfg.AvatarBucket, []string{path})
	}
	if err != nil {
		m.log.Warn().Err(err).Str("path", path).Msg("failed to delete previous profile picture")
	}
}

// uniqueName builds a collision-resistant filename keeping the original
// extension.
func uniqueName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), suffix, ext)
}

// friendlyUploadError maps classified store failures to actionable messages;
// unclassified errors pass their message through.
func friendlyUploadError(err error, bucket string) error {
	switch {
	case blob.IsBucketNotFound(err):
		return fmt.Errorf("the %q bucket does not exist, create it in your storage dashboard", bucket)
	case blob.IsPermissionDenied(err):
		return errors.New("permission denied, configure a service role key for storage access")
	case blob.IsPayloadTooLarge(err):
		return errors.New("file is too large, please choose a smaller image")
	default:
		return err
	}
}
