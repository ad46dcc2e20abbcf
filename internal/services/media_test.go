package services

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"testing"

	"inkwell/internal/blob"
	"inkwell/internal/config"

	"github.com/rs/zerolog"
)

type blobCall struct {
	op     string
	bucket string
	path   string
}

// fakeBlob records calls and returns scripted errors per operation.
type fakeBlob struct {
	calls     []blobCall
	uploadErr error
	removeErr error
}

func (f *fakeBlob) Upload(bucket, path string, data []byte, contentType string) error {
	f.calls = append(f.calls, blobCall{op: "upload", bucket: bucket, path: path})
	return f.uploadErr
}

func (f *fakeBlob) Remove(bucket string, paths []string) error {
	path := ""
	if len(paths) > 0 {
		path = paths[0]
	}
	f.calls = append(f.calls, blobCall{op: "remove", bucket: bucket, path: path})
	return f.removeErr
}

func (f *fakeBlob) PublicURL(bucket, path string) string {
	return "https://cdn.example.com/" + bucket + "/" + path
}

func uploadConfig() config.UploadConfig {
	return config.UploadConfig{
		MaxSize:         5 * 1024 * 1024,
		AvatarBucket:    "avatars",
		ThumbnailBucket: "thumbnails",
		AvatarFolder:    "profile-pictures",
		ThumbnailFolder: "thumbnail-pictures",
	}
}

func pngUpload(size int) Upload {
	return Upload{
		Name:        "photo.PNG",
		Size:        int64(size),
		ContentType: "image/png",
		Reader:      bytes.NewReader(make([]byte, size)),
	}
}

func permissionDenied() error {
	return &blob.Error{Kind: blob.KindPermissionDenied, Status: http.StatusForbidden, Message: "new row violates row-level security policy"}
}

func TestUploadRejectsOversizeBeforeAnyCall(t *testing.T) {
	fb := &fakeBlob{}
	m := NewMedia(fb, nil, uploadConfig(), zerolog.Nop())

	_, err := m.UploadProfilePicture(pngUpload(6*1024*1024), "")
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("err = %v, want ErrFileTooLarge", err)
	}
	if len(fb.calls) != 0 {
		t.Errorf("blob store was called %d times for a rejected upload", len(fb.calls))
	}
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	fb := &fakeBlob{}
	m := NewMedia(fb, nil, uploadConfig(), zerolog.Nop())

	up := pngUpload(100)
	up.ContentType = "image/bmp"
	_, err := m.UploadArticleImage(up)
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("err = %v, want ErrUnsupportedType", err)
	}
	if len(fb.calls) != 0 {
		t.Errorf("blob store was called %d times for a rejected upload", len(fb.calls))
	}
}

func TestUploadProfilePictureSuccess(t *testing.T) {
	fb := &fakeBlob{}
	m := NewMedia(fb, nil, uploadConfig(), zerolog.Nop())

	url, err := m.UploadProfilePicture(pngUpload(1024), "")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.Contains(url, "/avatars/profile-pictures/") {
		t.Errorf("url = %q, want avatar bucket path", url)
	}
	if !strings.HasSuffix(url, ".png") {
		t.Errorf("url = %q, want lowercased extension", url)
	}
	if len(fb.calls) != 1 || fb.calls[0].op != "upload" {
		t.Fatalf("calls = %v, want one upload", fb.calls)
	}
}

func TestUploadRetriesWithElevatedCredential(t *testing.T) {
	anon := &fakeBlob{uploadErr: permissionDenied()}
	elevated := &fakeBlob{}
	m := NewMedia(anon, elevated, uploadConfig(), zerolog.Nop())

	url, err := m.UploadArticleImage(pngUpload(1024))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url == "" {
		t.Error("expected a public URL after the elevated retry")
	}
	if len(anon.calls) != 1 {
		t.Errorf("anon calls = %d, want 1", len(anon.calls))
	}
	if len(elevated.calls) != 1 || elevated.calls[0].bucket != "thumbnails" {
		t.Errorf("elevated calls = %v, want one thumbnail upload", elevated.calls)
	}
}

func TestUploadPermissionDeniedWithoutElevated(t *testing.T) {
	anon := &fakeBlob{uploadErr: permissionDenied()}
	m := NewMedia(anon, nil, uploadConfig(), zerolog.Nop())

	_, err := m.UploadArticleImage(pngUpload(1024))
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "service role") {
		t.Errorf("err = %q, want service-role hint", err)
	}
}

func TestUploadBucketMissingMessageNamesBucket(t *testing.T) {
	anon := &fakeBlob{uploadErr: &blob.Error{Kind: blob.KindBucketNotFound, Status: http.StatusNotFound, Message: "bucket not found"}}
	m := NewMedia(anon, nil, uploadConfig(), zerolog.Nop())

	_, err := m.UploadProfilePicture(pngUpload(1024), "")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "avatars") {
		t.Errorf("err = %q, want the bucket name", err)
	}
}

func TestPreviousAvatarDeleteIsBestEffort(t *testing.T) {
	fb := &fakeBlob{removeErr: errors.New("boom")}
	m := NewMedia(fb, nil, uploadConfig(), zerolog.Nop())

	url, err := m.UploadProfilePicture(pngUpload(1024), "https://cdn.example.com/avatars/profile-pictures/old.png")
	if err != nil {
		t.Fatalf("upload blocked by delete failure: %v", err)
	}
	if url == "" {
		t.Error("expected a public URL")
	}

	if len(fb.calls) != 2 {
		t.Fatalf("calls = %v, want remove then upload", fb.calls)
	}
	if fb.calls[0].op != "remove" || fb.calls[0].path != "profile-pictures/old.png" {
		t.Errorf("first call = %v, want remove of the previous avatar", fb.calls[0])
	}
	if fb.calls[1].op != "upload" {
		t.Errorf("second call = %v, want upload", fb.calls[1])
	}
}

func TestPreviousAvatarDeleteRetriesElevated(t *testing.T) {
	anon := &fakeBlob{removeErr: permissionDenied()}
	elevated := &fakeBlob{}
	m := NewMedia(anon, elevated, uploadConfig(), zerolog.Nop())

	if _, err := m.UploadProfilePicture(pngUpload(1024), "https://cdn.example.com/avatars/profile-pictures/old.png"); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(elevated.calls) != 1 || elevated.calls[0].op != "remove" {
		t.Errorf("elevated calls = %v, want one remove", elevated.calls)
	}
}
