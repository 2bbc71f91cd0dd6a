package reporter

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/adoreport/adoreport/azure"
	"github.com/adoreport/adoreport/config"
	"github.com/adoreport/adoreport/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAttachmentUploader_Upload(t *testing.T) {
	dir := t.TempDir()
	shot := writeFile(t, dir, "shot.png", "png-bytes")
	video := writeFile(t, dir, "video.webm", "webm-bytes")

	svc := newFakeService(4)
	u := NewAttachmentUploader(zerolog.Nop(), svc, "Shop",
		config.NewAttachmentTypes(config.AttachmentScreenshot, config.AttachmentVideo))

	result := model.TestResult{Attachments: []model.Attachment{
		{Name: "screenshot", ContentType: "image/png", Path: shot},
		{Name: "screenshot", ContentType: "image/png", Path: filepath.Join(dir, "gone.png")},
		{Name: "trace", ContentType: "application/zip", Path: shot},
		{Name: "video", ContentType: "video/webm", Path: video},
		{Name: "screenshot", ContentType: "image/png"},
	}}

	urls := u.Upload(context.Background(), result, 77, 100000, "1234")
	require.Len(t, urls, 2)

	uploads := svc.Attachments()
	require.Len(t, uploads, 2)

	name := regexp.MustCompile(`^screenshot-[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.png$`)
	require.Regexp(t, name, uploads[0].FileName)
	require.Equal(t, azure.AttachmentTypeGeneral, uploads[0].AttachmentType)
	require.Equal(t, base64.StdEncoding.EncodeToString([]byte("png-bytes")), uploads[0].Stream)

	require.Regexp(t, `^video-.+\.webm$`, uploads[1].FileName)
	require.Equal(t, "https://example/"+uploads[1].FileName, urls[1])
}

func TestAttachmentUploader_FailureDoesNotStopOthers(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "a.png", "a")
	second := writeFile(t, dir, "b.png", "b")

	svc := newFakeService(4)
	calls := 0
	svc.upload = func(req azure.TestAttachmentRequestModel) (*azure.TestAttachmentReference, error) {
		calls++
		if calls == 1 {
			return nil, errBoom
		}
		return nil, nil
	}

	u := NewAttachmentUploader(zerolog.Nop(), svc, "Shop", config.NewAttachmentTypes(config.AttachmentScreenshot))
	u.newID = func() string { return "fixed" }

	urls := u.Upload(context.Background(), model.TestResult{Attachments: []model.Attachment{
		{Name: "screenshot", ContentType: "image/png", Path: first},
		{Name: "screenshot", ContentType: "image/png", Path: second},
	}}, 77, 1, "5")

	require.Equal(t, []string{"https://example/screenshot-fixed.png"}, urls)
	require.Equal(t, 2, calls)
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"image/png":                 "png",
		"video/webm":                "webm",
		"application/zip":           "zip",
		"text/plain; charset=utf-8": "plain",
		"":                          "bin",
		"garbage":                   "bin",
	}
	for contentType, want := range tests {
		require.Equal(t, want, extension(contentType), contentType)
	}
}
