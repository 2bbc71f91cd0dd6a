package reporter

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"strings"

	"github.com/adoreport/adoreport/azure"
	"github.com/adoreport/adoreport/config"
	"github.com/adoreport/adoreport/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AttachmentUploader uploads the selected artifacts of a published result.
type AttachmentUploader struct {
	logger  zerolog.Logger
	svc     Service
	project string
	types   config.AttachmentTypes
	newID   func() string
}

func NewAttachmentUploader(logger zerolog.Logger, svc Service, project string, types config.AttachmentTypes) *AttachmentUploader {
	return &AttachmentUploader{
		logger:  logger,
		svc:     svc,
		project: project,
		types:   types,
		newID:   func() string { return uuid.New().String() },
	}
}

// Upload sends every attachment of result whose kind is selected to the
// result caseResultID of run runID and returns the URLs of the uploads that
// succeeded. A failing attachment is logged and does not stop the others.
func (u *AttachmentUploader) Upload(ctx context.Context, result model.TestResult, runID, caseResultID int, caseID string) []string {
	u.logger.Info().Str("case", caseID).Msgf("Start upload attachments for test case [%s]", caseID)

	var urls []string
	for _, a := range result.Attachments {
		if !u.types.Has(a.Name) {
			continue
		}
		url, err := u.uploadOne(ctx, a, runID, caseResultID)
		if err != nil {
			u.logger.Error().Err(err).Str("case", caseID).Str("attachment", a.Name).Msg("Failed to upload attachment")
			continue
		}
		if url != "" {
			urls = append(urls, url)
		}
	}
	return urls
}

func (u *AttachmentUploader) uploadOne(ctx context.Context, a model.Attachment, runID, caseResultID int) (string, error) {
	if a.Path == "" {
		return "", fmt.Errorf("attachment %s has no path", a.Name)
	}
	data, err := os.ReadFile(a.Path)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("attachment %s does not exist", a.Path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read attachment: %w", err)
	}

	ref, err := u.svc.UploadAttachment(ctx, azure.TestAttachmentRequestModel{
		AttachmentType: azure.AttachmentTypeGeneral,
		FileName:       fmt.Sprintf("%s-%s.%s", a.Name, u.newID(), extension(a.ContentType)),
		Stream:         base64.StdEncoding.EncodeToString(data),
	}, u.project, runID, caseResultID)
	if err != nil {
		return "", err
	}
	if ref == nil {
		return "", nil
	}
	return ref.URL, nil
}

// extension derives a file extension from the subtype of a content type,
// e.g. "image/png" -> "png", "application/zip" -> "zip".
func extension(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	_, sub, ok := strings.Cut(mediaType, "/")
	if !ok || sub == "" {
		return "bin"
	}
	return sub
}
