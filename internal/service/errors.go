// Package service implements the application's workflows on top of the
// repository and storage layers.
package service

import (
	"context"
	"errors"
	"log/slog"

	"lumen/internal/middleware"
	"lumen/internal/models"
	"lumen/internal/observability"
	"lumen/internal/repository"
	"lumen/internal/storage"

	"gorm.io/gorm"
)

// classify is the single boundary where raw store errors become application
// errors. Repositories and the blob store return their native errors; every
// service method passes them through here (or through one of the workflow
// wrappers below) exactly once.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, storage.ErrBlobNotFound):
		return &models.AppError{Code: models.CodeNotFound, Message: "Record not found", Err: err}
	case errors.Is(err, storage.ErrInvalidImage), errors.Is(err, storage.ErrBlobTooLarge):
		return &models.AppError{Code: models.CodeInvalidArgument, Message: err.Error(), Err: err}
	case repository.IsUniqueViolation(err):
		return &models.AppError{Code: models.CodeInvalidArgument, Message: "Record already exists", Err: err}
	default:
		return models.NewBackendFailure(err)
	}
}

// classifyUpload wraps blob store errors from the upload/preview step.
// Validation failures keep their InvalidArgument code; everything else
// becomes an UploadFailure.
func classifyUpload(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrInvalidImage) || errors.Is(err, storage.ErrBlobTooLarge) {
		return classify(err)
	}
	return models.NewUploadFailure(err)
}

// classifyPersist wraps document store errors from the persistence step of a
// content workflow.
func classifyPersist(err error) error {
	if err == nil {
		return nil
	}
	return models.NewPersistFailure(err)
}

// compensateDelete removes an uploaded blob after a later workflow step
// failed. Best-effort: a failed delete is logged and counted, never returned,
// so the original error is what the caller sees.
func compensateDelete(ctx context.Context, blobs storage.BlobStore, workflow, blobID string) {
	if blobID == "" {
		return
	}
	if err := blobs.Delete(ctx, blobID); err != nil {
		observability.CompensationFailures.WithLabelValues(workflow).Inc()
		middleware.Logger.ErrorContext(ctx, "compensating blob delete failed",
			slog.String("workflow", workflow),
			slog.String("blob_id", blobID),
			slog.String("error", err.Error()),
		)
	}
}
