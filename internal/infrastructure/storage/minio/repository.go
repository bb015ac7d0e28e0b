package minio

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseWise/pkg/errors"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

const (
	documentPrefix = "documents"
	reportPrefix   = "reports"

	contentTypeText = "text/plain; charset=utf-8"
	contentTypeJSON = "application/json"
)

var (
	ErrObjectNotFound = errors.New(errors.ErrCodeNotFound, "object not found")
	ErrInvalidRequest = errors.New(errors.ErrCodeBadRequest, "invalid archive request")
)

// Archive stores source text and finished reports as objects:
//
//	documents/<document-id>.txt
//	reports/<report-id>.json
type Archive interface {
	PutDocument(ctx context.Context, doc legal.Document) (string, error)
	GetDocument(ctx context.Context, documentID string) (string, error)
	PutReport(ctx context.Context, r *legal.AnalysisReport) (string, error)
	GetReport(ctx context.Context, reportID string) (*legal.AnalysisReport, error)
	Delete(ctx context.Context, reportID, documentID string) error
	HealthCheck(ctx context.Context) error
}

type minioArchive struct {
	client *Client
	logger logging.Logger
}

func NewArchive(client *Client, log logging.Logger) Archive {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &minioArchive{client: client, logger: log}
}

func DocumentKey(documentID string) string {
	return path.Join(documentPrefix, documentID+".txt")
}

func ReportKey(reportID string) string {
	return path.Join(reportPrefix, reportID+".json")
}

func (a *minioArchive) PutDocument(ctx context.Context, doc legal.Document) (string, error) {
	if doc.ID == "" {
		return "", ErrInvalidRequest
	}
	key := DocumentKey(doc.ID)
	meta := map[string]string{
		"filename":     doc.Filename,
		"content-hash": doc.ContentHash(),
	}
	if err := a.put(ctx, key, []byte(doc.RawText), contentTypeText, meta); err != nil {
		return "", err
	}
	return key, nil
}

func (a *minioArchive) GetDocument(ctx context.Context, documentID string) (string, error) {
	data, err := a.get(ctx, DocumentKey(documentID))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (a *minioArchive) PutReport(ctx context.Context, r *legal.AnalysisReport) (string, error) {
	if r == nil || r.ID == "" {
		return "", ErrInvalidRequest
	}
	data, err := json.Marshal(r)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode report")
	}
	key := ReportKey(r.ID)
	if err := a.put(ctx, key, data, contentTypeJSON, map[string]string{"document-id": r.DocumentID}); err != nil {
		return "", err
	}
	return key, nil
}

func (a *minioArchive) GetReport(ctx context.Context, reportID string) (*legal.AnalysisReport, error) {
	data, err := a.get(ctx, ReportKey(reportID))
	if err != nil {
		return nil, err
	}
	var r legal.AnalysisReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode archived report")
	}
	return &r, nil
}

// Delete removes the report object and, when documentID is set, the source
// text. Missing objects are not an error.
func (a *minioArchive) Delete(ctx context.Context, reportID, documentID string) error {
	keys := []string{ReportKey(reportID)}
	if documentID != "" {
		keys = append(keys, DocumentKey(documentID))
	}
	for _, key := range keys {
		err := a.client.api.RemoveObject(ctx, a.client.bucket, key, minio.RemoveObjectOptions{})
		if err != nil && !isNoSuchKey(err) {
			return errors.Wrap(err, errors.ErrCodeInternal, "failed to delete "+key)
		}
	}
	return nil
}

func (a *minioArchive) HealthCheck(ctx context.Context) error {
	return a.client.HealthCheck(ctx)
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func (a *minioArchive) put(ctx context.Context, key string, data []byte, contentType string, meta map[string]string) error {
	if a.client.isClosed() {
		return ErrClientClosed
	}
	opts := minio.PutObjectOptions{ContentType: contentType, UserMetadata: meta}
	info, err := a.client.api.PutObject(ctx, a.client.bucket, key, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "upload failed").WithDetail(key)
	}
	a.logger.Debug("Object stored",
		logging.String("key", key),
		logging.Int64("size", info.Size))
	return nil
}

func (a *minioArchive) get(ctx context.Context, key string) ([]byte, error) {
	if a.client.isClosed() {
		return nil, ErrClientClosed
	}
	obj, err := a.client.api.GetObject(ctx, a.client.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, ErrObjectNotFound
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "download failed").WithDetail(key)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "download failed").WithDetail(key)
	}
	return data, nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

//Personal.AI order the ending
