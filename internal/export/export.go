// Package export renders a user's transactions as CSV and archives a copy
// in Cloud Storage when a bucket is configured.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	gcsstorage "cloud.google.com/go/storage"
	"github.com/budgetbolt/backend/internal/logger"
	"github.com/budgetbolt/backend/internal/metrics"
	"github.com/budgetbolt/backend/internal/model"
)

// ContentType of every export.
const ContentType = "text/csv"

var header = []string{"Date", "Type", "Category", "Amount", "Currency", "Notes"}

// Result is one finished export.
type Result struct {
	Data        []byte
	Filename    string
	ContentType string
	Rows        int
	// ObjectPath is where the copy was stored, empty when not archived.
	ObjectPath string
}

// Uploader stores an export file.
type Uploader interface {
	Upload(ctx context.Context, path, contentType string, data []byte) error
}

// BucketUploader writes to a Cloud Storage bucket.
type BucketUploader struct {
	bucket *gcsstorage.BucketHandle
}

// NewBucketUploader wraps bucket.
func NewBucketUploader(bucket *gcsstorage.BucketHandle) *BucketUploader {
	return &BucketUploader{bucket: bucket}
}

func (b *BucketUploader) Upload(ctx context.Context, path, contentType string, data []byte) error {
	w := b.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}
	return nil
}

// Exporter builds CSV exports. A nil uploader disables archiving.
type Exporter struct {
	uploader Uploader
	now      func() time.Time
}

// New creates an Exporter.
func New(u Uploader) *Exporter {
	return &Exporter{uploader: u, now: time.Now}
}

// Export renders txs newest first. Archiving failures are logged and the
// export is still returned inline.
func (e *Exporter) Export(ctx context.Context, uid string, txs []model.Transaction) (*Result, error) {
	data, rows, err := render(txs)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Data:        data,
		Filename:    fmt.Sprintf("budgetbolt-transactions-%s.csv", e.now().UTC().Format("2006-01-02")),
		ContentType: ContentType,
		Rows:        rows,
	}

	if e.uploader == nil {
		return res, nil
	}

	path := fmt.Sprintf("exports/%s/%d-%s", uid, e.now().Unix(), res.Filename)
	log := logger.Component("export").With().Str("user", logger.HashUserID(uid)).Int("rows", rows).Logger()
	if err := e.uploader.Upload(ctx, path, ContentType, data); err != nil {
		log.Warn().Err(err).Msg("failed to archive export")
		return res, nil
	}
	res.ObjectPath = path
	log.Info().Msg("export archived")
	return res, nil
}

func render(txs []model.Transaction) ([]byte, int, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, 0, fmt.Errorf("failed to write header: %w", err)
	}

	sorted := metrics.SortByDateDesc(txs)
	for _, tx := range sorted {
		row := []string{
			tx.Date,
			string(tx.Type),
			tx.Category,
			strconv.FormatFloat(tx.Amount, 'f', 2, 64),
			string(tx.Currency),
			tx.Notes,
		}
		if err := w.Write(row); err != nil {
			return nil, 0, fmt.Errorf("failed to write row %s: %w", tx.ID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, 0, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), len(sorted), nil
}
