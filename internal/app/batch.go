package app

import (
	"context"
	"fmt"
	"io"

	"github.com/edumetric-labs/edumetric/pkg/core"
)

var uploadFailure = failure{
	app:     func(msg string) string { return "ERROR: Upload failed: " + withDefault(msg, "Unknown error") },
	network: "ERROR: Upload failed due to network error.",
}

// UploadMessage is the success text for an upload result.
func UploadMessage(mode core.UploadMode, r core.UploadResult) string {
	if mode == core.UploadNormalize {
		return fmt.Sprintf("SUCCESS: Normalization Complete! Added %d new students, updated %d existing students.", r.Added, r.Updated)
	}
	return fmt.Sprintf("SUCCESS: Analytics Processing Complete! Processed %d records.", r.ProcessedRows)
}

// UploadBatch sends a spreadsheet to the server. Dashboard statistics are
// refreshed afterwards.
func (c *Controller) UploadBatch(ctx context.Context, filename string, r io.Reader, mode core.UploadMode) (*core.UploadResult, error) {
	if _, ok := core.ParseUploadMode(string(mode)); !ok {
		return nil, c.invalid(&core.ValidationError{Field: "mode", Message: fmt.Sprintf("must be normalize or analytics, got %q", mode)})
	}
	if filename == "" {
		return nil, c.invalid(&core.ValidationError{Field: "file", Message: "Please select a file first."})
	}

	message := "Processing analytics..."
	if mode == core.UploadNormalize {
		message = "Normalizing data and generating predictions..."
	}
	tok, h := c.begin(slotUpload, message)
	defer h.Release()

	res, err := c.api.BatchUpload(ctx, filename, r, mode)
	if err != nil {
		return nil, c.failed(slotUpload, tok, err, uploadFailure)
	}
	if err := c.settle(slotUpload, tok, func(d *data) {
		d.upload = &UploadView{Filename: filename, Mode: mode, Result: *res}
	}); err != nil {
		return nil, err
	}
	c.raise(Notice{Kind: NoticeSuccess, Message: UploadMessage(mode, *res)})

	c.refreshStats(ctx)
	return res, nil
}

// LoadPreview fetches the analytics dashboard shown after uploads.
func (c *Controller) LoadPreview(ctx context.Context) (*core.AnalyticsPreview, error) {
	tok, h := c.begin(slotPreview, "Loading analytics dashboard...")
	defer h.Release()

	res, err := c.api.AnalyticsPreview(ctx)
	if err != nil {
		return nil, c.failed(slotPreview, tok, err, failure{
			fallback: "No analytics data available",
			network:  "Failed to load analytics dashboard.",
		})
	}
	return res, c.settle(slotPreview, tok, func(d *data) { d.preview = res })
}

// refreshStats reloads the header numbers without raising a notice.
func (c *Controller) refreshStats(ctx context.Context) {
	tok := c.tokens.Issue(slotStats)
	st, err := c.api.Stats(ctx)
	if err != nil {
		c.logger.Debug("stats refresh failed", "error", err)
		return
	}
	_ = c.settle(slotStats, tok, func(d *data) { d.stats = st })
}
