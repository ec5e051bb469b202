package workflow

import (
	"context"
	"fmt"

	"github.com/gabe/rcbt/internal/models"
	"github.com/gabe/rcbt/internal/progress"
	"github.com/gabe/rcbt/internal/validator"
)

// Upload sends the four selected files. The file set is replaced only when
// the server confirms all four references; any failure leaves it unchanged.
func (c *Controller) Upload(ctx context.Context, sel models.Selection) (models.UploadedFileSet, error) {
	prev, err := c.begin(Uploading)
	if err != nil {
		return nil, err
	}

	if err := c.checkSelection(sel); err != nil {
		c.update(func() { c.state = prev })
		return nil, err
	}

	// begin serializes global actions, so only a pending Recover can race us
	c.mu.Lock()
	c.seq.next(opFiles)
	c.mu.Unlock()

	run := c.progress.Start(progress.Global, "Uploading files...", 20)
	c.log.Info("Starting file upload")

	files, err := c.api.Upload(ctx, sel)
	if err == nil && !files.Complete() {
		err = fmt.Errorf("server returned %d of %d file references", len(files), len(models.Slots))
	}

	if err != nil {
		c.log.Error("Upload failed: %v", err)
		c.progress.ClearRun(progress.Global, run)
		c.update(func() { c.state = prev })
		return nil, err
	}

	c.update(func() {
		c.files = files.Clone()
		// Targets are derived from the previous files
		c.available = nil
		c.detour = nil
		c.state = Idle
	})
	c.log.Success("All files uploaded successfully")
	c.progress.Set(progress.Global, "Files uploaded", 50)
	c.clearLater(progress.Global, run, c.opts.ClearDelay)
	return files.Clone(), nil
}

// checkSelection applies the local precondition: every slot selected and valid
func (c *Controller) checkSelection(sel models.Selection) error {
	for _, slot := range models.Slots {
		if _, ok := sel[slot]; !ok {
			err := &validator.Error{Slot: slot, Err: validator.ErrMissingFile}
			c.log.Error("Please select the file: %s", slot.FieldName())
			return err
		}
	}
	if c.validator == nil {
		return nil
	}
	for _, slot := range models.Slots {
		f := sel[slot]
		if !c.validator.Validate(sel, slot) {
			return c.validator.Check(slot, f)
		}
	}
	return nil
}
