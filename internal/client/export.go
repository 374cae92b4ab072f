package client

import (
	"errors"
	"fmt"
	"time"
)

// ExportKind selects the file extension of an export.
type ExportKind int

const (
	// ExportNative uses the target language's extension.
	ExportNative ExportKind = iota
	// ExportText always uses .txt.
	ExportText
)

// ErrNothingToExport is returned when the output buffer is empty.
var ErrNothingToExport = errors.New("no converted code to export")

// Export is a local file download of the output buffer.
type Export struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Export formats the current output for download.
func (c *Client) Export(kind ExportKind, now time.Time) (*Export, error) {
	state := c.State()
	if state.TargetCode == "" {
		return nil, ErrNothingToExport
	}

	ext := "txt"
	if kind == ExportNative {
		ext = c.registry.Extension(state.TargetLang)
	}

	return &Export{
		Filename:    fmt.Sprintf("OMNICODE_EXPORT_%d.%s", now.UnixMilli(), ext),
		ContentType: "text/plain",
		Content:     []byte(state.TargetCode),
	}, nil
}
