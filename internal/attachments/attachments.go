// Package attachments loads files destined for generation calls.
package attachments

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/weft-dev/weft/internal/core"
)

// MaxAttachmentSizeBytes limits each attachment size.
// Keep in sync with frontend hints.
const MaxAttachmentSizeBytes = 50 * 1024 * 1024 // 50MB

// LoadFile reads a file into an attachment. The media type comes from the
// extension, with content sniffing as fallback.
func LoadFile(path string) (core.Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return core.Attachment{}, fmt.Errorf("reading attachment: %w", err)
	}
	if info.Size() > MaxAttachmentSizeBytes {
		return core.Attachment{}, fmt.Errorf("attachment %s exceeds %d bytes", path, MaxAttachmentSizeBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return core.Attachment{}, fmt.Errorf("reading attachment: %w", err)
	}

	mediaType := mime.TypeByExtension(filepath.Ext(path))
	if mediaType == "" {
		mediaType = http.DetectContentType(data)
	}

	return core.Attachment{
		Name:      filepath.Base(path),
		MediaType: mediaType,
		Data:      data,
	}, nil
}

// LoadFiles reads several files, failing on the first bad one.
func LoadFiles(paths []string) ([]core.Attachment, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	out := make([]core.Attachment, 0, len(paths))
	for _, p := range paths {
		a, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
