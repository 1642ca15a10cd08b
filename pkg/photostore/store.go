// Package photostore persists geo-tag photos. The backend is picked by
// configuration: local disk for development, GCS or MinIO in production.
package photostore

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Store interface {
	// Save writes the object and returns the URL it is served from
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, name string) error
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ObjectName builds a unique object name for a photo of one side of a SAF
func ObjectName(safID, side, fileName string, at time.Time) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		ext = ".jpg"
	}
	slug := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(side), "-"), "-")
	return path.Join("geotag", safID, fmt.Sprintf("%s-%s-%s%s",
		slug, at.Format("20060102-150405"), uuid.NewString()[:8], ext))
}
