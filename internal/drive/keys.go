package drive

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateFilename returns a storage-facing name made of a random token and the
// original extension. The original base name never reaches the object store.
func GenerateFilename(originalName string) string {
	return uuid.NewString() + sanitizeExt(filepath.Ext(originalName))
}

func sanitizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if len(ext) < 2 || len(ext) > 16 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

// ObjectKey places filename below owners/{owner}/{yyyy}/{mm}/{dd}/ for the UTC date of at.
func ObjectKey(ownerID, filename string, at time.Time) string {
	at = at.UTC()
	return fmt.Sprintf("owners/%s/%04d/%02d/%02d/%s", ownerID, at.Year(), int(at.Month()), at.Day(), filename)
}

// copyName marks a duplicated file: "invoice.pdf" becomes "invoice (copy).pdf".
func copyName(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if base == "" {
		return name + " (copy)"
	}
	return base + " (copy)" + ext
}
