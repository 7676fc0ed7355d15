package store

import "strings"

// FolderQuery filters owner folders. ParentID is only applied when ByParent is set,
// so a nil ParentID with ByParent selects root-level folders.
type FolderQuery struct {
	OwnerID  string
	ByParent bool
	ParentID *string
	Name     string

	Limit  int
	Offset int
}

// FileQuery filters owner files. FolderID follows the same rules as FolderQuery.ParentID.
type FileQuery struct {
	OwnerID   string
	Search    string
	MimeType  string
	MimeTypes []string
	ByFolder  bool
	FolderID  *string

	Sort   string
	Desc   bool
	Limit  int
	Offset int
}

// MimeUsage is the per mime type aggregate of an owner's files.
type MimeUsage struct {
	MimeType string
	Count    int64
	Size     int64
}

var fileSortColumns = map[string]string{
	"name":          "original_name",
	"original_name": "original_name",
	"size":          "size",
	"mime_type":     "mime_type",
	"created_at":    "created_at",
	"updated_at":    "updated_at",
	"originalname":  "original_name",
	"mimetype":      "mime_type",
	"createdat":     "created_at",
	"updatedat":     "updated_at",
}

// FileSortColumn resolves a sort key to its column; ok is false for unknown keys.
func FileSortColumn(sort string) (string, bool) {
	if sort == "" {
		return "created_at", true
	}
	column, ok := fileSortColumns[strings.ToLower(sort)]
	return column, ok
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a lower-cased LIKE pattern for a literal substring.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

func prefixPattern(s string) string {
	return likeEscaper.Replace(strings.ToLower(s)) + "%"
}
