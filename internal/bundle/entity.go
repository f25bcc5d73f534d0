// AngelaMos | 2026
// entity.go

package bundle

import (
	"time"
)

// Bundle is a purchasable unit. Rows are owned by an external catalog
// process; this service only ever reads them.
type Bundle struct {
	ID          string    `db:"id"           json:"id"`
	Title       string    `db:"title"        json:"title"`
	Description string    `db:"description"  json:"description"`
	Price       float64   `db:"price"        json:"price"`
	MetadataURL string    `db:"metadata_url" json:"metadata_url"`
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
}

// Metadata lives as a JSON object in object storage, pointed to by the
// bundle's metadata_url. It is fetched per request, never cached.
type Metadata struct {
	Files        []File `json:"files"`
	PreviewImage string `json:"preview_image,omitempty"`
	Composer     string `json:"composer,omitempty"`
	Genre        string `json:"genre,omitempty"`
	Difficulty   string `json:"difficulty,omitempty"`
}

type File struct {
	Key       string `json:"key"`
	Filename  string `json:"filename"`
	Type      string `json:"type"`
	SizeBytes int64  `json:"size_bytes"`
}

const (
	FileTypePDF      = "pdf"
	FileTypeMusicXML = "musicxml"
	FileTypeJSON     = "json"
)

// FindFile returns the file with the exact key, or nil. No fuzzy matching.
func (m *Metadata) FindFile(key string) *File {
	for i := range m.Files {
		if m.Files[i].Key == key {
			return &m.Files[i]
		}
	}
	return nil
}
