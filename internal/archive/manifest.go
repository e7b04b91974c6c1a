package archive

import "github.com/dmitrijs2005/motionboard/internal/models"

// FormatVersion is the manifest version written by Export and the only
// version Import accepts.
const FormatVersion = 1

const (
	manifestName = "manifest.json"
	mediaDir     = "media/"
)

// MediaRef describes one archived medium. Size and Checksum are optional
// on read; when Checksum is present the entry bytes must match it.
type MediaRef struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size,omitempty"`
	Checksum string `json:"checksum,omitempty"`
}

// Manifest is the archive's manifest.json.
type Manifest struct {
	Version    int             `json:"version"`
	Name       string          `json:"name"`
	CreatedAt  string          `json:"createdAt"`
	UpdatedAt  string          `json:"updatedAt"`
	Viewport   models.Viewport `json:"viewport"`
	Items      []models.Item   `json:"items"`
	Groups     []models.Group  `json:"groups"`
	MediaFiles []MediaRef      `json:"mediaFiles"`
}

func mediaPath(id string) string {
	return mediaDir + id
}
