package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/motionboard/internal/common"
	"github.com/jinzhu/copier"
)

// ItemData is the type-specific payload of an Item. The set of
// implementations is closed: every variant lives in this package.
type ItemData interface {
	// ItemType returns the item type this payload belongs to.
	ItemType() ItemType

	// BlobRef returns the id of the medium the payload points at, or "".
	BlobRef() string

	withBlobRef(id string) ItemData
	clone() ItemData
}

// VideoPlatform identifies the host of an embedded video.
type VideoPlatform string

const (
	PlatformYouTube VideoPlatform = "youtube"
	PlatformVimeo   VideoPlatform = "vimeo"
	PlatformOther   VideoPlatform = "other"
)

// CodeLanguage is the language of a code snippet.
type CodeLanguage string

const (
	LanguageHTML       CodeLanguage = "html"
	LanguageCSS        CodeLanguage = "css"
	LanguageJavaScript CodeLanguage = "javascript"
	LanguageP5JS       CodeLanguage = "p5js"
)

// VideoEmbedData is an embedded player for a hosted video.
type VideoEmbedData struct {
	URL          string        `json:"url"`
	EmbedURL     string        `json:"embedUrl"`
	Platform     VideoPlatform `json:"platform"`
	Title        string        `json:"title,omitempty"`
	ThumbnailURL string        `json:"thumbnailUrl,omitempty"`
	Duration     float64       `json:"duration,omitempty"`
}

// VideoUploadData is an uploaded video stored as a medium.
type VideoUploadData struct {
	BlobID   string  `json:"blobId"`
	FileName string  `json:"fileName"`
	MimeType string  `json:"mimeType"`
	Duration float64 `json:"duration,omitempty"`
	FileSize int64   `json:"fileSize"`
}

// ImageData is an image either stored as a medium (BlobID) or inline as a
// data URI (URL).
type ImageData struct {
	BlobID   string `json:"blobId,omitempty"`
	URL      string `json:"url,omitempty"`
	FileName string `json:"fileName,omitempty"`
	Caption  string `json:"caption,omitempty"`
}

// LottieData is a Lottie animation.
type LottieData struct {
	BlobID        string          `json:"blobId,omitempty"`
	URL           string          `json:"url,omitempty"`
	AnimationData json.RawMessage `json:"animationData,omitempty"`
	Speed         float64         `json:"speed"`
	FileName      string          `json:"fileName,omitempty"`
}

// RiveData is a Rive animation stored as a medium.
type RiveData struct {
	BlobID             string   `json:"blobId"`
	FileName           string   `json:"fileName"`
	FileSize           int64    `json:"fileSize"`
	StateMachineNames  []string `json:"stateMachineNames,omitempty"`
	ActiveStateMachine string   `json:"activeStateMachine,omitempty"`
	Speed              float64  `json:"speed"`
}

// CodeData is an editable code snippet.
type CodeData struct {
	Language    CodeLanguage `json:"language"`
	Code        string       `json:"code"`
	ShowPreview bool         `json:"showPreview"`
}

// TextData is a free-text note.
type TextData struct {
	Content string `json:"content"`
}

// ColorData is a color swatch.
type ColorData struct {
	Hex   string `json:"hex"`
	Label string `json:"label,omitempty"`
}

func (VideoEmbedData) ItemType() ItemType  { return ItemTypeVideoEmbed }
func (VideoUploadData) ItemType() ItemType { return ItemTypeVideoUpload }
func (ImageData) ItemType() ItemType       { return ItemTypeImage }
func (LottieData) ItemType() ItemType      { return ItemTypeLottie }
func (RiveData) ItemType() ItemType        { return ItemTypeRive }
func (CodeData) ItemType() ItemType        { return ItemTypeCode }
func (TextData) ItemType() ItemType        { return ItemTypeText }
func (ColorData) ItemType() ItemType       { return ItemTypeColor }

func (VideoEmbedData) BlobRef() string    { return "" }
func (d VideoUploadData) BlobRef() string { return d.BlobID }
func (d ImageData) BlobRef() string       { return d.BlobID }
func (d LottieData) BlobRef() string      { return d.BlobID }
func (d RiveData) BlobRef() string        { return d.BlobID }
func (CodeData) BlobRef() string          { return "" }
func (TextData) BlobRef() string          { return "" }
func (ColorData) BlobRef() string         { return "" }

func (d VideoEmbedData) withBlobRef(string) ItemData { return d }
func (d VideoUploadData) withBlobRef(id string) ItemData {
	d.BlobID = id
	return d
}
func (d ImageData) withBlobRef(id string) ItemData {
	d.BlobID = id
	return d
}
func (d LottieData) withBlobRef(id string) ItemData {
	d.BlobID = id
	return d
}
func (d RiveData) withBlobRef(id string) ItemData {
	d.BlobID = id
	return d
}
func (d CodeData) withBlobRef(string) ItemData  { return d }
func (d TextData) withBlobRef(string) ItemData  { return d }
func (d ColorData) withBlobRef(string) ItemData { return d }

// copyRive deep-copies a Rive payload. It is a variable so tests can force
// the fallback path.
var copyRive = func(dst, src *RiveData) error {
	return copier.CopyWithOption(dst, src, copier.Option{DeepCopy: true})
}

func (d VideoEmbedData) clone() ItemData  { return d }
func (d VideoUploadData) clone() ItemData { return d }
func (d ImageData) clone() ItemData       { return d }
func (d CodeData) clone() ItemData        { return d }
func (d TextData) clone() ItemData        { return d }
func (d ColorData) clone() ItemData       { return d }

func (d LottieData) clone() ItemData {
	d.AnimationData = bytes.Clone(d.AnimationData)
	return d
}

func (d RiveData) clone() ItemData {
	var out RiveData
	if err := copyRive(&out, &d); err != nil {
		// StateMachineNames is the only reference field.
		d.StateMachineNames = slices.Clone(d.StateMachineNames)
		return d
	}
	return out
}

// RemapBlob returns data with its blob reference replaced through mapping.
// ok is false when the payload carries a reference that mapping cannot
// resolve; data is then returned unchanged.
func RemapBlob(data ItemData, mapping map[string]string) (out ItemData, ok bool) {
	ref := data.BlobRef()
	if ref == "" {
		return data, true
	}
	newID, found := mapping[ref]
	if !found {
		return data, false
	}
	return data.withBlobRef(newID), true
}

// DecodeItemData decodes a raw payload into the variant selected by t.
func DecodeItemData(t ItemType, raw json.RawMessage) (ItemData, error) {
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}
	switch t {
	case ItemTypeVideoEmbed:
		return decodeAs[VideoEmbedData](raw)
	case ItemTypeVideoUpload:
		return decodeAs[VideoUploadData](raw)
	case ItemTypeImage:
		return decodeAs[ImageData](raw)
	case ItemTypeLottie:
		return decodeAs[LottieData](raw)
	case ItemTypeRive:
		return decodeAs[RiveData](raw)
	case ItemTypeCode:
		return decodeAs[CodeData](raw)
	case ItemTypeText:
		return decodeAs[TextData](raw)
	case ItemTypeColor:
		return decodeAs[ColorData](raw)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", common.ErrInvalidItem, t)
	}
}

func decodeAs[T ItemData](raw json.RawMessage) (ItemData, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidItem, err)
	}
	return v, nil
}

// DataPatch is a partial payload update keyed by JSON field name.
type DataPatch map[string]any

// MergeData shallow-merges patch into data: fields present in the patch
// overwrite, all others are kept. The variant never changes.
func MergeData(data ItemData, patch DataPatch) (ItemData, error) {
	if len(patch) == 0 {
		return data.clone(), nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	for k, v := range patch {
		vb, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s: %v", common.ErrInvalidItem, k, err)
		}
		fields[k] = vb
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	return DecodeItemData(data.ItemType(), merged)
}
