// Package classify decides which kind of board item a dropped file or a
// pasted link becomes and builds the matching item payload.
package classify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/dmitrijs2005/motionboard/internal/models"
	"github.com/h2non/filetype"
)

// ErrUnsupportedFile is returned for files that map to no item type.
var ErrUnsupportedFile = errors.New("unsupported file")

// Kind is the item category a file falls into.
type Kind int

const (
	KindUnknown Kind = iota
	KindImage
	KindVideo
	KindLottie
	KindRive
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	case KindLottie:
		return "lottie"
	case KindRive:
		return "rive"
	default:
		return "unknown"
	}
}

var (
	imageMimes = map[string]bool{
		"image/png": true, "image/jpeg": true, "image/jpg": true,
		"image/webp": true, "image/svg+xml": true, "image/gif": true,
	}
	imageExts  = map[string]bool{"png": true, "jpg": true, "jpeg": true, "webp": true, "svg": true, "gif": true}
	videoMimes = map[string]bool{"video/mp4": true, "video/webm": true, "video/quicktime": true}
	videoExts  = map[string]bool{"mp4": true, "webm": true, "mov": true}
)

// Extension returns the lowercased extension of fileName without the dot.
func Extension(fileName string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(fileName), "."))
}

// IsImage reports whether the declared mime type or the extension names a
// supported image format.
func IsImage(fileName, mimeType string) bool {
	return imageMimes[mimeType] || imageExts[Extension(fileName)]
}

// IsGIF reports whether the file is a GIF.
func IsGIF(fileName, mimeType string) bool {
	return mimeType == "image/gif" || Extension(fileName) == "gif"
}

// IsVideo reports whether the declared mime type or the extension names a
// supported video container.
func IsVideo(fileName, mimeType string) bool {
	return videoMimes[mimeType] || videoExts[Extension(fileName)]
}

// Sniff detects the mime type from content. It returns "" when the
// content is not recognized.
func Sniff(content []byte) string {
	t, err := filetype.Match(content)
	if err != nil || t == filetype.Unknown {
		return ""
	}
	return t.MIME.Value
}

// Classify determines the kind of a file. Lottie and Rive are recognized by
// extension only. When the declared mime type is missing or generic the
// content is sniffed. The returned mime type is the best known one.
func Classify(fileName, mimeType string, content []byte) (Kind, string) {
	switch Extension(fileName) {
	case "json":
		return KindLottie, "application/json"
	case "riv":
		return KindRive, "application/octet-stream"
	}

	if mimeType == "" || mimeType == "application/octet-stream" {
		if sniffed := Sniff(content); sniffed != "" {
			mimeType = sniffed
		}
	}

	switch {
	case IsVideo(fileName, mimeType):
		return KindVideo, mimeType
	case IsImage(fileName, mimeType):
		return KindImage, mimeType
	}
	return KindUnknown, mimeType
}

// MediaSaver stores a medium for a board and returns its id.
type MediaSaver interface {
	SaveMedia(ctx context.Context, boardID string, blob []byte, fileName, mimeType string) (string, error)
}

// FromFile turns a file into an item type and payload. Videos and Rive
// files are stored through saver; images are inlined as data URIs and
// Lottie animations carry their JSON inline.
func FromFile(ctx context.Context, saver MediaSaver, boardID, fileName, mimeType string, content []byte) (models.ItemType, models.ItemData, error) {
	kind, mimeType := Classify(fileName, mimeType, content)

	switch kind {
	case KindLottie:
		if !json.Valid(content) {
			return "", nil, fmt.Errorf("%w: %s is not valid JSON", ErrUnsupportedFile, fileName)
		}
		return models.ItemTypeLottie, models.LottieData{
			AnimationData: json.RawMessage(content),
			Speed:         1,
			FileName:      fileName,
		}, nil

	case KindRive:
		blobID, err := saver.SaveMedia(ctx, boardID, content, fileName, mimeType)
		if err != nil {
			return "", nil, err
		}
		return models.ItemTypeRive, models.RiveData{
			BlobID:   blobID,
			FileName: fileName,
			FileSize: int64(len(content)),
			Speed:    1,
		}, nil

	case KindVideo:
		blobID, err := saver.SaveMedia(ctx, boardID, content, fileName, mimeType)
		if err != nil {
			return "", nil, err
		}
		return models.ItemTypeVideoUpload, models.VideoUploadData{
			BlobID:   blobID,
			FileName: fileName,
			MimeType: mimeType,
			FileSize: int64(len(content)),
		}, nil

	case KindImage:
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		return models.ItemTypeImage, models.ImageData{
			URL:      DataURL(mimeType, content),
			FileName: fileName,
		}, nil
	}

	return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, fileName)
}

// DataURL encodes content as a base64 data URI.
func DataURL(mimeType string, content []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(content)
}
