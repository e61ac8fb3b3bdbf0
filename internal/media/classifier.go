// package media classifies message attachments into a tagged kind used to
// pick a transfer strategy. Pure data inspection; no network calls.
package media

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"tgclone/internal/telegram"
)

// Kind enumerates the content kinds a message can classify as.
type Kind int

const (
	KindText Kind = iota
	KindPhoto
	KindVideo
	KindAudio
	KindImage
	KindDocument
	KindLink
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindPhoto:
		return "photo"
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	case KindImage:
		return "image"
	case KindDocument:
		return "document"
	case KindLink:
		return "link"
	default:
		return ""
	}
}

// Description returns the human-readable label used in fallback texts.
func (k Kind) Description() string {
	switch k {
	case KindPhoto:
		return "Photo"
	case KindVideo:
		return "Video"
	case KindAudio:
		return "Audio"
	case KindImage:
		return "Image"
	case KindDocument:
		return "Document"
	case KindLink:
		return "Link"
	default:
		return "Text"
	}
}

// FileInfo is the classification result for one message, populated once and
// consumed by the transfer policy.
type FileInfo struct {
	Kind            Kind
	Name            string
	Size            int64 // 0 when the source does not report one
	Extension       string
	MimeType        string
	DurationSeconds int
}

// Classify inspects a message and determines its kind and file metadata.
//
// Rule order: a link preview wins over any other attachment; then photo;
// then document, whose declared mime type decides video/audio/image versus
// generic document; a message with no media is text.
func Classify(msg *telegram.Message) FileInfo {
	if msg == nil || msg.Media == nil {
		return FileInfo{Kind: KindText}
	}

	m := msg.Media
	switch {
	case m.WebPage != nil:
		return FileInfo{Kind: KindLink}

	case m.Photo != nil:
		return FileInfo{
			Kind:      KindPhoto,
			Name:      fmt.Sprintf("photo_%d.jpg", msg.ID),
			Size:      m.Photo.Size,
			Extension: "jpg",
			MimeType:  "image/jpeg",
		}

	case m.Document != nil:
		return classifyDocument(msg.ID, m.Document)

	default:
		return FileInfo{Kind: KindText}
	}
}

func classifyDocument(msgID int64, doc *telegram.Document) FileInfo {
	mimeType := doc.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	info := FileInfo{
		Kind:            KindDocument,
		Name:            doc.FileName,
		Size:            doc.Size,
		MimeType:        mimeType,
		DurationSeconds: doc.DurationSeconds,
	}

	switch {
	case strings.Contains(mimeType, "video"):
		info.Kind = KindVideo
	case strings.Contains(mimeType, "audio"):
		info.Kind = KindAudio
	case strings.Contains(mimeType, "image"):
		info.Kind = KindImage
	}

	if info.Name == "" {
		ext := ".bin"
		if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
		info.Name = fmt.Sprintf("file_%d%s", msgID, ext)
	}

	info.Extension = strings.ToLower(strings.TrimPrefix(filepath.Ext(info.Name), "."))
	return info
}
