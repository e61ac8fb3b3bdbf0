package cloner

import (
	"fmt"
	"strings"

	"tgclone/internal/media"
	"tgclone/internal/shared"
	"tgclone/internal/telegram"
)

// FormatWebPage composes the text sent in place of a link-preview item:
// the original text plus the preview's title, description, and URL.
func FormatWebPage(msg *telegram.Message) string {
	text := msg.Text
	if msg.Media == nil || msg.Media.WebPage == nil {
		return text
	}

	wp := msg.Media.WebPage
	if wp.Title == "" && wp.Description == "" && wp.URL == "" {
		return text
	}

	var b strings.Builder
	b.WriteString(text)
	b.WriteString("\n\n🔗 Link:")
	if wp.Title != "" {
		b.WriteString("\n📄 " + wp.Title)
	}
	if wp.Description != "" {
		b.WriteString("\n📋 " + wp.Description)
	}
	if wp.URL != "" {
		b.WriteString("\n🌐 " + wp.URL)
	}
	return b.String()
}

// fallbackText is the synthesized message sent when media cannot be
// downloaded: media type plus the original caption.
func fallbackText(info media.FileInfo, caption string) string {
	text := "📎 " + info.Kind.Description()
	if caption != "" {
		text += "\n\n" + caption
	}
	return text
}

// protectedText is the detailed description sent for media in a
// content-protected source: type, duration for videos, human-readable size,
// and the original caption.
func protectedText(info media.FileInfo, caption string) string {
	var b strings.Builder
	b.WriteString("🔒 PROTECTED CONTENT (cannot be downloaded)\n")
	b.WriteString("📎 Type: " + info.Kind.Description())

	if info.Kind == media.KindVideo && info.DurationSeconds > 0 {
		b.WriteString("\n⏱ Duration: " + shared.FormatDuration(info.DurationSeconds))
	}
	if info.Size > 0 {
		b.WriteString("\n📊 Size: " + shared.FormatBytes(info.Size))
	}
	if caption != "" {
		b.WriteString("\n\n💬 Caption:\n" + caption)
	}
	return b.String()
}

// oversizeNotice is sent in place of a file exceeding the configured limit.
func oversizeNotice(info media.FileInfo, caption string, limit int64) string {
	var b strings.Builder
	if caption != "" {
		b.WriteString(caption + "\n\n")
	}
	b.WriteString("📎 File too large to copy:\n")
	b.WriteString("📄 Name: " + info.Name + "\n")
	b.WriteString("📏 Size: " + shared.FormatBytes(info.Size) + "\n")
	b.WriteString("🎯 Type: " + info.Kind.String() + "\n")
	b.WriteString(fmt.Sprintf("⚠️ Maximum allowed: %s", shared.FormatBytes(limit)))
	return b.String()
}

// unsupportedNotice is sent in place of a file whose extension is blocked.
func unsupportedNotice(info media.FileInfo, caption string) string {
	var b strings.Builder
	if caption != "" {
		b.WriteString(caption + "\n\n")
	}
	b.WriteString("📎 Unsupported file format:\n")
	b.WriteString("📄 Name: " + info.Name + "\n")
	b.WriteString("🎯 Type: " + info.Extension + "\n")
	b.WriteString("⚠️ Only the text was copied")
	return b.String()
}

// announcementText links a cloned related channel from the primary
// destination, preferring the public handle when one exists.
func announcementText(ch *telegram.Channel) string {
	if ch.Username != "" {
		return "📢 Related channel: @" + ch.Username
	}
	return "📢 Related channel: " + ch.Title
}
