// package telegram defines the capability interface the clone pipeline
// drives against a Telegram-style remote service, plus the wire data it
// consumes.
//
// The concrete client (authentication, MTProto transport, entity
// resolution) lives outside this module; everything here is the contract
// it must satisfy. Policy code never talks to the network directly.
package telegram

import "context"

// Client is implemented by the external API client collaborator.
//
// All methods take a context; every call is a suspension point and may be
// canceled between items.
type Client interface {
	// ListDialogs returns up to limit conversations visible to the session.
	ListDialogs(ctx context.Context, limit int) ([]Dialog, error)

	// ListMessages returns up to limit messages from the channel, newest first.
	ListMessages(ctx context.Context, ch *Channel, limit int) ([]Message, error)

	// IsProtected reports whether the channel forbids content extraction.
	IsProtected(ctx context.Context, ch *Channel) (bool, error)

	// CreateChannel creates a new broadcast channel or megagroup.
	CreateChannel(ctx context.Context, title, about string, broadcast bool) (*Channel, error)

	// ResolveChannel looks up an existing channel by its identifier.
	ResolveChannel(ctx context.Context, id int64) (*Channel, error)

	// SendText posts a plain text message to the channel.
	SendText(ctx context.Context, ch *Channel, text string) error

	// SendFile uploads a local file to the channel with an optional caption.
	SendFile(ctx context.Context, ch *Channel, path, caption string) error

	// DownloadMedia saves the message's media attachment into dir and returns
	// the local path, or "" when the message carries no downloadable media.
	DownloadMedia(ctx context.Context, msg *Message, dir string) (string, error)

	// DownloadAvatar saves the channel's profile photo into dir and returns
	// the local path, or "" when the channel has none.
	DownloadAvatar(ctx context.Context, ch *Channel, dir string) (string, error)

	// SetUsername binds a public username to the channel.
	SetUsername(ctx context.Context, ch *Channel, username string) error

	// EditPhoto replaces the channel's profile photo with a local image file.
	EditPhoto(ctx context.Context, ch *Channel, path string) error

	// LinkedChannelID returns the ID of the discussion channel linked to a
	// group, or 0 when none is linked.
	LinkedChannelID(ctx context.Context, ch *Channel) (int64, error)
}

// Channel is an opaque handle to a remote channel or group.
type Channel struct {
	ID        int64
	Title     string
	Username  string // public handle, empty for private channels
	About     string
	Broadcast bool // true for channels, false for group-style chats
	Megagroup bool
	HasPhoto  bool
}

// Dialog is a conversation entry as listed by the session.
type Dialog struct {
	Name    string
	Channel *Channel
}

// Message is one ordered content item from a channel.
//
// IDs are source-assigned, monotonically increasing in posting order. A
// message carries text, media, or both; items with neither are dropped
// during collection.
type Message struct {
	ID    int64
	Text  string
	Media *Media
}

// HasContent reports whether the message carries anything worth transferring.
func (m *Message) HasContent() bool {
	return m.Text != "" || m.Media != nil
}

// Media is the attachment payload of a message. At most one of the
// variant fields is set.
type Media struct {
	Photo    *Photo
	Document *Document
	WebPage  *WebPage
}

// Photo is an image attachment. Size may be unreported.
type Photo struct {
	Size int64
}

// Document is a generic file attachment, including videos and audio.
type Document struct {
	FileName        string
	MimeType        string
	Size            int64
	DurationSeconds int // nonzero for video and audio
}

// WebPage is an embedded link preview.
type WebPage struct {
	Title       string
	Description string
	URL         string
}
