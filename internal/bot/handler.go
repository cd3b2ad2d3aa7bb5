package bot

import (
	"context"
	"fmt"
	"log"

	"github.com/ironsheep/perryfier/internal/overlay"
)

// MessageType is the kind of a room message.
type MessageType string

const (
	MsgText   MessageType = "m.text"
	MsgNotice MessageType = "m.notice"
	MsgEmote  MessageType = "m.emote"
	MsgImage  MessageType = "m.image"
	MsgFile   MessageType = "m.file"
)

// IsText reports whether t carries a plain text body.
func (t MessageType) IsText() bool {
	switch t {
	case MsgText, MsgNotice, MsgEmote:
		return true
	}
	return false
}

// Event is a message posted in a room.
type Event struct {
	ID     string      `json:"event_id"`
	RoomID string      `json:"room_id"`
	Sender string      `json:"sender,omitempty"`
	Type   MessageType `json:"msgtype"`
	Body   string      `json:"body"`

	// URL references the media of image events.
	URL string `json:"url,omitempty"`
}

// ImageContent is the message posted for a composed image.
type ImageContent struct {
	// Body is the file name shown to users.
	Body     string      `json:"body"`
	Type     MessageType `json:"msgtype"`
	URL      string      `json:"url"`
	MimeType string      `json:"mimetype"`
	Width    int         `json:"w"`
	Height   int         `json:"h"`
	Size     int         `json:"size"`
}

// Client is the chat transport the handler talks to.
type Client interface {
	// GetEvent fetches a previously posted event.
	GetEvent(ctx context.Context, roomID, eventID string) (*Event, error)

	// DownloadMedia fetches the bytes behind a media URL.
	DownloadMedia(ctx context.Context, url string) ([]byte, error)

	// UploadMedia stores data and returns a URL referencing it.
	UploadMedia(ctx context.Context, name, mimeType string, data []byte) (string, error)

	// MarkRead sends a read receipt for an event.
	MarkRead(ctx context.Context, roomID, eventID string) error

	// SendImage posts an image message to a room.
	SendImage(ctx context.Context, roomID string, content *ImageContent) error
}

// Composer turns a photo into a composed image.
// *overlay.Compositor implements it.
type Composer interface {
	Compose(src []byte) (*overlay.Composed, error)
}

// Handler reacts to room messages: it tracks images and answers triggers
// with a composed image.
type Handler struct {
	Client   Client
	Tracker  *Tracker
	Composer Composer
	Rules    []Rule

	// Logger receives progress messages; nil disables them.
	Logger *log.Logger
}

// NewHandler creates a handler using DefaultRules.
func NewHandler(client Client, tracker *Tracker, composer Composer, logger *log.Logger) *Handler {
	return &Handler{
		Client:   client,
		Tracker:  tracker,
		Composer: composer,
		Rules:    DefaultRules(),
		Logger:   logger,
	}
}

// HandleMessage processes one room message.
//
// Image messages become the room's tracked image. Text messages matching a
// rule mark the trigger read, compose the tracked image, upload it, and post
// it back to the room; the posted content is returned. Anything else,
// including a trigger in a room with no tracked image, yields (nil, nil).
//
// Transport and composition errors are wrapped and returned; errors.Is still
// matches detection and asset sentinels. The tracker is never modified on
// the trigger path.
func (h *Handler) HandleMessage(ctx context.Context, ev *Event) (*ImageContent, error) {
	if ev.Type == MsgImage {
		h.logf("Saw new image in %s at %s", ev.RoomID, ev.ID)
		h.Tracker.Observe(ev.RoomID, ev.ID)
		return nil, nil
	}
	if !ev.Type.IsText() {
		return nil, nil
	}

	rule, noun, ok := Match(h.Rules, ev.Body)
	if !ok {
		return nil, nil
	}
	h.logf("Matched %s rule with noun %q: %s", rule.Name, noun, ev.Body)

	if err := h.Client.MarkRead(ctx, ev.RoomID, ev.ID); err != nil {
		return nil, fmt.Errorf("mark read: %w", err)
	}

	imageID, ok := h.Tracker.Latest(ev.RoomID)
	if !ok {
		h.logf("Matched message but had no image for room %s", ev.RoomID)
		return nil, nil
	}

	imgEvent, err := h.Client.GetEvent(ctx, ev.RoomID, imageID)
	if err != nil {
		return nil, fmt.Errorf("get image event: %w", err)
	}
	src, err := h.Client.DownloadMedia(ctx, imgEvent.URL)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	h.logf("Downloaded image of size %d", len(src))

	composed, data, err := h.compose(ctx, src)
	if err != nil {
		return nil, err
	}

	name := OutputName(noun)
	url, err := h.Client.UploadMedia(ctx, name, "image/png", data)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	content := &ImageContent{
		Body:     name,
		Type:     MsgImage,
		URL:      url,
		MimeType: "image/png",
		Width:    composed.Width(),
		Height:   composed.Height(),
		Size:     len(data),
	}
	h.logf("Sending image %s to %s", name, ev.RoomID)
	if err := h.Client.SendImage(ctx, ev.RoomID, content); err != nil {
		return nil, fmt.Errorf("send image: %w", err)
	}
	return content, nil
}

type composeResult struct {
	composed *overlay.Composed
	data     []byte
	err      error
}

// compose runs the CPU-bound composition and PNG encoding on a separate
// goroutine so a cancelled ctx returns promptly. The goroutine finishes its
// work in the background; its result is dropped.
func (h *Handler) compose(ctx context.Context, src []byte) (*overlay.Composed, []byte, error) {
	done := make(chan composeResult, 1)
	go func() {
		composed, err := h.Composer.Compose(src)
		if err != nil {
			done <- composeResult{err: fmt.Errorf("compose: %w", err)}
			return
		}
		data, err := composed.PNG()
		if err != nil {
			done <- composeResult{err: fmt.Errorf("encode: %w", err)}
			return
		}
		done <- composeResult{composed: composed, data: data}
	}()

	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case r := <-done:
		return r.composed, r.data, r.err
	}
}

func (h *Handler) logf(format string, args ...any) {
	if h.Logger != nil {
		h.Logger.Printf(format, args...)
	}
}
