package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ironsheep/perryfier/internal/bot"
)

// memScheme prefixes URLs of uploads kept in memory.
const memScheme = "mem://"

// localRoom is an in-process chat transport. Events live in memory and
// image media URLs are plain file paths. Uploads are written to outputDir,
// or kept in memory when it is empty.
//
// Memory stays bounded by the number of rooms: callers remove events once
// they are no longer needed, and in-memory uploads are released by take.
type localRoom struct {
	mu        sync.Mutex
	outputDir string
	events    map[string]*bot.Event
	uploads   map[string][]byte

	// lastRead is the latest read receipt per room.
	lastRead map[string]string

	// sent counts images posted per room.
	sent map[string]int
}

func newLocalRoom(outputDir string) *localRoom {
	return &localRoom{
		outputDir: outputDir,
		events:    make(map[string]*bot.Event),
		uploads:   make(map[string][]byte),
		lastRead:  make(map[string]string),
		sent:      make(map[string]int),
	}
}

func eventKey(roomID, eventID string) string {
	return roomID + "\x00" + eventID
}

// add stores ev, assigning an event ID when it has none.
func (r *localRoom) add(ev *bot.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ev.ID == "" {
		ev.ID = "$" + uuid.NewString()
	}
	r.events[eventKey(ev.RoomID, ev.ID)] = ev
}

// remove forgets an event.
func (r *localRoom) remove(roomID, eventID string) {
	r.mu.Lock()
	delete(r.events, eventKey(roomID, eventID))
	r.mu.Unlock()
}

func (r *localRoom) GetEvent(ctx context.Context, roomID, eventID string) (*bot.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev, ok := r.events[eventKey(roomID, eventID)]
	if !ok {
		return nil, fmt.Errorf("event %s not found in %s", eventID, roomID)
	}
	return ev, nil
}

func (r *localRoom) DownloadMedia(ctx context.Context, url string) ([]byte, error) {
	if strings.HasPrefix(url, memScheme) {
		r.mu.Lock()
		data, ok := r.uploads[url]
		r.mu.Unlock()
		if !ok {
			return nil, fmt.Errorf("media %s not found", url)
		}
		return data, nil
	}

	data, err := os.ReadFile(url)
	if err != nil {
		return nil, fmt.Errorf("failed to read media: %w", err)
	}
	return data, nil
}

func (r *localRoom) UploadMedia(ctx context.Context, name, mimeType string, data []byte) (string, error) {
	name = sanitizeFileName(name)

	if r.outputDir != "" {
		if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create output dir: %w", err)
		}
		path := filepath.Join(r.outputDir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return "", fmt.Errorf("failed to write upload: %w", err)
		}
		return path, nil
	}

	url := memScheme + "upload/" + uuid.NewString() + "/" + name
	r.mu.Lock()
	r.uploads[url] = data
	r.mu.Unlock()
	return url, nil
}

func (r *localRoom) MarkRead(ctx context.Context, roomID, eventID string) error {
	r.mu.Lock()
	r.lastRead[roomID] = eventID
	r.mu.Unlock()
	return nil
}

func (r *localRoom) SendImage(ctx context.Context, roomID string, content *bot.ImageContent) error {
	r.mu.Lock()
	r.sent[roomID]++
	r.mu.Unlock()
	return nil
}

// take returns the bytes behind an upload URL. In-memory uploads are
// released; uploads on disk are read and left in place.
func (r *localRoom) take(url string) ([]byte, error) {
	if !strings.HasPrefix(url, memScheme) {
		return r.DownloadMedia(context.Background(), url)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.uploads[url]
	if !ok {
		return nil, fmt.Errorf("media %s not found", url)
	}
	delete(r.uploads, url)
	return data, nil
}

// sanitizeFileName reduces name to a single safe path element.
func sanitizeFileName(name string) string {
	name = strings.Map(func(c rune) rune {
		switch c {
		case '/', '\\', 0:
			return '_'
		}
		return c
	}, name)
	if name == "" || name == "." || name == ".." {
		return "upload.png"
	}
	return name
}
