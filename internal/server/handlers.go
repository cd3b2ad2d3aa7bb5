package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ironsheep/perryfier/internal/assets"
	"github.com/ironsheep/perryfier/internal/bot"
	"github.com/ironsheep/perryfier/internal/detection"
	"github.com/ironsheep/perryfier/internal/imaging"
	"github.com/ironsheep/perryfier/internal/overlay"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_perryfy").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// ToolErrorData is the data attached to a failed tool call.
type ToolErrorData struct {
	Error string `json:"error"`

	// Kind classifies the failure: "invalid_image", "no_object_found", or
	// "resource_error". Empty for other errors.
	Kind string `json:"kind,omitempty"`
}

func errorKind(err error) string {
	if kind := detection.KindOf(err); kind != "" {
		return string(kind)
	}
	if errors.Is(err, assets.ErrResource) {
		return "resource_error"
	}
	return ""
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.debugf("Tool %s failed: %v", params.Name, err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", ToolErrorData{
			Error: err.Error(),
			Kind:  errorKind(err),
		})
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Object Location and Composition
	case "image_locate_object":
		return s.handleImageLocateObject(args)
	case "image_foreground_mask":
		return s.handleImageForegroundMask(args)
	case "image_perryfy":
		return s.handleImagePerryfy(args)

	// Room Simulation
	case "room_post_image":
		return s.handleRoomPostImage(ctx, args)
	case "room_post_message":
		return s.handleRoomPostMessage(ctx, args)
	case "room_latest_image":
		return s.handleRoomLatestImage(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Basic Image Information Handlers ===

type imagePathArgs struct {
	Path string `json:"path"`
}

func (a *imagePathArgs) validate() error {
	if a.Path == "" {
		return errors.New("path is required")
	}
	return nil
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imagePathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imagePathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Object Location and Composition Handlers ===

func (s *Server) handleImageLocateObject(args json.RawMessage) (interface{}, error) {
	var a imagePathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(a.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return detection.LocateBytes(data)
}

func (s *Server) handleImageForegroundMask(args json.RawMessage) (interface{}, error) {
	var a imagePathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.ForegroundMaskImage(img)
}

type imagePerryfyArgs struct {
	Path string `json:"path"`
	Noun string `json:"noun,omitempty"`
}

// PerryfyResult is the composed image returned by image_perryfy.
type PerryfyResult struct {
	// Filename follows the bot's naming: perry.png or perry-the-<noun>.png.
	Filename string `json:"filename"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`

	// Object is the located object the sprite was placed on.
	Object *detection.Result `json:"object"`

	// SpriteX and SpriteY give the sprite's top-left corner; it may be
	// negative when the sprite is clipped.
	SpriteX      int     `json:"sprite_x"`
	SpriteY      int     `json:"sprite_y"`
	SpriteWidth  int     `json:"sprite_width"`
	SpriteHeight int     `json:"sprite_height"`
	ScaleFactor  float64 `json:"scale_factor"`

	SizeBytes   int    `json:"size_bytes"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`

	// SavedPath is set when the image was also written to the output dir.
	SavedPath string `json:"saved_path,omitempty"`
}

func (s *Server) handleImagePerryfy(args json.RawMessage) (interface{}, error) {
	var a imagePerryfyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}

	src, err := os.ReadFile(a.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	composed, err := s.compositor.Compose(src)
	if err != nil {
		return nil, err
	}
	data, err := composed.PNG()
	if err != nil {
		return nil, err
	}

	result := newPerryfyResult(bot.OutputName(a.Noun), composed, data)
	if s.room.outputDir != "" {
		path, err := s.room.UploadMedia(context.Background(), result.Filename, result.MimeType, data)
		if err != nil {
			return nil, err
		}
		result.SavedPath = path
	}
	return result, nil
}

func newPerryfyResult(name string, c *overlay.Composed, data []byte) *PerryfyResult {
	return &PerryfyResult{
		Filename:     name,
		Width:        c.Width(),
		Height:       c.Height(),
		Object:       c.Detection,
		SpriteX:      c.Placement.X,
		SpriteY:      c.Placement.Y,
		SpriteWidth:  c.SpriteSize.Width,
		SpriteHeight: c.SpriteSize.Height,
		ScaleFactor:  c.Factor,
		SizeBytes:    len(data),
		ImageBase64:  base64.StdEncoding.EncodeToString(data),
		MimeType:     "image/png",
	}
}

// === Room Simulation Handlers ===

type roomPostImageArgs struct {
	RoomID  string `json:"room_id"`
	EventID string `json:"event_id"`
	Path    string `json:"path"`
	Sender  string `json:"sender,omitempty"`
}

// RoomPostImageResult acknowledges an image posted to a room.
type RoomPostImageResult struct {
	RoomID  string `json:"room_id"`
	EventID string `json:"event_id"`
	Tracked bool   `json:"tracked"`
}

func (s *Server) handleRoomPostImage(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a roomPostImageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.RoomID == "" || a.Path == "" {
		return nil, errors.New("room_id and path are required")
	}

	ev := &bot.Event{
		ID:     a.EventID,
		RoomID: a.RoomID,
		Sender: a.Sender,
		Type:   bot.MsgImage,
		Body:   filepath.Base(a.Path),
		URL:    a.Path,
	}
	previous, hadPrevious := s.handler.Tracker.Latest(a.RoomID)
	s.room.add(ev)

	if _, err := s.handler.HandleMessage(ctx, ev); err != nil {
		s.room.remove(ev.RoomID, ev.ID)
		return nil, err
	}
	latest, _ := s.handler.Tracker.Latest(a.RoomID)
	if hadPrevious && previous != latest {
		s.room.remove(a.RoomID, previous)
	}
	return &RoomPostImageResult{
		RoomID:  a.RoomID,
		EventID: ev.ID,
		Tracked: latest == ev.ID,
	}, nil
}

type roomPostMessageArgs struct {
	RoomID  string          `json:"room_id"`
	EventID string          `json:"event_id,omitempty"`
	Body    string          `json:"body"`
	MsgType bot.MessageType `json:"msgtype,omitempty"`
	Sender  string          `json:"sender,omitempty"`
}

// RoomPostMessageResult reports the bot's reply to a text message.
type RoomPostMessageResult struct {
	EventID string `json:"event_id"`

	// Posted is false when the message triggered nothing.
	Posted  bool              `json:"posted"`
	Content *bot.ImageContent `json:"content,omitempty"`

	// ImageBase64 carries the posted image when uploads are kept in memory.
	ImageBase64 string `json:"image_base64,omitempty"`
}

func (s *Server) handleRoomPostMessage(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a roomPostMessageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.RoomID == "" {
		return nil, errors.New("room_id is required")
	}
	if a.MsgType == "" {
		a.MsgType = bot.MsgText
	}

	ev := &bot.Event{
		ID:     a.EventID,
		RoomID: a.RoomID,
		Sender: a.Sender,
		Type:   a.MsgType,
		Body:   a.Body,
	}
	s.room.add(ev)
	// Only image events are ever fetched again.
	defer s.room.remove(ev.RoomID, ev.ID)

	content, err := s.handler.HandleMessage(ctx, ev)
	if err != nil {
		return nil, err
	}

	result := &RoomPostMessageResult{EventID: ev.ID}
	if content == nil {
		return result, nil
	}
	result.Posted = true
	result.Content = content
	if s.room.outputDir == "" {
		data, err := s.room.take(content.URL)
		if err != nil {
			return nil, err
		}
		result.ImageBase64 = base64.StdEncoding.EncodeToString(data)
	}
	return result, nil
}

type roomArgs struct {
	RoomID string `json:"room_id"`
}

// RoomLatestImageResult names the image a trigger in the room would use.
type RoomLatestImageResult struct {
	RoomID  string `json:"room_id"`
	EventID string `json:"event_id,omitempty"`
	Found   bool   `json:"found"`
}

func (s *Server) handleRoomLatestImage(args json.RawMessage) (interface{}, error) {
	var a roomArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.RoomID == "" {
		return nil, errors.New("room_id is required")
	}
	id, ok := s.handler.Tracker.Latest(a.RoomID)
	return &RoomLatestImageResult{RoomID: a.RoomID, EventID: id, Found: ok}, nil
}
