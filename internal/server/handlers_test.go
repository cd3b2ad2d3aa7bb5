package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/perryfier/internal/detection"
	"github.com/ironsheep/perryfier/internal/imaging"
)

// createTestImageFile creates a solid test image file and returns its path
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return writePNG(t, img)
}

// createDiscImageFile creates a white image with a black disc and returns its path
func createDiscImageFile(t *testing.T, width, height, cx, cy, r int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.RGBA{255, 255, 255, 255}
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				c = color.RGBA{0, 0, 0, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return writePNG(t, img)
}

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "handler-test-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return f.Name()
}

// callTool runs a tools/call request for name with args.
func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()

	params, err := json.Marshal(map[string]interface{}{
		"name":      name,
		"arguments": args,
	})
	if err != nil {
		t.Fatal(err)
	}

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  params,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeResult unmarshals the JSON text of a successful tool response into v.
func decodeResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	if len(content) != 1 || content[0]["type"] != "text" {
		t.Fatalf("unexpected content: %v", content)
	}
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), v); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
}

// toolError returns the error data of a failed tool response.
func toolError(t *testing.T, resp *MCPResponse) ToolErrorData {
	t.Helper()

	if resp.Error == nil {
		t.Fatal("expected an error response")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
	}
	data, ok := resp.Error.Data.(ToolErrorData)
	if !ok {
		t.Fatalf("Error data: got %T, want ToolErrorData", resp.Error.Data)
	}
	return data
}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := newTestServer(t, "")
	imgPath := createTestImageFile(t, 100, 80, color.RGBA{255, 0, 0, 255})

	var info imaging.ImageInfo
	decodeResult(t, callTool(t, s, "image_load", map[string]string{"path": imgPath}), &info)

	if info.Width != 100 || info.Height != 80 || info.Format != "png" {
		t.Errorf("got %+v", info)
	}
	if s.cache.Len() != 1 {
		t.Errorf("image should be cached, cache has %d", s.cache.Len())
	}
}

func TestHandleToolsCall_ImageDimensions(t *testing.T) {
	s := newTestServer(t, "")
	imgPath := createTestImageFile(t, 200, 150, color.RGBA{0, 255, 0, 255})

	var dims imaging.DimensionsResult
	decodeResult(t, callTool(t, s, "image_dimensions", map[string]string{"path": imgPath}), &dims)

	if dims.Width != 200 || dims.Height != 150 {
		t.Errorf("got %+v", dims)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t, "")
	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`"not an object"`),
	})

	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("got %+v, want -32602", resp.Error)
	}
}

func TestHandleToolsCall_Errors(t *testing.T) {
	notImage := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(notImage, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	blank := createTestImageFile(t, 60, 40, color.White)

	tests := []struct {
		name     string
		tool     string
		args     interface{}
		wantKind string
	}{
		{"unknown tool", "image_crop", map[string]string{"path": blank}, ""},
		{"missing path", "image_load", map[string]string{}, ""},
		{"nonexistent file", "image_dimensions", map[string]string{"path": "/nonexistent/image.png"}, ""},
		{"locate not an image", "image_locate_object", map[string]string{"path": notImage}, "invalid_image"},
		{"locate blank", "image_locate_object", map[string]string{"path": blank}, "no_object_found"},
		{"perryfy not an image", "image_perryfy", map[string]string{"path": notImage}, "invalid_image"},
		{"perryfy blank", "image_perryfy", map[string]string{"path": blank}, "no_object_found"},
		{"perryfy missing file", "image_perryfy", map[string]string{"path": "/nonexistent/image.png"}, ""},
		{"post image without room", "room_post_image", map[string]string{"path": blank}, ""},
		{"post message without room", "room_post_message", map[string]string{"body": "a dog?"}, ""},
		{"latest without room", "room_latest_image", map[string]string{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, "")
			data := toolError(t, callTool(t, s, tt.tool, tt.args))
			if data.Error == "" {
				t.Error("error message is empty")
			}
			if data.Kind != tt.wantKind {
				t.Errorf("Kind: got %q, want %q", data.Kind, tt.wantKind)
			}
		})
	}
}

func TestHandleToolsCall_LocateObject(t *testing.T) {
	s := newTestServer(t, "")
	imgPath := createDiscImageFile(t, 240, 200, 110, 90, 45)

	var res detection.Result
	decodeResult(t, callTool(t, s, "image_locate_object", map[string]string{"path": imgPath}), &res)

	if math.Abs(res.Center.X-110) > 2 || math.Abs(res.Center.Y-90) > 2 {
		t.Errorf("center: got (%.1f, %.1f), want near (110, 90)", res.Center.X, res.Center.Y)
	}
	if math.Abs(res.Radius-45) > 45*0.05 {
		t.Errorf("radius: got %.2f, want near 45", res.Radius)
	}
	if res.Backend == "" {
		t.Error("backend should be reported")
	}
}

func TestHandleToolsCall_ForegroundMask(t *testing.T) {
	s := newTestServer(t, "")
	imgPath := createDiscImageFile(t, 120, 100, 60, 50, 30)

	var res imaging.MaskResult
	decodeResult(t, callTool(t, s, "image_foreground_mask", map[string]string{"path": imgPath}), &res)

	if res.Width != 120 || res.Height != 100 || res.Uniform {
		t.Errorf("got %dx%d uniform=%v", res.Width, res.Height, res.Uniform)
	}
	data, err := base64.StdEncoding.DecodeString(res.ImageBase64)
	if err != nil {
		t.Fatal(err)
	}
	mask, err := imaging.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	r, _, _, _ := mask.At(60, 50).RGBA()
	if r == 0 {
		t.Error("disc center should be foreground")
	}
	r, _, _, _ = mask.At(2, 2).RGBA()
	if r != 0 {
		t.Error("corner should be background")
	}
}

func TestHandleToolsCall_Perryfy(t *testing.T) {
	tests := []struct {
		noun     string
		wantName string
	}{
		{"", "perry.png"},
		{"dog", "perry-the-dog.png"},
	}

	imgPath := createDiscImageFile(t, 400, 400, 200, 220, 60)

	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			s := newTestServer(t, "")

			var res PerryfyResult
			decodeResult(t, callTool(t, s, "image_perryfy", map[string]string{"path": imgPath, "noun": tt.noun}), &res)

			if res.Filename != tt.wantName {
				t.Errorf("Filename: got %q, want %q", res.Filename, tt.wantName)
			}
			if res.Width != 400 || res.Height != 400 {
				t.Errorf("size: got %dx%d", res.Width, res.Height)
			}
			// The bundled sprite is 100x60; factor max(120/100, 120/60) = 2.
			if res.ScaleFactor != 2 || res.SpriteWidth != 200 || res.SpriteHeight != 120 {
				t.Errorf("sprite: factor %v size %dx%d", res.ScaleFactor, res.SpriteWidth, res.SpriteHeight)
			}
			if res.Object == nil {
				t.Fatal("object should be reported")
			}
			if res.SavedPath != "" {
				t.Errorf("nothing should be saved without an output dir, got %q", res.SavedPath)
			}

			data, err := base64.StdEncoding.DecodeString(res.ImageBase64)
			if err != nil {
				t.Fatal(err)
			}
			if len(data) != res.SizeBytes {
				t.Errorf("SizeBytes %d, decoded %d", res.SizeBytes, len(data))
			}
			img, err := imaging.Decode(data)
			if err != nil {
				t.Fatalf("result is not an image: %v", err)
			}
			if img.Bounds().Dx() != 400 || img.Bounds().Dy() != 400 {
				t.Errorf("decoded bounds %v", img.Bounds())
			}
		})
	}
}

func TestHandleToolsCall_PerryfySaves(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	s := newTestServer(t, outDir)
	imgPath := createDiscImageFile(t, 200, 200, 100, 110, 40)

	var res PerryfyResult
	decodeResult(t, callTool(t, s, "image_perryfy", map[string]string{"path": imgPath, "noun": "cat"}), &res)

	want := filepath.Join(outDir, "perry-the-cat.png")
	if res.SavedPath != want {
		t.Fatalf("SavedPath: got %q, want %q", res.SavedPath, want)
	}
	info, err := os.Stat(want)
	if err != nil {
		t.Fatal(err)
	}
	if int(info.Size()) != res.SizeBytes {
		t.Errorf("saved %d bytes, want %d", info.Size(), res.SizeBytes)
	}
}

func TestHandleToolsCall_RoomFlow(t *testing.T) {
	s := newTestServer(t, "")
	imgPath := createDiscImageFile(t, 300, 240, 150, 130, 50)

	// Trigger before any image: nothing posted.
	var msg RoomPostMessageResult
	decodeResult(t, callTool(t, s, "room_post_message", map[string]string{
		"room_id": "!r", "body": "a dog?",
	}), &msg)
	if msg.Posted || msg.EventID == "" {
		t.Errorf("got %+v, want posted=false with an event id", msg)
	}

	var posted RoomPostImageResult
	decodeResult(t, callTool(t, s, "room_post_image", map[string]string{
		"room_id": "!r", "event_id": "$photo", "path": imgPath,
	}), &posted)
	if !posted.Tracked || posted.EventID != "$photo" {
		t.Errorf("got %+v", posted)
	}

	var latest RoomLatestImageResult
	decodeResult(t, callTool(t, s, "room_latest_image", map[string]string{"room_id": "!r"}), &latest)
	if !latest.Found || latest.EventID != "$photo" {
		t.Errorf("got %+v", latest)
	}

	// Unmatched text is ignored.
	decodeResult(t, callTool(t, s, "room_post_message", map[string]string{
		"room_id": "!r", "body": "nice photo",
	}), &msg)
	if msg.Posted {
		t.Error("unmatched text should not post")
	}

	msg = RoomPostMessageResult{}
	decodeResult(t, callTool(t, s, "room_post_message", map[string]string{
		"room_id": "!r", "event_id": "$ask", "body": "a dog?",
	}), &msg)
	if !msg.Posted || msg.Content == nil {
		t.Fatalf("got %+v, want a posted image", msg)
	}
	if msg.Content.Body != "perry-the-dog.png" || msg.Content.MimeType != "image/png" {
		t.Errorf("content: %+v", msg.Content)
	}
	if msg.Content.Width != 300 || msg.Content.Height != 240 {
		t.Errorf("size: got %dx%d", msg.Content.Width, msg.Content.Height)
	}
	data, err := base64.StdEncoding.DecodeString(msg.ImageBase64)
	if err != nil || len(data) != msg.Content.Size {
		t.Errorf("inline image: %d bytes, err %v; want %d", len(data), err, msg.Content.Size)
	}

	if got := s.room.lastRead["!r"]; got != "$ask" {
		t.Errorf("read receipt: got %q, want $ask", got)
	}
	if got := s.room.sent["!r"]; got != 1 {
		t.Errorf("sent: got %d images, want 1", got)
	}
}

func TestHandleToolsCall_RoomFlowErrors(t *testing.T) {
	s := newTestServer(t, "")
	blank := createTestImageFile(t, 80, 60, color.White)

	callTool(t, s, "room_post_image", map[string]string{"room_id": "!r", "path": blank})

	data := toolError(t, callTool(t, s, "room_post_message", map[string]string{
		"room_id": "!r", "body": "!perryfy",
	}))
	if data.Kind != "no_object_found" {
		t.Errorf("Kind: got %q", data.Kind)
	}
	if s.room.sent["!r"] != 0 {
		t.Error("nothing should be posted")
	}
}

func TestHandleToolsCall_RoomUploadsToOutputDir(t *testing.T) {
	outDir := t.TempDir()
	s := newTestServer(t, outDir)
	imgPath := createDiscImageFile(t, 200, 200, 100, 110, 40)

	callTool(t, s, "room_post_image", map[string]string{"room_id": "!r", "path": imgPath})

	var msg RoomPostMessageResult
	decodeResult(t, callTool(t, s, "room_post_message", map[string]string{
		"room_id": "!r", "body": "!perryfy owl",
	}), &msg)

	want := filepath.Join(outDir, "perry-the-owl.png")
	if !msg.Posted || msg.Content.URL != want {
		t.Fatalf("got %+v, want upload at %s", msg, want)
	}
	if msg.ImageBase64 != "" {
		t.Error("image should not be inlined when saved to disk")
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("upload not written: %v", err)
	}
}

func TestHandleToolsCall_RoomMemoryBounded(t *testing.T) {
	s := newTestServer(t, "")
	first := createDiscImageFile(t, 200, 200, 100, 110, 40)
	second := createDiscImageFile(t, 240, 200, 120, 110, 45)

	for i := 0; i < 5; i++ {
		path := first
		if i%2 == 1 {
			path = second
		}
		callTool(t, s, "room_post_image", map[string]string{"room_id": "!r", "path": path})

		var msg RoomPostMessageResult
		decodeResult(t, callTool(t, s, "room_post_message", map[string]string{
			"room_id": "!r", "body": "!perryfy",
		}), &msg)
		if !msg.Posted || msg.ImageBase64 == "" {
			t.Fatalf("round %d: got %+v, want an inline image", i, msg)
		}
	}
	callTool(t, s, "room_post_message", map[string]string{"room_id": "!r", "body": "just chatting"})

	// Only the tracked image survives; replies are released once returned.
	if len(s.room.events) != 1 {
		t.Errorf("events: got %d, want 1", len(s.room.events))
	}
	if len(s.room.uploads) != 0 {
		t.Errorf("uploads: got %d, want 0", len(s.room.uploads))
	}
	if s.room.sent["!r"] != 5 {
		t.Errorf("sent: got %d, want 5", s.room.sent["!r"])
	}

	var latest RoomLatestImageResult
	decodeResult(t, callTool(t, s, "room_latest_image", map[string]string{"room_id": "!r"}), &latest)
	if _, err := s.room.GetEvent(context.Background(), "!r", latest.EventID); err != nil {
		t.Errorf("tracked image event was evicted: %v", err)
	}
}

func TestLocalRoom_Take(t *testing.T) {
	room := newLocalRoom("")
	url, err := room.UploadMedia(context.Background(), "perry.png", "image/png", []byte("data"))
	if err != nil {
		t.Fatal(err)
	}

	data, err := room.take(url)
	if err != nil || string(data) != "data" {
		t.Fatalf("take: got %q, %v", data, err)
	}
	if _, err := room.take(url); err == nil {
		t.Error("second take should fail after release")
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"perry-the-dog.png", "perry-the-dog.png"},
		{"perry-the-../../etc/passwd.png", "perry-the-.._.._etc_passwd.png"},
		{`perry-the-a\b.png`, "perry-the-a_b.png"},
		{"", "upload.png"},
		{"..", "upload.png"},
	}
	for _, tt := range tests {
		if got := sanitizeFileName(tt.in); got != tt.want {
			t.Errorf("sanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
