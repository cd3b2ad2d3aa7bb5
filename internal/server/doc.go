// Package server implements the MCP (Model Context Protocol) host for the
// Perryfier bot.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Object Location and Composition:
//   - image_locate_object: Center and radius of the principal object
//   - image_foreground_mask: The binary mask location works from
//   - image_perryfy: Compose the hat sprite onto a photo
//
// Room Simulation:
//   - room_post_image: Post an image; the bot tracks it
//   - room_post_message: Post text; triggers make the bot reply
//   - room_latest_image: The image a trigger would use
//
// The room tools drive a bot.Handler through an in-process transport.
// Events are held in memory and image media URLs are file paths. Replies
// are written to PERRYFIER_OUTPUT_DIR when it is set and returned inline
// as base64 otherwise.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: ToolErrorData with the Go error string and, for detection and
//     resource failures, a machine-readable kind
//
// # Usage
//
//	srv := server.New(cfg, assets.Embedded(), nil)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
