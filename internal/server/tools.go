package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func roomIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Room identifier, e.g. !abc:example.org",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The decoded image is cached for later calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Object Location and Composition
		{
			Name:        "image_locate_object",
			Description: "Find the principal object in a photo of a dark subject on a light, plain background. Returns the center and radius of the smallest circle enclosing the largest foreground region.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_foreground_mask",
			Description: "Return the binary foreground mask used for object location as base64-encoded PNG (foreground white). Useful to see why location failed or picked the wrong object.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_perryfy",
			Description: "Place the hat sprite on the principal object of a photo and return the composed image as base64-encoded PNG, along with placement details.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"noun": map[string]interface{}{
						"type":        "string",
						"description": "Optional noun for the file name: perry-the-<noun>.png. Default perry.png",
					},
				},
				"required": []string{"path"},
			},
		},

		// Room Simulation
		{
			Name:        "room_post_image",
			Description: "Post an image message to a room. The bot remembers it as the room's latest image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"room_id": roomIDProperty(),
					"event_id": map[string]interface{}{
						"type":        "string",
						"description": "Optional event identifier. Generated when omitted",
					},
					"path": pathProperty(),
					"sender": map[string]interface{}{
						"type":        "string",
						"description": "Optional sender identifier",
					},
				},
				"required": []string{"room_id", "path"},
			},
		},
		{
			Name:        "room_post_message",
			Description: "Post a text message to a room. Messages like \"a dog?\" or \"!perryfy cat\" make the bot reply with the room's latest image wearing the hat. Returns posted=false when nothing was triggered.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"room_id": roomIDProperty(),
					"event_id": map[string]interface{}{
						"type":        "string",
						"description": "Optional event identifier. Generated when omitted",
					},
					"body": map[string]interface{}{
						"type":        "string",
						"description": "Message text",
					},
					"msgtype": map[string]interface{}{
						"type":        "string",
						"description": "Message type. Default m.text",
						"enum":        []string{"m.text", "m.notice", "m.emote", "m.file"},
						"default":     "m.text",
					},
					"sender": map[string]interface{}{
						"type":        "string",
						"description": "Optional sender identifier",
					},
				},
				"required": []string{"room_id", "body"},
			},
		},
		{
			Name:        "room_latest_image",
			Description: "Get the event identifier of the latest image posted to a room.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"room_id": roomIDProperty(),
				},
				"required": []string{"room_id"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
