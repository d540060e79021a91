package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterMCP registers the render tools on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerRenderTool(srv)
	s.registerListTemplatesTool(srv)
	s.registerPutTemplateTool(srv)
}

// inputSchema builds a JSON Schema object with type "object".
func inputSchema(properties map[string]any, required []string) map[string]any {
	sch := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		sch["required"] = required
	}
	return sch
}

// addTool decodes the arguments into a fresh *T, calls endpoint and returns
// its result as JSON text. Errors become tool errors, not protocol errors.
func addTool[T any](srv *mcp.Server, tool *mcp.Tool, endpoint func(context.Context, *T) (any, error)) {
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args T
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				var res mcp.CallToolResult
				res.SetError(fmt.Errorf("invalid arguments: %w", err))
				return &res, nil
			}
		}

		resp, err := endpoint(ctx, &args)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(errors.New(err.Error()))
			return &res, nil
		}

		data, err := json.Marshal(resp)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("marshal: %w", err))
			return &res, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
}

// --- render ---

func (s *Service) registerRenderTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "domfill_render",
		Description: "Fill HTML with declarative rules (query -> text/html/remove/attrs/content) and return HTML or Markdown.",
		InputSchema: inputSchema(map[string]any{
			"html":     map[string]any{"type": "string", "description": "Markup to fill. Overrides the template's markup."},
			"template": map[string]any{"type": "string", "description": "Name of a stored template"},
			"rules":    map[string]any{"type": "string", "description": "YAML rule set, applied after the template's rules"},
			"engine":   map[string]any{"type": "string", "enum": []any{"css", "htmlquery"}, "description": "Selector engine, overrides the rules"},
			"document": map[string]any{"type": "boolean", "description": "Parse as a full document instead of a fragment"},
			"format":   map[string]any{"type": "string", "enum": []any{FormatHTML, FormatMarkdown}, "description": "Output format (default html)"},
		}, nil),
	}
	addTool(srv, tool, func(ctx context.Context, req *Request) (any, error) {
		return s.Render(ctx, *req)
	})
}

// --- list_templates ---

type listTemplatesReq struct{}

func (s *Service) registerListTemplatesTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "domfill_list_templates",
		Description: "List stored templates with their markup and rules.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}
	addTool(srv, tool, func(ctx context.Context, _ *listTemplatesReq) (any, error) {
		list, err := s.Templates(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"templates": list}, nil
	})
}

// --- put_template ---

type putTemplateReq struct {
	Name  string `json:"name"`
	HTML  string `json:"html"`
	Rules string `json:"rules"`
}

func (s *Service) registerPutTemplateTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "domfill_put_template",
		Description: "Store (or replace) a named template: markup plus a YAML rule set.",
		InputSchema: inputSchema(map[string]any{
			"name":  map[string]any{"type": "string", "description": "Template name"},
			"html":  map[string]any{"type": "string", "description": "Template markup"},
			"rules": map[string]any{"type": "string", "description": "YAML rule set"},
		}, []string{"name", "html"}),
	}
	addTool(srv, tool, func(ctx context.Context, req *putTemplateReq) (any, error) {
		return s.PutTemplate(ctx, req.Name, req.HTML, req.Rules)
	})
}
