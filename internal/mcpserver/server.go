// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes formbind forms as tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/starford/formbind/internal/apperr"
	"github.com/starford/formbind/internal/formservice"
	"github.com/starford/formbind/internal/models"
)

const (
	fieldsURI = "formbind://profile-fields"
	schemaURI = "formbind://profile-schema"
)

// Server wraps the MCP server with formbind tools.
type Server struct {
	mcp *server.MCPServer
	svc *formservice.Service
}

// New creates a new MCP server with all formbind tools registered.
func New(svc *formservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"formbind",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_seeds",
		mcp.WithDescription("List the seed documents forms can be opened from."),
	), s.listSeeds)

	s.mcp.AddTool(mcp.NewTool("open_form",
		mcp.WithDescription("Open a new profile form pre-filled from a seed. Returns the form state with its id."),
		mcp.WithString("seed", mcp.Required(), mcp.Description("Seed name (file name without extension)")),
	), s.openForm)

	s.mcp.AddTool(mcp.NewTool("read_form",
		mcp.WithDescription("Read the current model, version and per-field validation of a form."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Form id returned by open_form")),
	), s.readForm)

	s.mcp.AddTool(mcp.NewTool("set_field",
		mcp.WithDescription("Write one field of a form. Values are converted with the field's codec; "+
			"read the "+fieldsURI+" resource for the list of paths and types. "+
			"A value that fails conversion is rejected and leaves the form unchanged."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Form id")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Field path, e.g. name or address.city")),
		mcp.WithString("value", mcp.Required(), mcp.Description("Raw value; numbers and booleans are accepted too")),
		mcp.WithNumber("if_version", mcp.Description("Reject the write unless the form is at this version")),
	), s.setField)

	s.mcp.AddTool(mcp.NewTool("validate_form",
		mcp.WithDescription("Re-run validation and list the invalid fields with their messages."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Form id")),
	), s.validateForm)

	s.mcp.AddTool(mcp.NewTool("submit_form",
		mcp.WithDescription("Submit a valid form. Invalid forms are rejected with the offending fields."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Form id")),
	), s.submitForm)

	s.mcp.AddTool(mcp.NewTool("get_form_contract",
		mcp.WithDescription("Returns the profile field contract: paths, types and input rules. "+
			"Call this before set_field."),
	), s.getFormContract)

	s.mcp.AddResource(
		mcp.NewResource(fieldsURI, "Profile Fields",
			mcp.WithResourceDescription("Field paths, types and input rules of the profile form."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFieldsResource,
	)

	s.mcp.AddResource(
		mcp.NewResource(schemaURI, "Profile JSON Schema",
			mcp.WithResourceDescription("JSON Schema of the profile model."),
			mcp.WithMIMEType("application/schema+json"),
		),
		s.readSchemaResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listSeeds(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metas := s.svc.Seeds(ctx)
	if len(metas) == 0 {
		return mcp.NewToolResultText("no seeds found"), nil
	}
	lines := make([]string, 0, len(metas))
	for _, m := range metas {
		lines = append(lines, fmt.Sprintf("%s\t%s", m.Name, m.Title))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) openForm(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	seed, err := req.RequireString("seed")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.Open(ctx, seed)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(d), nil
}

func (s *Server) readForm(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.Get(ctx, id)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(d), nil
}

func (s *Server) setField(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := req.GetArguments()
	rawValue, ok := args["value"]
	if !ok {
		return mcp.NewToolResultError(`required argument "value" not found`), nil
	}
	raw, err := rawString(rawValue)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("value: %v", err)), nil
	}

	var ifVersion uint64
	if v, ok := args["if_version"]; ok && v != nil {
		ifVersion, err = cast.ToUint64E(v)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("if_version: %v", err)), nil
		}
	}

	view, err := s.svc.SetField(ctx, id, path, raw, ifVersion)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(view), nil
}

func (s *Server) validateForm(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.Validate(ctx, id)
	if err != nil {
		return toolError(err), nil
	}
	if d.Valid {
		return mcp.NewToolResultText(fmt.Sprintf("valid at version %d", d.Version)), nil
	}
	var lines []string
	for _, f := range d.Fields {
		if !f.Valid {
			lines = append(lines, fmt.Sprintf("%s: %s", f.Path, f.Message))
		}
		if f.Error != "" {
			lines = append(lines, fmt.Sprintf("%s: rejected input: %s", f.Path, f.Error))
		}
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) submitForm(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sub, err := s.svc.Submit(ctx, id)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("submitted: %s", sub.Path)), nil
}

func (s *Server) getFormContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FieldContract(s.svc.Fields())), nil
}

func (s *Server) readFieldsResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      fieldsURI,
			MIMEType: "text/markdown",
			Text:     FieldContract(s.svc.Fields()),
		},
	}, nil
}

func (s *Server) readSchemaResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := ProfileSchema()
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      schemaURI,
			MIMEType: "application/schema+json",
			Text:     string(data),
		},
	}, nil
}

// ProfileSchema renders the JSON Schema of models.Profile.
func ProfileSchema() ([]byte, error) {
	r := &jsonschema.Reflector{ExpandedStruct: true, DoNotReference: true}
	schema := r.Reflect(&models.Profile{})
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcpserver: encode schema: %w", err)
	}
	return data, nil
}

// rawString turns a tool argument into the raw text a codec parses. Lists
// are joined with the list codec's separator.
func rawString(v any) (string, error) {
	if items, ok := v.([]any); ok {
		parts, err := cast.ToStringSliceE(items)
		if err != nil {
			return "", err
		}
		return strings.Join(parts, ","), nil
	}
	return cast.ToStringE(v)
}

func toolError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("not found")
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}
