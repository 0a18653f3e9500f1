package mcpserver

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/claudify/internal/errors"
	"github.com/wagiedev/claudify/internal/message"
	"github.com/wagiedev/claudify/internal/provider"
)

const (
	// Name is the implementation name announced to MCP clients.
	Name = "claudify"

	// ExecuteTool runs a prompt.
	ExecuteTool = "execute"
	// StatusTool reports provider health.
	StatusTool = "status"
)

var errEmptyPrompt = stderrors.New("prompt is required")

// ExecuteInput is the argument object of the execute tool.
type ExecuteInput struct {
	Prompt          string `json:"prompt" jsonschema:"the prompt to send"`
	Model           string `json:"model,omitempty" jsonschema:"model id or alias such as sonnet or opus"`
	Workspace       string `json:"workspace,omitempty" jsonschema:"working directory for the run"`
	SessionID       string `json:"session_id,omitempty" jsonschema:"session to resume"`
	ContinueSession bool   `json:"continue_session,omitempty" jsonschema:"continue the most recent conversation in the workspace"`
	TimeoutMs       int64  `json:"timeout_ms,omitempty" jsonschema:"execution timeout in milliseconds"`
}

// ExecuteOutput is the structured result of the execute tool.
type ExecuteOutput struct {
	Success  bool                   `json:"success"`
	Content  string                 `json:"content"`
	Metadata message.ResultMetadata `json:"metadata"`
	Error    string                 `json:"error,omitempty"`
}

// StatusInput is the (empty) argument object of the status tool.
type StatusInput struct{}

// StatusOutput is the structured result of the status tool.
type StatusOutput struct {
	Provider string          `json:"provider"`
	Status   provider.Status `json:"status"`
}

// Option configures a Server.
type Option func(*Server)

// WithVersion sets the version announced to clients.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// Server hosts a provider behind MCP tools.
type Server struct {
	provider provider.Provider
	log      *slog.Logger
	version  string
	server   *mcp.Server
}

// New builds a Server for p. The provider must already be initialized.
func New(p provider.Provider, log *slog.Logger, opts ...Option) (*Server, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Server{
		provider: p,
		log:      log.With("component", "mcp_server"),
		version:  "dev",
	}

	for _, opt := range opts {
		opt(s)
	}

	inputSchema, err := executeSchema()
	if err != nil {
		return nil, fmt.Errorf("build execute schema: %w", err)
	}

	s.server = mcp.NewServer(&mcp.Implementation{Name: Name, Version: s.version}, nil)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ExecuteTool,
		Description: fmt.Sprintf("Run a prompt through %s and return its reply.", p.Name()),
		InputSchema: inputSchema,
	}, s.execute)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        StatusTool,
		Description: fmt.Sprintf("Report the health and request counters of %s.", p.Name()),
	}, s.status)

	return s, nil
}

// MCP returns the underlying SDK server.
func (s *Server) MCP() *mcp.Server {
	return s.server
}

// Run serves over stdin/stdout until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("serving MCP over stdio", "provider", s.provider.ID())

	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) execute(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	in ExecuteInput,
) (*mcp.CallToolResult, ExecuteOutput, error) {
	if strings.TrimSpace(in.Prompt) == "" {
		return nil, ExecuteOutput{}, errEmptyPrompt
	}

	sessionID := message.SessionID(in.SessionID)

	req := &message.ExecutionRequest{
		Messages: message.Messages{message.NewUser(in.Prompt, sessionID)},
		Options: message.ExecutionOptions{
			ModelID:         in.Model,
			WorkspacePath:   in.Workspace,
			Timeout:         time.Duration(in.TimeoutMs) * time.Millisecond,
			ContinueSession: in.ContinueSession,
			SessionID:       sessionID,
		},
	}

	s.log.Debug("execute tool called",
		"model", in.Model,
		"workspace", in.Workspace,
		"continuity", req.Options.Continuity(),
	)

	res, err := s.provider.Execute(ctx, req)
	if err != nil {
		kind, _ := errors.KindOf(err)
		s.log.Warn("execute tool failed", "kind", kind, "error", err)

		return ErrorResult(errorText(err)), ExecuteOutput{Error: err.Error()}, nil
	}

	out := ExecuteOutput{
		Success:  res.Success,
		Content:  res.Content(),
		Metadata: res.Metadata,
		Error:    res.Error,
	}

	if !res.Success {
		return ErrorResult(res.Error), out, nil
	}

	return TextResult(out.Content), out, nil
}

func (s *Server) status(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	st := s.provider.Status(ctx)

	health := "healthy"
	if !st.Healthy {
		health = "unhealthy"
	}

	text := fmt.Sprintf("%s is %s (%d requests, %d failed)",
		s.provider.Name(), health, st.Metrics.TotalRequests, st.Metrics.FailedRequests)

	return TextResult(text), StatusOutput{Provider: s.provider.Name(), Status: st}, nil
}

// executeSchema infers the execute input schema and tightens the numeric
// bounds inference cannot express.
func executeSchema() (*jsonschema.Schema, error) {
	schema, err := jsonschema.For[ExecuteInput](nil)
	if err != nil {
		return nil, err
	}

	if timeout, ok := schema.Properties["timeout_ms"]; ok {
		minimum := 0.0
		timeout.Minimum = &minimum
	}

	if prompt, ok := schema.Properties["prompt"]; ok {
		minLength := 1
		prompt.MinLength = &minLength
	}

	return schema, nil
}
