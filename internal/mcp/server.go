package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vault-md/tmatch/internal/logging"
	"github.com/vault-md/tmatch/internal/scope"
	"github.com/vault-md/tmatch/internal/tm"
	"github.com/vault-md/tmatch/internal/usecase"
)

// Options configures the MCP server.
type Options struct {
	Version string
	// DefaultOwner is used when a tool call names no owner.
	DefaultOwner string
	Logger       *slog.Logger
}

// Server exposes the translation memory as MCP tools.
type Server struct {
	server       *mcp.Server
	memory       *usecase.Memory
	defaultOwner string
	logger       *slog.Logger
}

// NewServer creates a new MCP server instance over memory.
func NewServer(memory *usecase.Memory, opts Options) *Server {
	version := opts.Version
	if version == "" {
		version = "dev"
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "tmatch",
		Version: version,
	}, nil)

	s := &Server{
		server:       mcpServer,
		memory:       memory,
		defaultOwner: opts.DefaultOwner,
		logger:       logging.NewComponentLogger(opts.Logger, "mcp"),
	}
	s.registerTools()

	return s
}

// Run serves tool calls over stdio until ctx is done or the client leaves.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "tm_lookup",
		Description: "Find stored translations similar to a source text, best match first",
	}, s.handleLookup)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "tm_store",
		Description: "Remember a source text and its translation",
	}, s.handleStore)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "tm_store_batch",
		Description: "Remember several translations at once; failing items do not stop the rest",
	}, s.handleStoreBatch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "tm_accept",
		Description: "Record that a suggested translation was used",
	}, s.handleAccept)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "tm_stats",
		Description: "Summarise the translation memory visible to the caller",
	}, s.handleStats)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "tm_clear",
		Description: "Delete the caller's entries, optionally for one language pair",
	}, s.handleClear)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "tm_delete",
		Description: "Delete one entry owned by the caller",
	}, s.handleDelete)
}

// Input/Output types for each tool

type LookupInput struct {
	SourceLanguage  string  `json:"sourceLanguage" jsonschema:"Language code of the source text"`
	TargetLanguage  string  `json:"targetLanguage" jsonschema:"Language code of the wanted translation"`
	SourceText      string  `json:"sourceText" jsonschema:"Text to find translations for"`
	MinMatchPercent *int    `json:"minMatchPercent,omitempty" jsonschema:"Lowest similarity to return, 0 to 100"`
	MaxResults      *int    `json:"maxResults,omitempty" jsonschema:"Maximum number of matches"`
	Owner           *string `json:"owner,omitempty" jsonschema:"Owner id, defaults to the server owner"`
	Organization    *string `json:"organization,omitempty" jsonschema:"Organization id for shared memory"`
}

type LookupOutput struct {
	Matches []MatchOutput `json:"matches"`
}

type MatchOutput struct {
	EntryID        string  `json:"entryId"`
	SourceText     string  `json:"sourceText"`
	TranslatedText string  `json:"translatedText"`
	MatchPercent   int     `json:"matchPercent"`
	UseCount       int64   `json:"useCount"`
	UpdatedAt      string  `json:"updatedAt"`
	Context        *string `json:"context,omitempty"`
}

type StoreItemInput struct {
	SourceLanguage string  `json:"sourceLanguage" jsonschema:"Language code of the source text"`
	TargetLanguage string  `json:"targetLanguage" jsonschema:"Language code of the translation"`
	SourceText     string  `json:"sourceText" jsonschema:"Source text"`
	TranslatedText string  `json:"translatedText" jsonschema:"Translation of the source text"`
	Context        *string `json:"context,omitempty" jsonschema:"Optional note about where the text is used"`
}

type StoreInput struct {
	SourceLanguage string  `json:"sourceLanguage" jsonschema:"Language code of the source text"`
	TargetLanguage string  `json:"targetLanguage" jsonschema:"Language code of the translation"`
	SourceText     string  `json:"sourceText" jsonschema:"Source text"`
	TranslatedText string  `json:"translatedText" jsonschema:"Translation of the source text"`
	Context        *string `json:"context,omitempty" jsonschema:"Optional note about where the text is used"`
	Owner          *string `json:"owner,omitempty" jsonschema:"Owner id, defaults to the server owner"`
	Organization   *string `json:"organization,omitempty" jsonschema:"Organization id for shared memory"`
}

type EntryOutput struct {
	ID             string  `json:"id"`
	Scope          string  `json:"scope"`
	SourceLanguage string  `json:"sourceLanguage"`
	TargetLanguage string  `json:"targetLanguage"`
	SourceText     string  `json:"sourceText"`
	TranslatedText string  `json:"translatedText"`
	Context        *string `json:"context,omitempty"`
	UseCount       int64   `json:"useCount"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
}

type StoreBatchInput struct {
	Items        []StoreItemInput `json:"items" jsonschema:"Translations to store"`
	Owner        *string          `json:"owner,omitempty" jsonschema:"Owner id, defaults to the server owner"`
	Organization *string          `json:"organization,omitempty" jsonschema:"Organization id for shared memory"`
}

type StoreBatchOutput struct {
	Stored   int             `json:"stored"`
	Entries  []EntryOutput   `json:"entries"`
	Failures []FailureOutput `json:"failures"`
}

type FailureOutput struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type AcceptInput struct {
	EntryID string `json:"entryId" jsonschema:"Id of the entry whose translation was used"`
}

type AcceptOutput struct {
	Message string `json:"message"`
}

type ScopeInput struct {
	Owner        *string `json:"owner,omitempty" jsonschema:"Owner id, defaults to the server owner"`
	Organization *string `json:"organization,omitempty" jsonschema:"Organization id for shared memory"`
}

type StatsOutput struct {
	TotalEntries    int64              `json:"totalEntries"`
	TotalUseCount   int64              `json:"totalUseCount"`
	PerLanguagePair []LanguagePairStat `json:"perLanguagePair"`
}

type LanguagePairStat struct {
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
	EntryCount     int64  `json:"entryCount"`
	UseCount       int64  `json:"useCount"`
}

type ClearInput struct {
	SourceLanguage *string `json:"sourceLanguage,omitempty" jsonschema:"Only clear this source language"`
	TargetLanguage *string `json:"targetLanguage,omitempty" jsonschema:"Only clear this target language"`
	Owner          *string `json:"owner,omitempty" jsonschema:"Owner id, defaults to the server owner"`
	Organization   *string `json:"organization,omitempty" jsonschema:"Organization id for shared memory"`
}

type ClearOutput struct {
	Removed int64 `json:"removed"`
}

type DeleteInput struct {
	EntryID      string  `json:"entryId" jsonschema:"Id of the entry to delete"`
	Owner        *string `json:"owner,omitempty" jsonschema:"Owner id, defaults to the server owner"`
	Organization *string `json:"organization,omitempty" jsonschema:"Organization id for shared memory"`
}

type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	Message string `json:"message"`
}

// Helper function to resolve scope from input parameters
func (s *Server) resolveScope(owner, organization *string) (scope.Scope, error) {
	opts := scope.ScopeOptions{Owner: s.defaultOwner, DetectOwner: true}
	if owner != nil && *owner != "" {
		opts.Owner = *owner
	}
	if organization != nil {
		opts.Organization = *organization
	}

	sc, err := scope.ResolveScope(opts)
	if err != nil {
		return scope.Scope{}, fmt.Errorf("failed to resolve scope: %w", err)
	}
	return sc, nil
}

// begin tags ctx with a fresh correlation id and returns the tool logger.
func (s *Server) begin(ctx context.Context, tool string) (context.Context, *slog.Logger) {
	ctx = logging.WithRequestID(ctx, uuid.NewString())
	log := logging.WithContext(ctx, s.logger).With(slog.String("tool", tool))
	log.DebugContext(ctx, "tool called")
	return ctx, log
}

func parseEntryID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, tm.NewValidationError("entryId", "must be a UUID")
	}
	return id, nil
}

func stringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func toEntryOutput(e tm.Entry) EntryOutput {
	return EntryOutput{
		ID:             e.ID.String(),
		Scope:          scope.FormatScope(e.Scope),
		SourceLanguage: e.SourceLanguage,
		TargetLanguage: e.TargetLanguage,
		SourceText:     e.SourceText,
		TranslatedText: e.TranslatedText,
		Context:        e.Context,
		UseCount:       e.UseCount,
		CreatedAt:      formatTime(e.CreatedAt),
		UpdatedAt:      formatTime(e.UpdatedAt),
	}
}

// Tool handlers

func (s *Server) handleLookup(ctx context.Context, req *mcp.CallToolRequest, input LookupInput) (*mcp.CallToolResult, LookupOutput, error) {
	ctx, log := s.begin(ctx, "tm_lookup")
	sc, err := s.resolveScope(input.Owner, input.Organization)
	if err != nil {
		return nil, LookupOutput{}, err
	}

	matches, err := s.memory.Lookup(ctx, tm.LookupInput{
		Scope:           sc,
		SourceLanguage:  input.SourceLanguage,
		TargetLanguage:  input.TargetLanguage,
		SourceText:      input.SourceText,
		MinMatchPercent: input.MinMatchPercent,
		MaxResults:      input.MaxResults,
	})
	if err != nil {
		log.DebugContext(ctx, "lookup rejected", slog.Any("error", err))
		return nil, LookupOutput{}, fmt.Errorf("failed to look up translations: %w", err)
	}

	out := LookupOutput{Matches: make([]MatchOutput, 0, len(matches))}
	for _, m := range matches {
		out.Matches = append(out.Matches, MatchOutput{
			EntryID:        m.EntryID.String(),
			SourceText:     m.SourceText,
			TranslatedText: m.TranslatedText,
			MatchPercent:   m.MatchPercent,
			UseCount:       m.UseCount,
			UpdatedAt:      formatTime(m.UpdatedAt),
			Context:        m.Context,
		})
	}
	return nil, out, nil
}

func (s *Server) handleStore(ctx context.Context, req *mcp.CallToolRequest, input StoreInput) (*mcp.CallToolResult, EntryOutput, error) {
	ctx, _ = s.begin(ctx, "tm_store")
	sc, err := s.resolveScope(input.Owner, input.Organization)
	if err != nil {
		return nil, EntryOutput{}, err
	}

	entry, err := s.memory.Store(ctx, tm.StoreInput{
		Scope: sc,
		StoreItem: tm.StoreItem{
			SourceLanguage: input.SourceLanguage,
			TargetLanguage: input.TargetLanguage,
			SourceText:     input.SourceText,
			TranslatedText: input.TranslatedText,
			Context:        input.Context,
		},
	})
	if err != nil {
		return nil, EntryOutput{}, fmt.Errorf("failed to store translation: %w", err)
	}

	return nil, toEntryOutput(entry), nil
}

func (s *Server) handleStoreBatch(ctx context.Context, req *mcp.CallToolRequest, input StoreBatchInput) (*mcp.CallToolResult, StoreBatchOutput, error) {
	ctx, _ = s.begin(ctx, "tm_store_batch")
	sc, err := s.resolveScope(input.Owner, input.Organization)
	if err != nil {
		return nil, StoreBatchOutput{}, err
	}

	items := make([]tm.StoreItem, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, tm.StoreItem{
			SourceLanguage: item.SourceLanguage,
			TargetLanguage: item.TargetLanguage,
			SourceText:     item.SourceText,
			TranslatedText: item.TranslatedText,
			Context:        item.Context,
		})
	}

	result := s.memory.StoreBatch(ctx, sc, items)
	out := StoreBatchOutput{
		Stored:   len(result.Stored),
		Entries:  make([]EntryOutput, 0, len(result.Stored)),
		Failures: make([]FailureOutput, 0, len(result.Failed)),
	}
	for _, e := range result.Stored {
		out.Entries = append(out.Entries, toEntryOutput(e))
	}
	for _, f := range result.Failed {
		out.Failures = append(out.Failures, FailureOutput{Index: f.Index, Error: f.Err.Error()})
	}
	return nil, out, nil
}

func (s *Server) handleAccept(ctx context.Context, req *mcp.CallToolRequest, input AcceptInput) (*mcp.CallToolResult, AcceptOutput, error) {
	ctx, _ = s.begin(ctx, "tm_accept")
	id, err := parseEntryID(input.EntryID)
	if err != nil {
		return nil, AcceptOutput{}, err
	}

	if err := s.memory.Accept(ctx, id); err != nil {
		return nil, AcceptOutput{}, fmt.Errorf("failed to record usage: %w", err)
	}
	return nil, AcceptOutput{Message: "Usage recorded"}, nil
}

func (s *Server) handleStats(ctx context.Context, req *mcp.CallToolRequest, input ScopeInput) (*mcp.CallToolResult, StatsOutput, error) {
	ctx, _ = s.begin(ctx, "tm_stats")
	sc, err := s.resolveScope(input.Owner, input.Organization)
	if err != nil {
		return nil, StatsOutput{}, err
	}

	stats, err := s.memory.Stats(ctx, sc)
	if err != nil {
		return nil, StatsOutput{}, fmt.Errorf("failed to compute stats: %w", err)
	}

	out := StatsOutput{
		TotalEntries:    stats.TotalEntries,
		TotalUseCount:   stats.TotalUseCount,
		PerLanguagePair: make([]LanguagePairStat, 0, len(stats.PerLanguagePair)),
	}
	for _, p := range stats.PerLanguagePair {
		out.PerLanguagePair = append(out.PerLanguagePair, LanguagePairStat(p))
	}
	return nil, out, nil
}

func (s *Server) handleClear(ctx context.Context, req *mcp.CallToolRequest, input ClearInput) (*mcp.CallToolResult, ClearOutput, error) {
	ctx, _ = s.begin(ctx, "tm_clear")
	sc, err := s.resolveScope(input.Owner, input.Organization)
	if err != nil {
		return nil, ClearOutput{}, err
	}

	removed, err := s.memory.Clear(ctx, sc, stringValue(input.SourceLanguage), stringValue(input.TargetLanguage))
	if err != nil {
		return nil, ClearOutput{}, fmt.Errorf("failed to clear entries: %w", err)
	}
	return nil, ClearOutput{Removed: removed}, nil
}

func (s *Server) handleDelete(ctx context.Context, req *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	ctx, _ = s.begin(ctx, "tm_delete")
	sc, err := s.resolveScope(input.Owner, input.Organization)
	if err != nil {
		return nil, DeleteOutput{}, err
	}
	id, err := parseEntryID(input.EntryID)
	if err != nil {
		return nil, DeleteOutput{}, err
	}

	deleted, err := s.memory.Delete(ctx, sc, id)
	if err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("failed to delete entry: %w", err)
	}
	if !deleted {
		return nil, DeleteOutput{Deleted: false, Message: fmt.Sprintf("entry %s not found", id)}, nil
	}
	return nil, DeleteOutput{Deleted: true, Message: fmt.Sprintf("Deleted entry %s", id)}, nil
}
