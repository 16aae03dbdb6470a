package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"nrtrewriter/internal/syntax"

	sitter "github.com/smacker/go-tree-sitter"
)

// Extractor orchestrates parsing using a language-specific builder. Parsers
// are not safe for concurrent use, so each call creates its own.
type Extractor struct {
	langExtractor LanguageExtractor
	langName      string
	logger        *slog.Logger
}

type Option func(*Extractor)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) { e.logger = logger }
}

// NewExtractor creates a new extractor for a given language.
func NewExtractor(lang string, opts ...Option) (*Extractor, error) {
	var langExt LanguageExtractor
	switch lang {
	case "csharp", "c#", "cs":
		langExt = &CSharpExtractor{}
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
	e := &Extractor{langExtractor: langExt, langName: lang, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Extract parses src and builds the declaration tree of the file at path.
// Files with syntax errors still produce a unit: tree-sitter recovers around
// the broken region and the rest of the file is usable.
func (e *Extractor) Extract(ctx context.Context, path string, src []byte) (*syntax.Unit, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(e.langExtractor.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if tree == nil {
		return nil, &ParseError{Path: path, Err: ErrNoTree}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		e.logger.Warn("source has syntax errors; continuing with recovered tree", "path", path)
	}
	return e.langExtractor.BuildUnit(root, src, path), nil
}

// ExtractFromFile reads and parses a single source file.
func (e *Extractor) ExtractFromFile(ctx context.Context, path string) (*syntax.Unit, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return e.Extract(ctx, path, src)
}
