package extractor

import (
	"errors"
	"fmt"

	"nrtrewriter/internal/syntax"

	sitter "github.com/smacker/go-tree-sitter"
)

// LanguageExtractor defines the interface that each language front-end must implement.
type LanguageExtractor interface {
	GetLanguage() *sitter.Language
	BuildUnit(root *sitter.Node, src []byte, path string) *syntax.Unit
}

// ErrNoTree is reported when the parser returns without a tree.
var ErrNoTree = errors.New("parser produced no tree")

// ParseError wraps a parser failure with the file it happened in.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse file %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
