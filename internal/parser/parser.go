// Package parser provides tree-sitter-based multi-language source code parsing
// with automatic language detection from file extensions. It extracts declared
// symbols (functions, methods, types) and import statements from parsed trees.
package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// SymbolKind classifies a declared symbol. Explicit variants replace
// substring tests on raw node-type strings.
type SymbolKind int

const (
	KindOther SymbolKind = iota
	KindFunction
	KindMethod
	KindStruct
	KindClass
	KindInterface
	KindEnum
	KindModule
)

// String returns a human-readable name for the kind.
func (k SymbolKind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	case KindStruct:
		return "struct"
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindModule:
		return "module"
	default:
		return "other"
	}
}

// Callable reports whether the kind denotes a function-like symbol.
func (k SymbolKind) Callable() bool {
	return k == KindFunction || k == KindMethod
}

// TypeLike reports whether the kind denotes a type declaration.
func (k SymbolKind) TypeLike() bool {
	switch k {
	case KindStruct, KindClass, KindInterface, KindEnum:
		return true
	}
	return false
}

// Symbol represents a named declaration found in source code.
type Symbol struct {
	Name      string
	Kind      SymbolKind
	StartLine int
	EndLine   int
}

// langInfo holds tree-sitter language metadata: which node types declare
// symbols (and of what kind) and which carry imports.
type langInfo struct {
	lang            *sitter.Language
	symbolNodeKinds map[string]SymbolKind
	importNodeType  []string
}

// registry maps file extensions to language info for auto-detection.
var registry = map[string]langInfo{
	".go": {
		lang: golang.GetLanguage(),
		symbolNodeKinds: map[string]SymbolKind{
			"function_declaration": KindFunction,
			"method_declaration":   KindMethod,
			"type_spec":            KindStruct,
		},
		importNodeType: []string{"import_declaration"},
	},
	".py": {
		lang: python.GetLanguage(),
		symbolNodeKinds: map[string]SymbolKind{
			"function_definition": KindFunction,
			"class_definition":    KindClass,
		},
		importNodeType: []string{"import_statement", "import_from_statement"},
	},
	".js": {
		lang: javascript.GetLanguage(),
		symbolNodeKinds: map[string]SymbolKind{
			"function_declaration": KindFunction,
			"method_definition":    KindMethod,
			"class_declaration":    KindClass,
		},
		importNodeType: []string{"import_statement"},
	},
	".ts": {
		lang: typescript.GetLanguage(),
		symbolNodeKinds: map[string]SymbolKind{
			"function_declaration":  KindFunction,
			"method_definition":     KindMethod,
			"class_declaration":     KindClass,
			"interface_declaration": KindInterface,
			"enum_declaration":      KindEnum,
		},
		importNodeType: []string{"import_statement"},
	},
	".java": {
		lang: java.GetLanguage(),
		symbolNodeKinds: map[string]SymbolKind{
			"method_declaration":      KindMethod,
			"constructor_declaration": KindMethod,
			"class_declaration":       KindClass,
			"interface_declaration":   KindInterface,
			"enum_declaration":        KindEnum,
		},
		importNodeType: []string{"import_declaration"},
	},
	".rs": {
		lang: rust.GetLanguage(),
		symbolNodeKinds: map[string]SymbolKind{
			"function_item":           KindFunction,
			"function_signature_item": KindFunction,
			"struct_item":             KindStruct,
			"enum_item":               KindEnum,
			"trait_item":              KindInterface,
			"mod_item":                KindModule,
		},
		importNodeType: []string{"use_declaration"},
	},
	".rb": {
		lang: ruby.GetLanguage(),
		symbolNodeKinds: map[string]SymbolKind{
			"method": KindMethod,
			"class":  KindClass,
			"module": KindModule,
		},
		importNodeType: []string{"call"}, // require/require_relative calls
	},
	".c": {
		lang: c.GetLanguage(),
		symbolNodeKinds: map[string]SymbolKind{
			"function_definition": KindFunction,
			"struct_specifier":    KindStruct,
			"enum_specifier":      KindEnum,
		},
		importNodeType: []string{"preproc_include"},
	},
	".h": {
		lang: c.GetLanguage(),
		symbolNodeKinds: map[string]SymbolKind{
			"function_definition": KindFunction,
			"struct_specifier":    KindStruct,
			"enum_specifier":      KindEnum,
		},
		importNodeType: []string{"preproc_include"},
	},
	".cc": {
		lang: cpp.GetLanguage(),
		symbolNodeKinds: map[string]SymbolKind{
			"function_definition": KindFunction,
			"class_specifier":     KindClass,
			"struct_specifier":    KindStruct,
		},
		importNodeType: []string{"preproc_include"},
	},
	".cpp": {
		lang: cpp.GetLanguage(),
		symbolNodeKinds: map[string]SymbolKind{
			"function_definition": KindFunction,
			"class_specifier":     KindClass,
			"struct_specifier":    KindStruct,
		},
		importNodeType: []string{"preproc_include"},
	},
}

// LanguageForExt returns the language name for a file extension, or "" when
// the extension is not in the registry.
func LanguageForExt(ext string) string {
	switch ext {
	case ".go":
		return "go"
	case ".py":
		return "python"
	case ".js", ".jsx":
		return "javascript"
	case ".ts", ".tsx":
		return "typescript"
	case ".java":
		return "java"
	case ".rs":
		return "rust"
	case ".rb":
		return "ruby"
	case ".c", ".h":
		return "c"
	case ".cc", ".cpp":
		return "cpp"
	default:
		return ""
	}
}

// Parser wraps tree-sitter to parse source files with automatic language detection.
type Parser struct {
	inner *sitter.Parser
}

// NewParser creates a new Parser instance.
func NewParser() *Parser {
	return &Parser{
		inner: sitter.NewParser(),
	}
}

// Parse parses source code from the given filename, auto-detecting the language
// from the file extension. Returns an error for unsupported extensions.
func (p *Parser) Parse(filename string, source []byte) (*Tree, error) {
	ext := filepath.Ext(filename)
	info, ok := registry[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported file extension %q: language not in registry", ext)
	}

	p.inner.SetLanguage(info.lang)
	sitterTree, err := p.inner.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	return &Tree{
		tree:   sitterTree,
		source: source,
		info:   info,
	}, nil
}

// Tree wraps a parsed tree-sitter syntax tree with convenience methods
// for extracting symbols and imports.
type Tree struct {
	tree   *sitter.Tree
	source []byte
	info   langInfo
}

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	t.tree.Close()
}

// RootNode returns the root node of the parsed syntax tree.
func (t *Tree) RootNode() *sitter.Node {
	return t.tree.RootNode()
}

// Source returns the source bytes the tree was parsed from.
func (t *Tree) Source() []byte {
	return t.source
}

// Symbols extracts all declared symbols from the syntax tree in declaration
// order. Anonymous declarations are skipped.
func (t *Tree) Symbols() []Symbol {
	var syms []Symbol

	walk(t.RootNode(), func(node *sitter.Node) {
		kind, ok := t.info.symbolNodeKinds[node.Type()]
		if !ok {
			return
		}
		name := extractSymbolName(node, t.source)
		if name == "" {
			return
		}
		syms = append(syms, Symbol{
			Name:      name,
			Kind:      kind,
			StartLine: int(node.StartPoint().Row) + 1, // 0-indexed to 1-indexed
			EndLine:   int(node.EndPoint().Row) + 1,
		})
	})

	return syms
}

// Functions returns only the callable symbols (functions and methods).
func (t *Tree) Functions() []Symbol {
	var funcs []Symbol
	for _, s := range t.Symbols() {
		if s.Kind.Callable() {
			funcs = append(funcs, s)
		}
	}
	return funcs
}

// Imports extracts import paths/module names from the syntax tree.
func (t *Tree) Imports() []string {
	var imports []string
	importTypes := make(map[string]bool, len(t.info.importNodeType))
	for _, it := range t.info.importNodeType {
		importTypes[it] = true
	}

	walk(t.RootNode(), func(node *sitter.Node) {
		if !importTypes[node.Type()] {
			return
		}
		text := node.Content(t.source)
		paths := extractImportPaths(text, node, t.source)
		imports = append(imports, paths...)
	})

	return imports
}

// walk performs a depth-first traversal of the syntax tree, calling fn for each node.
func walk(node *sitter.Node, fn func(*sitter.Node)) {
	if node == nil {
		return
	}
	fn(node)
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child != nil {
			walk(child, fn)
		}
	}
}

// extractSymbolName finds the name identifier within a declaration node.
// It checks the "name" field first (Go, Python, JS, TS, Java, Rust, Ruby),
// then the "declarator" field for C/C++ function_definition nodes.
func extractSymbolName(node *sitter.Node, source []byte) string {
	nameNode := node.ChildByFieldName("name")
	if nameNode != nil {
		return nameNode.Content(source)
	}

	// C/C++: function_definition -> declarator (function_declarator) -> declarator (identifier)
	declNode := node.ChildByFieldName("declarator")
	if declNode != nil {
		innerName := declNode.ChildByFieldName("declarator")
		if innerName != nil {
			return innerName.Content(source)
		}
	}

	return ""
}

// extractImportPaths parses import statement text to extract clean module/package paths.
func extractImportPaths(text string, node *sitter.Node, source []byte) []string {
	switch node.Type() {
	case "import_declaration":
		// Go: import "fmt" or import ( "fmt"\n"os" )
		// Java: import java.util.List;
		return extractImportDeclaration(node, source)
	case "import_statement":
		// Python: import os, sys
		// JS/TS: import { foo } from 'bar'
		return extractGenericImport(text)
	case "import_from_statement":
		// Python: from pathlib import Path
		return extractPythonFromImport(text)
	case "use_declaration":
		// Rust: use std::io;
		return extractRustUse(text)
	case "preproc_include":
		// C/C++: #include <stdio.h> or #include "myheader.h"
		return extractCInclude(text)
	case "call":
		// Ruby: require 'foo' or require_relative 'bar'
		return extractRubyRequire(text)
	default:
		return []string{extractImportPath(text)}
	}
}

// extractImportDeclaration handles import declarations for Go and Java.
func extractImportDeclaration(node *sitter.Node, source []byte) []string {
	var paths []string
	seen := make(map[string]bool)

	walk(node, func(n *sitter.Node) {
		var content string
		switch n.Type() {
		case "import_spec":
			content = extractImportPath(n.Content(source))
		case "interpreted_string_literal":
			content = extractImportPath(n.Content(source))
		case "scoped_identifier":
			// Java: java.util.List, only take the top-level scoped_identifier
			if n.Parent() != nil && n.Parent().Type() == "scoped_identifier" {
				return
			}
			content = n.Content(source)
		default:
			return
		}
		if content != "" && !seen[content] {
			seen[content] = true
			paths = append(paths, content)
		}
	})
	return paths
}

// extractGenericImport handles Python "import x, y" and JS/TS "import ... from 'x'" statements.
func extractGenericImport(text string) []string {
	if strings.Contains(text, " from ") {
		parts := strings.SplitN(text, " from ", 2)
		if len(parts) == 2 {
			return []string{extractImportPath(parts[1])}
		}
	}

	text = strings.TrimPrefix(text, "import ")
	text = strings.TrimSpace(text)
	parts := strings.Split(text, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if idx := strings.Index(p, " as "); idx >= 0 {
			p = p[:idx]
		}
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// extractPythonFromImport handles Python "from x import y" statements.
func extractPythonFromImport(text string) []string {
	text = strings.TrimPrefix(text, "from ")
	parts := strings.SplitN(text, " import ", 2)
	if len(parts) >= 1 {
		module := strings.TrimSpace(parts[0])
		if module != "" {
			return []string{module}
		}
	}
	return nil
}

// extractRustUse handles Rust "use std::io;" statements.
func extractRustUse(text string) []string {
	text = strings.TrimPrefix(text, "use ")
	text = strings.TrimSuffix(text, ";")
	text = strings.TrimSpace(text)
	if text != "" {
		return []string{text}
	}
	return nil
}

// extractCInclude handles C/C++ #include directives.
func extractCInclude(text string) []string {
	text = strings.TrimPrefix(text, "#include")
	text = strings.TrimSpace(text)
	text = strings.Trim(text, "<>\"")
	text = strings.TrimSpace(text)
	if text != "" {
		return []string{text}
	}
	return nil
}

// extractRubyRequire handles Ruby require and require_relative calls.
func extractRubyRequire(text string) []string {
	if !strings.HasPrefix(text, "require") {
		return nil
	}
	for _, prefix := range []string{"require_relative ", "require "} {
		if strings.HasPrefix(text, prefix) {
			rest := strings.TrimPrefix(text, prefix)
			cleaned := extractImportPath(rest)
			if cleaned != "" {
				return []string{cleaned}
			}
		}
	}
	return nil
}

// extractImportPath cleans an import path string by removing quotes, semicolons,
// and other surrounding syntax.
func extractImportPath(text string) string {
	text = strings.TrimSpace(text)
	text = strings.Trim(text, "\"'`();")
	text = strings.TrimSpace(text)
	return text
}
