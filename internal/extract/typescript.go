package extract

import (
	"context"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/mvp-joe/refaudit/internal/diff"
)

// typeScriptExtractor extracts top-level definitions from TypeScript
// sources via tree-sitter. Normalization here is the weak textual path:
// comments stripped, whitespace collapsed (see normalizeWeak).
type typeScriptExtractor struct {
	language   *sitter.Language
	lang       string
	extensions []string
}

// NewTypeScriptExtractor creates the TypeScript extractor.
func NewTypeScriptExtractor() Extractor {
	return &typeScriptExtractor{
		language:   sitter.NewLanguage(typescript.LanguageTypescript()),
		lang:       "typescript",
		extensions: []string{".ts", ".mts", ".cts"},
	}
}

// NewTSXExtractor creates the extractor for TSX sources, which need the
// separate TSX grammar.
func NewTSXExtractor() Extractor {
	return &typeScriptExtractor{
		language:   sitter.NewLanguage(typescript.LanguageTSX()),
		lang:       "tsx",
		extensions: []string{".tsx"},
	}
}

// NewJavaScriptExtractor creates the JavaScript extractor. JavaScript uses
// the TypeScript grammar, same as the TypeScript path minus annotations.
func NewJavaScriptExtractor() Extractor {
	return &typeScriptExtractor{
		language:   sitter.NewLanguage(typescript.LanguageTypescript()),
		lang:       "javascript",
		extensions: []string{".js", ".jsx", ".mjs", ".cjs"},
	}
}

func (e *typeScriptExtractor) Language() string {
	return e.lang
}

func (e *typeScriptExtractor) Extensions() []string {
	return e.extensions
}

// Extract parses one source file and returns its top-level definitions.
// Parsing fails closed: a tree containing ERROR nodes yields a *ParseError
// and no definitions at all.
func (e *typeScriptExtractor) Extract(ctx context.Context, path string, source []byte) ([]diff.Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(e.language)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, &ParseError{Path: path, Lang: e.lang, Message: "tree-sitter returned no tree"}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, &ParseError{
			Path:    path,
			Lang:    e.lang,
			Message: "source contains syntax errors",
			Line:    firstErrorLine(root),
		}
	}

	var defs []diff.Definition
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(uint(i))
		e.extractStatement(child, child, source, path, &defs)
	}
	return defs, nil
}

// extractStatement examines one top-level statement. stmt is the node whose
// full text becomes the definition body (so an export wrapper or a wrapping
// call stays part of the body); node is the declaration being classified.
func (e *typeScriptExtractor) extractStatement(stmt, node *sitter.Node, source []byte, path string, defs *[]diff.Definition) {
	switch node.Kind() {
	case "export_statement":
		// Unwrap but keep the export statement as the body: exported-ness
		// is part of the module's behavior.
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(uint(i))
			if child.IsNamed() && child.Kind() != "comment" && child.Kind() != "decorator" {
				e.extractStatement(stmt, child, source, path, defs)
			}
		}
	case "function_declaration", "generator_function_declaration":
		e.addNamed(stmt, node, source, path, diff.KindFunction, defs)
	case "class_declaration", "abstract_class_declaration":
		e.addNamed(stmt, node, source, path, diff.KindClass, defs)
	case "interface_declaration":
		e.addNamed(stmt, node, source, path, diff.KindInterface, defs)
	case "type_alias_declaration":
		e.addNamed(stmt, node, source, path, diff.KindTypeAlias, defs)
	case "enum_declaration":
		e.addNamed(stmt, node, source, path, diff.KindEnum, defs)
	case "lexical_declaration", "variable_declaration":
		e.extractBindings(stmt, node, source, path, defs)
	}
}

// addNamed records a definition keyed by the declaration's name field, with
// the whole statement span as the normalized body.
func (e *typeScriptExtractor) addNamed(stmt, node *sitter.Node, source []byte, path string, kind diff.Kind, defs *[]diff.Definition) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, source)
	body := normalizeWeak(stmt, source)

	*defs = append(*defs, diff.Definition{
		QualifiedName:  diff.QualifiedName(kind, name),
		Name:           name,
		Kind:           kind,
		FilePath:       path,
		StartLine:      int(stmt.StartPosition().Row) + 1,
		EndLine:        int(stmt.EndPosition().Row) + 1,
		NormalizedBody: body,
		Fingerprint:    diff.Fingerprint(body),
	})
}

// extractBindings handles top-level const/let/var statements. A binding
// whose initializer is function-like (arrow function, function expression,
// or a call wrapping one, e.g. a memoization wrapper) is a function
// definition whose body is the entire statement. A binding with a literal
// or simple-expression initializer is a constant.
func (e *typeScriptExtractor) extractBindings(stmt, node *sitter.Node, source []byte, path string, defs *[]diff.Definition) {
	for _, decl := range childrenByKind(node, "variable_declarator") {
		nameNode := decl.ChildByFieldName("name")
		if nameNode == nil || nameNode.Kind() != "identifier" {
			// Destructuring patterns have no single binding name; skip.
			continue
		}
		name := nodeText(nameNode, source)

		kind := diff.KindConstant
		if value := decl.ChildByFieldName("value"); value != nil && isFunctionLike(value) {
			kind = diff.KindFunction
		}

		body := normalizeWeak(stmt, source)
		*defs = append(*defs, diff.Definition{
			QualifiedName:  diff.QualifiedName(kind, name),
			Name:           name,
			Kind:           kind,
			FilePath:       path,
			StartLine:      int(stmt.StartPosition().Row) + 1,
			EndLine:        int(stmt.EndPosition().Row) + 1,
			NormalizedBody: body,
			Fingerprint:    diff.Fingerprint(body),
		})
	}
}

// isFunctionLike reports whether an initializer expression produces a
// function value: a function expression, an arrow function, or a call
// expression with a function-like argument (higher-order wrappers).
func isFunctionLike(node *sitter.Node) bool {
	switch node.Kind() {
	case "arrow_function", "function_expression", "generator_function":
		return true
	case "call_expression":
		args := node.ChildByFieldName("arguments")
		if args == nil {
			return false
		}
		for i := 0; i < int(args.ChildCount()); i++ {
			if isFunctionLike(args.Child(uint(i))) {
				return true
			}
		}
	}
	return false
}
