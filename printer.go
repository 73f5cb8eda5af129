// printer.go — AST dotted-depth printer and runtime value printer.
//
// Grounded on the teacher's printer.go for structure (a depth-first walk
// building a strings.Builder line by line) but driven by entirely different
// rules: spec.md §6's "one node per line, prefixed by d dots at depth d"
// format for -ast/-st, and a separate canonical printed form for the values
// Print writes at runtime.
package rpal

import (
	"strconv"
	"strings"
)

// FormatAST renders root in the -ast/-st CLI format: pre-order, one node
// per line, each line prefixed by as many dots as its depth.
func FormatAST(root *ASTNode) string {
	var b strings.Builder
	writeASTNode(&b, root, 0)
	return b.String()
}

func writeASTNode(b *strings.Builder, node *ASTNode, depth int) {
	if node == nil {
		return
	}
	b.WriteString(strings.Repeat(".", depth))
	b.WriteString(astNodeLabel(node))
	b.WriteByte('\n')
	writeASTNode(b, node.Child, depth+1)
	writeASTNode(b, node.Sibling, depth)
}

func astNodeLabel(node *ASTNode) string {
	switch node.Type {
	case IDENTIFIER:
		return "<ID:" + node.Value + ">"
	case INTEGER:
		return "<INT:" + node.Value + ">"
	case STRING:
		return "<STR:'" + node.Value + "'>"
	case TRUE:
		return "<true>"
	case FALSE:
		return "<false>"
	default:
		return node.Type.String()
	}
}

// FormatValue renders v in the canonical printed form used by the Print
// built-in: integers and strings print bare, booleans as "true"/"false",
// nil as "nil", dummy as "dummy", tuples as a comma-separated parenthesized
// list, and every function-shaped value as a fixed placeholder (RPAL has no
// notion of printing a function's source).
func FormatValue(v Value) string {
	switch v.Tag {
	case VInt:
		return strconv.FormatInt(v.Int, 10)
	case VString:
		return v.Str
	case VBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case VNil:
		return "nil"
	case VDummy:
		return "dummy"
	case VTuple:
		parts := make([]string, len(v.Tuple))
		for i, e := range v.Tuple {
			parts[i] = FormatValue(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return "[function]"
	}
}
