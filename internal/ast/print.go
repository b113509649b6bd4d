package ast

import (
	"fmt"
	"strings"
)

// Print renders n as an indented S-expression, used by debug tooling and
// golden tests. Unlike the teacher's per-node String() methods (one
// bytes.Buffer-returning method per concrete type), a single recursive
// printer covers the much larger AeroJS node set without fifty near-
// identical String() bodies.
func Print(n Node) string {
	var sb strings.Builder
	print1(&sb, n, 0)
	return sb.String()
}

func indent(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
}

func print1(sb *strings.Builder, n Node, depth int) {
	indent(sb, depth)
	if n == nil {
		sb.WriteString("nil\n")
		return
	}
	switch v := n.(type) {
	case *Program:
		sb.WriteString("Program\n")
		for _, s := range v.Body {
			print1(sb, s, depth+1)
		}
	case *Identifier:
		fmt.Fprintf(sb, "Identifier %q\n", v.Name)
	case *PrivateIdentifier:
		fmt.Fprintf(sb, "PrivateIdentifier #%s\n", v.Name)
	case *NumberLiteral:
		fmt.Fprintf(sb, "Number %v\n", v.Value)
	case *BigIntLiteral:
		fmt.Fprintf(sb, "BigInt %sn (radix %d)\n", v.Digits, v.Radix)
	case *StringLiteral:
		fmt.Fprintf(sb, "String %q\n", v.Value)
	case *BooleanLiteral:
		fmt.Fprintf(sb, "Boolean %v\n", v.Value)
	case *NullLiteral:
		sb.WriteString("Null\n")
	case *RegexLiteral:
		fmt.Fprintf(sb, "Regex /%s/%s\n", v.Pattern, v.Flags)
	case *TemplateLiteral:
		sb.WriteString("TemplateLiteral\n")
		for i, q := range v.Quasis {
			indent(sb, depth+1)
			fmt.Fprintf(sb, "quasi %q tail=%v\n", q.Cooked, q.Tail)
			if i < len(v.Expressions) {
				print1(sb, v.Expressions[i], depth+1)
			}
		}
	case *TaggedTemplate:
		sb.WriteString("TaggedTemplate\n")
		print1(sb, v.Tag, depth+1)
		print1(sb, v.Quasi, depth+1)
	case *ArrayLiteral:
		sb.WriteString("ArrayLiteral\n")
		for _, e := range v.Elements {
			print1(sb, e, depth+1)
		}
	case *SpreadElement:
		sb.WriteString("Spread\n")
		print1(sb, v.Argument, depth+1)
	case *ObjectLiteral:
		sb.WriteString("ObjectLiteral\n")
		for _, p := range v.Properties {
			indent(sb, depth+1)
			fmt.Fprintf(sb, "property kind=%d computed=%v\n", p.Kind, p.Computed)
			print1(sb, p.Key, depth+2)
			if p.Value != nil {
				print1(sb, p.Value, depth+2)
			}
		}
	case *ArrayPattern:
		sb.WriteString("ArrayPattern\n")
		for _, e := range v.Elements {
			print1(sb, e, depth+1)
		}
	case *ObjectPattern:
		sb.WriteString("ObjectPattern\n")
		for _, p := range v.Properties {
			print1(sb, p.Key, depth+1)
			print1(sb, p.Value, depth+1)
		}
	case *RestElement:
		sb.WriteString("Rest\n")
		print1(sb, v.Argument, depth+1)
	case *AssignmentPattern:
		sb.WriteString("AssignmentPattern\n")
		print1(sb, v.Left, depth+1)
		print1(sb, v.Right, depth+1)
	case *FunctionDeclaration:
		printFunction(sb, "FunctionDeclaration", v.Fn, depth)
	case *FunctionExpression:
		printFunction(sb, "FunctionExpression", v.Fn, depth)
	case *ArrowFunctionExpression:
		printFunction(sb, "ArrowFunction", v.Fn, depth)
	case *ClassDeclaration:
		printClass(sb, "ClassDeclaration", v.Class, depth)
	case *ClassExpression:
		printClass(sb, "ClassExpression", v.Class, depth)
	case *ThisExpression:
		sb.WriteString("This\n")
	case *SuperExpression:
		sb.WriteString("Super\n")
	case *UnaryExpression:
		fmt.Fprintf(sb, "Unary %s prefix=%v\n", v.Operator, v.Prefix)
		print1(sb, v.Argument, depth+1)
	case *UpdateExpression:
		fmt.Fprintf(sb, "Update %s prefix=%v\n", v.Operator, v.Prefix)
		print1(sb, v.Argument, depth+1)
	case *BinaryExpression:
		fmt.Fprintf(sb, "Binary %s\n", v.Operator)
		print1(sb, v.Left, depth+1)
		print1(sb, v.Right, depth+1)
	case *LogicalExpression:
		fmt.Fprintf(sb, "Logical %s\n", v.Operator)
		print1(sb, v.Left, depth+1)
		print1(sb, v.Right, depth+1)
	case *AssignmentExpression:
		fmt.Fprintf(sb, "Assign %s\n", v.Operator)
		print1(sb, v.Left, depth+1)
		print1(sb, v.Right, depth+1)
	case *ConditionalExpression:
		sb.WriteString("Conditional\n")
		print1(sb, v.Test, depth+1)
		print1(sb, v.Consequent, depth+1)
		print1(sb, v.Alternate, depth+1)
	case *SequenceExpression:
		sb.WriteString("Sequence\n")
		for _, e := range v.Expressions {
			print1(sb, e, depth+1)
		}
	case *MemberExpression:
		fmt.Fprintf(sb, "Member computed=%v optional=%v\n", v.Computed, v.Optional)
		print1(sb, v.Object, depth+1)
		print1(sb, v.Property, depth+1)
	case *CallExpression:
		fmt.Fprintf(sb, "Call optional=%v\n", v.Optional)
		print1(sb, v.Callee, depth+1)
		for _, a := range v.Arguments {
			print1(sb, a, depth+1)
		}
	case *NewExpression:
		sb.WriteString("New\n")
		print1(sb, v.Callee, depth+1)
		for _, a := range v.Arguments {
			print1(sb, a, depth+1)
		}
	case *BlockStatement:
		sb.WriteString("Block\n")
		for _, s := range v.Body {
			print1(sb, s, depth+1)
		}
	case *ExpressionStatement:
		sb.WriteString("ExprStmt\n")
		print1(sb, v.Expression, depth+1)
	case *EmptyStatement:
		sb.WriteString("Empty\n")
	case *DebuggerStatement:
		sb.WriteString("Debugger\n")
	case *VariableDeclaration:
		fmt.Fprintf(sb, "VarDecl kind=%d\n", v.Kind)
		for _, d := range v.Declarations {
			print1(sb, d.ID, depth+1)
			if d.Init != nil {
				print1(sb, d.Init, depth+1)
			}
		}
	case *IfStatement:
		sb.WriteString("If\n")
		print1(sb, v.Test, depth+1)
		print1(sb, v.Consequent, depth+1)
		if v.Alternate != nil {
			print1(sb, v.Alternate, depth+1)
		}
	case *WhileStatement:
		sb.WriteString("While\n")
		print1(sb, v.Test, depth+1)
		print1(sb, v.Body, depth+1)
	case *DoWhileStatement:
		sb.WriteString("DoWhile\n")
		print1(sb, v.Body, depth+1)
		print1(sb, v.Test, depth+1)
	case *ForStatement:
		sb.WriteString("For\n")
		if v.Init != nil {
			print1(sb, v.Init.(Node), depth+1)
		}
		if v.Test != nil {
			print1(sb, v.Test, depth+1)
		}
		if v.Update != nil {
			print1(sb, v.Update, depth+1)
		}
		print1(sb, v.Body, depth+1)
	case *ForInStatement:
		fmt.Fprintf(sb, "ForInOf of=%v\n", v.Of)
		print1(sb, v.Left.(Node), depth+1)
		print1(sb, v.Right, depth+1)
		print1(sb, v.Body, depth+1)
	case *SwitchStatement:
		sb.WriteString("Switch\n")
		print1(sb, v.Discriminant, depth+1)
		for _, c := range v.Cases {
			indent(sb, depth+1)
			sb.WriteString("case\n")
			if c.Test != nil {
				print1(sb, c.Test, depth+2)
			}
			for _, s := range c.Consequent {
				print1(sb, s, depth+2)
			}
		}
	case *BreakStatement:
		sb.WriteString("Break\n")
	case *ContinueStatement:
		sb.WriteString("Continue\n")
	case *ReturnStatement:
		sb.WriteString("Return\n")
		if v.Argument != nil {
			print1(sb, v.Argument, depth+1)
		}
	case *ThrowStatement:
		sb.WriteString("Throw\n")
		print1(sb, v.Argument, depth+1)
	case *TryStatement:
		sb.WriteString("Try\n")
		print1(sb, v.Block, depth+1)
		if v.Handler != nil {
			indent(sb, depth+1)
			sb.WriteString("catch\n")
			if v.Handler.Param != nil {
				print1(sb, v.Handler.Param, depth+2)
			}
			print1(sb, v.Handler.Body, depth+2)
		}
		if v.Finally != nil {
			indent(sb, depth+1)
			sb.WriteString("finally\n")
			print1(sb, v.Finally, depth+2)
		}
	case *LabeledStatement:
		fmt.Fprintf(sb, "Labeled %s\n", v.Label.Name)
		print1(sb, v.Body, depth+1)
	case *WithStatement:
		sb.WriteString("With\n")
		print1(sb, v.Object, depth+1)
		print1(sb, v.Body, depth+1)
	default:
		fmt.Fprintf(sb, "%T\n", v)
	}
}

func printFunction(sb *strings.Builder, label string, fn *Function, depth int) {
	name := "<anonymous>"
	if fn.ID != nil {
		name = fn.ID.Name
	}
	fmt.Fprintf(sb, "%s %s gen=%v async=%v arrow=%v\n", label, name, fn.Generator, fn.Async, fn.Arrow)
	for _, p := range fn.Params {
		print1(sb, p, depth+1)
	}
	if body, ok := fn.Body.(Node); ok {
		print1(sb, body, depth+1)
	}
}

func printClass(sb *strings.Builder, label string, c *Class, depth int) {
	name := "<anonymous>"
	if c.ID != nil {
		name = c.ID.Name
	}
	fmt.Fprintf(sb, "%s %s\n", label, name)
	if c.SuperClass != nil {
		print1(sb, c.SuperClass, depth+1)
	}
	for _, m := range c.Body.Members {
		indent(sb, depth+1)
		fmt.Fprintf(sb, "member kind=%d static=%v\n", m.Kind, m.Static)
		print1(sb, m.Key, depth+2)
		if m.Value != nil {
			print1(sb, m.Value, depth+2)
		}
	}
}
