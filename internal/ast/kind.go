package ast

// Kind is the closed set of node kinds.
type Kind uint8

const (
	KindInvalid Kind = iota

	// Declarations and file-level statements.
	KindFile
	KindExtends
	KindClassName
	KindAnnotation
	KindSignal
	KindVar
	KindConst
	KindEnum
	KindEnumValue
	KindFunc
	KindParam
	KindClass

	// Statements.
	KindBlock
	KindExprStmt
	KindAssign
	KindIf
	KindWhile
	KindFor
	KindMatch
	KindMatchBranch
	KindPatternBind
	KindReturn
	KindPass
	KindBreak
	KindContinue

	// Expressions.
	KindIdent
	KindSelf
	KindSuper
	KindLiteral
	KindArray
	KindDict
	KindPair
	KindMember
	KindCall
	KindIndex
	KindBinary
	KindUnary
	KindTernary
	KindIs
	KindAs
	KindLambda
	KindGetNode
	KindAwait
	KindTypeRef

	kindCount
)

var kindNames = [kindCount]string{
	KindInvalid:     "Invalid",
	KindFile:        "File",
	KindExtends:     "Extends",
	KindClassName:   "ClassName",
	KindAnnotation:  "Annotation",
	KindSignal:      "Signal",
	KindVar:         "Var",
	KindConst:       "Const",
	KindEnum:        "Enum",
	KindEnumValue:   "EnumValue",
	KindFunc:        "Func",
	KindParam:       "Param",
	KindClass:       "Class",
	KindBlock:       "Block",
	KindExprStmt:    "ExprStmt",
	KindAssign:      "Assign",
	KindIf:          "If",
	KindWhile:       "While",
	KindFor:         "For",
	KindMatch:       "Match",
	KindMatchBranch: "MatchBranch",
	KindPatternBind: "PatternBind",
	KindReturn:      "Return",
	KindPass:        "Pass",
	KindBreak:       "Break",
	KindContinue:    "Continue",
	KindIdent:       "Ident",
	KindSelf:        "Self",
	KindSuper:       "Super",
	KindLiteral:     "Literal",
	KindArray:       "Array",
	KindDict:        "Dict",
	KindPair:        "Pair",
	KindMember:      "Member",
	KindCall:        "Call",
	KindIndex:       "Index",
	KindBinary:      "Binary",
	KindUnary:       "Unary",
	KindTernary:     "Ternary",
	KindIs:          "Is",
	KindAs:          "As",
	KindLambda:      "Lambda",
	KindGetNode:     "GetNode",
	KindAwait:       "Await",
	KindTypeRef:     "TypeRef",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsExpr reports whether k is an expression kind.
func (k Kind) IsExpr() bool {
	switch k {
	case KindIdent, KindSelf, KindSuper, KindLiteral, KindArray, KindDict,
		KindMember, KindCall, KindIndex, KindBinary, KindUnary, KindTernary,
		KindIs, KindAs, KindLambda, KindGetNode, KindAwait:
		return true
	}
	return false
}

// IsScope reports whether nodes of kind k open a lexical scope.
func (k Kind) IsScope() bool {
	switch k {
	case KindFile, KindClass, KindFunc, KindLambda, KindBlock, KindFor, KindMatchBranch:
		return true
	}
	return false
}
