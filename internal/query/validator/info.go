package validator

import (
	"fmt"

	"github.com/ali01/graphd/internal/query/ast"
)

// AliasType classifies what kind of value a bound name refers to, matching
// the source's AliasType enum (structs.rs, not retrieved into the pack —
// inferred from its four call sites in validation_info.rs: is_node_variable/
// is_edge_variable match against Node/NodeList and Edge/EdgeList).
type AliasType int

const (
	AliasUnknown AliasType = iota
	AliasNode
	AliasNodeList
	AliasEdge
	AliasEdgeList
	AliasPath
	AliasPrimitive
)

// PathAnalysis records one matched path pattern's shape, matching the
// source's PathAnalysis struct.
type PathAnalysis struct {
	Alias        string // "" if the path is unaliased
	NodeCount    int
	EdgeCount    int
	HasDirection bool
	MinHops      *int
	MaxHops      *int
	Variables    []string
	Labels       []string
	EdgeTypes    []string
}

func NewPathAnalysis() PathAnalysis {
	return PathAnalysis{HasDirection: true}
}

// HintSeverity mirrors the source's HintSeverity enum.
type HintSeverity int

const (
	SeverityInfo HintSeverity = iota
	SeverityWarning
	SeverityCritical
)

// HintKind discriminates which OptimizationHint variant is populated.
// Go has no tagged union, so OptimizationHint carries a Kind discriminant
// plus the fields relevant to that kind, mirroring the source's
// OptimizationHint enum collapsed to a single struct (see REDESIGN FLAGS:
// "collapse deep trait hierarchies... to tagged variants").
type HintKind int

const (
	HintUseIndexScan HintKind = iota
	HintLimitResults
	HintPreFilter
	HintJoinOrder
	HintPerformanceWarning
)

// OptimizationHint mirrors the source's OptimizationHint enum variants.
type OptimizationHint struct {
	Kind HintKind

	// UseIndexScan
	Table     string
	Column    string
	Condition ast.Expression

	// LimitResults
	Reason         string
	SuggestedLimit int

	// PreFilter
	Selectivity float64

	// JoinOrder
	OptimalOrder  []string
	EstimatedCost float64

	// PerformanceWarning
	Message  string
	Severity HintSeverity
}

// IndexHint mirrors the source's IndexHint struct.
type IndexHint struct {
	IndexName            string
	TableName            string
	Columns              []string
	ApplicableConditions []ast.Expression
	EstimatedSelectivity float64
}

// ClauseKind mirrors the source's ClauseKind enum.
type ClauseKind int

const (
	ClauseMatch ClauseKind = iota
	ClauseWhere
	ClauseReturn
	ClauseOrderBy
	ClauseLimit
	ClauseSkip
	ClauseWith
	ClauseUnwind
	ClauseCreate
	ClauseDelete
	ClauseSet
	ClauseRemove
	ClauseYield
	ClauseGo
	ClauseOver
	ClauseFrom
)

func (k ClauseKind) String() string {
	names := [...]string{"Match", "Where", "Return", "OrderBy", "Limit", "Skip",
		"With", "Unwind", "Create", "Delete", "Set", "Remove", "Yield", "Go", "Over", "From"}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// AggregateCallInfo mirrors the source's AggregateCallInfo struct.
type AggregateCallInfo struct {
	FunctionName string
	Arguments    []ast.Expression
	Distinct     bool
	Alias        string
}

// SemanticInfo mirrors the source's SemanticInfo struct.
type SemanticInfo struct {
	ReferencedTags       []string
	ReferencedEdges      []string
	ReferencedProperties []string
	UsedVariables        []string
	DefinedVariables     []string
	AggregateCalls       []AggregateCallInfo
}

// Info is the validator-to-planner handoff structure, matching the
// source's ValidationInfo: accumulated during validation so the planner
// never has to re-walk the AST to rediscover typing or alias information.
type Info struct {
	AliasMap            map[string]AliasType
	exprTypes           map[string]ValueType
	PathAnalysis        []PathAnalysis
	OptimizationHints   []OptimizationHint
	VariableDefinitions map[string]ast.Span
	IndexHints          []IndexHint
	ValidatedClauses    []ClauseKind
	SemanticInfo        SemanticInfo
}

func NewInfo() *Info {
	return &Info{
		AliasMap:            make(map[string]AliasType),
		exprTypes:           make(map[string]ValueType),
		VariableDefinitions: make(map[string]ast.Span),
	}
}

func (i *Info) AddAlias(name string, t AliasType) { i.AliasMap[name] = t }

// exprKey renders an expression to a stable string key, matching the
// source's format!("{:?}", expr) use of Rust's Debug formatting as a poor
// man's structural hash — here done via fmt.Sprintf("%#v", ...) over the
// concrete node, which is stable for a given expression tree shape.
func exprKey(expr ast.Expression) string {
	return fmt.Sprintf("%#v", expr)
}

func (i *Info) AddExprType(expr ast.Expression, t ValueType) {
	i.exprTypes[exprKey(expr)] = t
}

func (i *Info) GetExprType(expr ast.Expression) (ValueType, bool) {
	t, ok := i.exprTypes[exprKey(expr)]
	return t, ok
}

func (i *Info) AddPathAnalysis(p PathAnalysis)         { i.PathAnalysis = append(i.PathAnalysis, p) }
func (i *Info) AddOptimizationHint(h OptimizationHint) { i.OptimizationHints = append(i.OptimizationHints, h) }
func (i *Info) AddIndexHint(h IndexHint)               { i.IndexHints = append(i.IndexHints, h) }

func (i *Info) GetAliasType(name string) (AliasType, bool) {
	t, ok := i.AliasMap[name]
	return t, ok
}

func (i *Info) IsNodeVariable(name string) bool {
	t, ok := i.AliasMap[name]
	return ok && (t == AliasNode || t == AliasNodeList)
}

func (i *Info) IsEdgeVariable(name string) bool {
	t, ok := i.AliasMap[name]
	return ok && (t == AliasEdge || t == AliasEdgeList)
}
