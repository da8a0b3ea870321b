package executor

import (
	"fmt"

	"github.com/ali01/graphd/internal/core/errkit"
	"github.com/ali01/graphd/internal/query/planner"
)

// Build recursively wires a plan node (and everything it transitively
// depends on through Children) into an Executor tree, the executor
// package's equivalent of planner's newAdminNode family — one function
// translating a Kind-tagged node into its concrete runtime counterpart.
func Build(plan *planner.Node, nodes func(id int64) (*planner.Node, bool), execCtx *Context) (Executor, error) {
	return buildNode(plan, nodes, execCtx)
}

// BuildPlan builds the executor tree rooted at p's terminal node.
func BuildPlan(p *planner.Plan, execCtx *Context) (Executor, error) {
	root, ok := p.Root()
	if !ok {
		return nil, errkit.NewQueryError(errkit.QueryPlanNodeVisitError, "plan has no root node")
	}
	return buildNode(root, p.Get, execCtx)
}

func buildChildren(node *planner.Node, nodes func(id int64) (*planner.Node, bool), execCtx *Context) ([]Executor, error) {
	children := make([]Executor, len(node.Children))
	for i, id := range node.Children {
		child, ok := nodes(id)
		if !ok {
			return nil, errkit.NewQueryError(errkit.QueryPlanNodeVisitError, fmt.Sprintf("plan node %d references missing child %d", node.ID, id))
		}
		ex, err := buildNode(child, nodes, execCtx)
		if err != nil {
			return nil, err
		}
		children[i] = ex
	}
	return children, nil
}

func buildNode(node *planner.Node, nodes func(id int64) (*planner.Node, bool), execCtx *Context) (Executor, error) {
	children, err := buildChildren(node, nodes, execCtx)
	if err != nil {
		return nil, err
	}

	switch node.Kind {
	case planner.KindCreateSpace, planner.KindDropSpace, planner.KindDescSpace, planner.KindShowSpaces,
		planner.KindCreateTag, planner.KindAlterTag, planner.KindDropTag, planner.KindDescTag, planner.KindShowTags,
		planner.KindCreateEdge, planner.KindAlterEdge, planner.KindDropEdge, planner.KindDescEdge, planner.KindShowEdges,
		planner.KindCreateTagIndex, planner.KindDropTagIndex, planner.KindDescTagIndex, planner.KindShowTagIndexes, planner.KindRebuildTagIndex,
		planner.KindCreateEdgeIndex, planner.KindDropEdgeIndex, planner.KindDescEdgeIndex, planner.KindShowEdgeIndexes, planner.KindRebuildEdgeIndex,
		planner.KindCreateUser, planner.KindAlterUser, planner.KindDropUser, planner.KindChangePassword:
		return NewAdminExecutor(node, execCtx), nil

	case planner.KindGetVertices:
		return NewGetVerticesExecutor(node.Payload.(planner.GetVerticesInfo), execCtx), nil

	case planner.KindGetEdges:
		return NewGetEdgesExecutor(node.Payload.(planner.GetEdgesInfo), execCtx), nil

	case planner.KindTraverse:
		return NewTraverseExecutor(node.Payload.(planner.TraverseInfo), execCtx), nil

	case planner.KindProject:
		return NewProjectExecutor(node.Payload.(planner.ProjectInfo), mustChild(children, node)), nil

	case planner.KindFilter:
		return NewFilterExecutor(node.Payload.(planner.FilterInfo), mustChild(children, node)), nil

	case planner.KindAggregate:
		return NewAggregateExecutor(node.Payload.(planner.AggregateInfo), mustChild(children, node)), nil

	case planner.KindSort:
		return NewSortExecutor(node.Payload.(planner.SortInfo), mustChild(children, node)), nil

	case planner.KindLimit:
		return NewLimitExecutor(node.Payload.(planner.LimitInfo), mustChild(children, node)), nil

	case planner.KindUnwind:
		return NewUnwindExecutor(node.Payload.(planner.UnwindInfo), mustChild(children, node)), nil

	case planner.KindJoin:
		if len(children) != 2 {
			return nil, errkit.NewQueryError(errkit.QueryPlanNodeVisitError, fmt.Sprintf("join node %d needs exactly 2 children, got %d", node.ID, len(children)))
		}
		return NewJoinExecutor(node.Payload.(planner.JoinInfo), children[0], children[1]), nil

	case planner.KindUnion, planner.KindIntersect, planner.KindSubtract:
		if len(children) != 2 {
			return nil, errkit.NewQueryError(errkit.QueryPlanNodeVisitError, fmt.Sprintf("set-op node %d needs exactly 2 children, got %d", node.ID, len(children)))
		}
		return NewSetOpExecutor(node.Kind, node.Payload.(planner.SetOpInfo), children[0], children[1]), nil

	case planner.KindShortestPath:
		return NewShortestPathExecutor(node.Payload.(planner.ShortestPathInfo), execCtx), nil

	case planner.KindAllPaths:
		return NewAllPathsExecutor(node.Payload.(planner.AllPathsInfo), execCtx), nil

	case planner.KindSubgraph:
		return NewSubgraphExecutor(node.Payload.(planner.SubgraphInfo), execCtx), nil

	default:
		return nil, errkit.NewQueryError(errkit.QueryPlanNodeVisitError, fmt.Sprintf("no executor registered for plan node kind %s", node.Kind))
	}
}

func mustChild(children []Executor, node *planner.Node) Executor {
	if len(children) == 0 {
		return nil
	}
	return children[0]
}
