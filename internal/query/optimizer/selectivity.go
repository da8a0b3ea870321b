package optimizer

import (
	"strings"

	"github.com/ali01/graphd/internal/query/ast"
)

// Default selectivity constants, matching selectivity.rs's defaults
// module verbatim (SPEC_FULL 4.4 repeats these as the optimizer's
// contract, so they are pinned values, not tunables).
const (
	selEquality   = 0.1
	selRange      = 0.333
	selComparison = 0.333
	selNotEqual   = 0.9
	selIsNull     = 0.05
	selIsNotNull  = 0.95
	selExists     = 0.5
	selAndCorr    = 0.9
	selOrCorr     = 0.9
)

// Estimator estimates the fraction of rows a predicate expression will
// match, consulting StatisticsProvider where available and falling back
// to heuristic defaults otherwise. Grounded on
// original_source/.../query/optimizer/cost/selectivity.rs's
// SelectivityEstimator.
type Estimator struct {
	stats StatisticsProvider
}

func NewEstimator(stats StatisticsProvider) *Estimator {
	if stats == nil {
		stats = NewMemoryStatistics()
	}
	return &Estimator{stats: stats}
}

// EstimateEquality matches estimate_equality_selectivity: 1/distinct
// values when statistics exist, else the EQUALITY default.
func (e *Estimator) EstimateEquality(tagName, propertyName string) float64 {
	stats, ok := e.stats.PropertyStats(tagName, propertyName)
	if ok && stats.DistinctValues > 0 {
		sel := 1.0 / float64(stats.DistinctValues)
		if sel > 1.0 {
			sel = 1.0
		}
		return sel
	}
	return selEquality
}

// EstimateRange matches estimate_range_selectivity: the constant default
// with no bounds information.
func (e *Estimator) EstimateRange() float64 { return selRange }

// EstimateRangeWithBounds matches
// estimate_range_selectivity_with_bounds: rangeSize/totalRange, clamped to
// [0.001, 0.8].
func (e *Estimator) EstimateRangeWithBounds(minVal, maxVal, rangeSize float64) float64 {
	if maxVal <= minVal {
		return selRange
	}
	sel := rangeSize / (maxVal - minVal)
	if sel > 1.0 {
		sel = 1.0
	}
	if sel < 0.001 {
		sel = 0.001
	}
	if sel > 0.8 {
		sel = 0.8
	}
	return sel
}

// EstimateLessThan matches estimate_less_than_selectivity.
func (e *Estimator) EstimateLessThan(value *float64) float64 {
	switch {
	case value == nil:
		return selComparison
	case *value < 0:
		return 0.1
	case *value == 0:
		return 0.05
	default:
		return selComparison
	}
}

// EstimateGreaterThan matches estimate_greater_than_selectivity.
func (e *Estimator) EstimateGreaterThan(value *float64) float64 {
	switch {
	case value == nil:
		return selComparison
	case *value < 0:
		return 0.9
	case *value == 0:
		return 0.95
	default:
		return selComparison
	}
}

// EstimateLike matches estimate_like_selectivity's four wildcard-position
// cases (substring, suffix-match, prefix-match, exact).
func (e *Estimator) EstimateLike(pattern string) float64 {
	hasPrefix := strings.HasPrefix(pattern, "%")
	hasSuffix := strings.HasSuffix(pattern, "%")

	switch {
	case hasPrefix && hasSuffix:
		return 0.5
	case !hasPrefix && hasSuffix:
		return 0.1
	case hasPrefix && !hasSuffix:
		return 0.2
	default:
		return 0.05
	}
}

// EstimateIn matches estimate_in_selectivity: listSize * single-value
// selectivity, capped at 0.9.
func (e *Estimator) EstimateIn(listSize int) float64 {
	sel := float64(listSize) * selEquality
	if sel > 0.9 {
		sel = 0.9
	}
	return sel
}

func (e *Estimator) EstimateIsNull() float64    { return selIsNull }
func (e *Estimator) EstimateIsNotNull() float64 { return selIsNotNull }

// EstimateNot matches estimate_not_selectivity: 1 - inner, clamped to
// [0.01, 0.99].
func (e *Estimator) EstimateNot(inner float64) float64 {
	sel := 1.0 - inner
	return clamp(sel, 0.01, 0.99)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// EstimateFromExpression is the main entry point, dispatching on
// expression shape, matching estimate_from_expression.
func (e *Estimator) EstimateFromExpression(expr ast.Expression, tagName string) float64 {
	switch ex := expr.(type) {
	case *ast.Binary:
		return e.estimateBinary(ex, tagName)
	case *ast.Unary:
		return e.estimateUnary(ex, tagName)
	case *ast.Function:
		return e.estimateFunction(ex)
	case *ast.Literal:
		return 0.1
	case *ast.Property:
		return 0.5
	default:
		return selEquality
	}
}

func extractPropertyName(expr ast.Expression) (string, bool) {
	if p, ok := expr.(*ast.Property); ok {
		return p.Field, true
	}
	return "", false
}

func extractNumericValue(expr ast.Expression) (float64, bool) {
	lit, ok := expr.(*ast.Literal)
	if !ok {
		return 0, false
	}
	if i, ok := lit.Value.AsInt(); ok {
		return float64(i), true
	}
	if f, ok := lit.Value.AsFloat(); ok {
		return f, true
	}
	return 0, false
}

func estimateListSize(expr ast.Expression) int {
	if l, ok := expr.(*ast.List); ok {
		return len(l.Items)
	}
	return 3
}

func (e *Estimator) estimateBinary(b *ast.Binary, tagName string) float64 {
	switch b.Op {
	case ast.OpEqual:
		name, ok := extractPropertyName(b.Left)
		if !ok {
			name, ok = extractPropertyName(b.Right)
		}
		if ok {
			return e.EstimateEquality(tagName, name)
		}
		return selEquality
	case ast.OpNotEqual:
		return selNotEqual
	case ast.OpLess:
		v, _ := extractNumericValue(b.Right)
		var p *float64
		if _, ok := extractNumericValue(b.Right); ok {
			p = &v
		}
		return e.EstimateLessThan(p)
	case ast.OpLessEqual:
		v, ok := extractNumericValue(b.Right)
		var p *float64
		if ok {
			p = &v
		}
		return clamp(e.EstimateLessThan(p), 0.01, 0.9)
	case ast.OpGreater:
		v, ok := extractNumericValue(b.Right)
		var p *float64
		if ok {
			p = &v
		}
		return e.EstimateGreaterThan(p)
	case ast.OpGreaterEqual:
		v, ok := extractNumericValue(b.Right)
		var p *float64
		if ok {
			p = &v
		}
		return clamp(e.EstimateGreaterThan(p), 0.01, 0.9)
	case ast.OpAnd:
		left := e.EstimateFromExpression(b.Left, tagName)
		right := e.EstimateFromExpression(b.Right, tagName)
		return clamp(left*right/selAndCorr, 0, 1.0)
	case ast.OpOr:
		left := e.EstimateFromExpression(b.Left, tagName)
		right := e.EstimateFromExpression(b.Right, tagName)
		combined := left + right - left*right*selOrCorr
		return clamp(combined, 0.01, 0.99)
	case ast.OpIn:
		return e.EstimateIn(estimateListSize(b.Right))
	default:
		return selEquality
	}
}

func (e *Estimator) estimateUnary(u *ast.Unary, tagName string) float64 {
	switch u.Op {
	case ast.OpNot:
		return e.EstimateNot(e.EstimateFromExpression(u.Operand, tagName))
	case ast.OpIsNull:
		return e.EstimateIsNull()
	case ast.OpIsNotNull:
		return e.EstimateIsNotNull()
	default:
		return selEquality
	}
}

func (e *Estimator) estimateFunction(f *ast.Function) float64 {
	name := strings.ToLower(f.Name)
	switch name {
	case "like", "ilike":
		if len(f.Args) >= 2 {
			if lit, ok := f.Args[1].(*ast.Literal); ok {
				if s, ok := lit.Value.AsString(); ok {
					return e.EstimateLike(s)
				}
			}
		}
		return selEquality
	case "exists":
		return selExists
	case "contains", "has":
		return 0.2
	case "starts_with":
		return 0.1
	case "ends_with":
		return 0.2
	case "in":
		n := len(f.Args) - 1
		if n < 0 {
			n = 0
		}
		return e.EstimateIn(n)
	default:
		return selEquality
	}
}
