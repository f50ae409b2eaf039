// Package ops is the operation registry (C2): binary/unary operator
// descriptors, the conversion-aware operable-path search, and
// result-type inference for every op_token the front end can produce.
package ops

import (
	"fmt"
	"sort"

	"pyaotc/internal/types"
)

// Token is the operator spelling the parser hands us: arithmetic,
// bitwise, comparison, logical-not, bitwise-not.
type Token string

const (
	Add        Token = "+"
	Sub        Token = "-"
	Mul        Token = "*"
	Div        Token = "/"
	FloorDiv   Token = "//"
	Mod        Token = "%"
	Pow        Token = "**"
	Shl        Token = "<<"
	Shr        Token = ">>"
	BitAnd     Token = "&"
	BitOr      Token = "|"
	BitXor     Token = "^"
	Eq         Token = "=="
	Ne         Token = "!="
	Lt         Token = "<"
	Le         Token = "<="
	Gt         Token = ">"
	Ge         Token = ">="
	Not        Token = "not"
	BitNot     Token = "~"
	Neg        Token = "-" // unary negate shares spelling with Sub
)

// BinDescriptor is the registered shape of a binary operation: its
// result type and the runtime ABI entry point (or generator hook name)
// that implements it.
type BinDescriptor struct {
	Op       Token
	Left     types.ID
	Right    types.ID
	ResultID types.ID
	Impl     string
}

// UnaryDescriptor mirrors BinDescriptor for unary operators.
type UnaryDescriptor struct {
	Op       Token
	Operand  types.ID
	ResultID types.ID
	Impl     string
}

// ConvertDescriptor names the ABI entry that performs one conversion edge.
type ConvertDescriptor struct {
	From, To types.ID
	Impl     string
}

type binKey struct {
	op    Token
	left  types.ID
	right types.ID
}

type unKey struct {
	op      Token
	operand types.ID
}

// Registry is the C2 operation registry, built once per compilation
// and threaded alongside a types.Registry.
type Registry struct {
	types    *types.Registry
	bin      map[binKey]BinDescriptor
	unary    map[unKey]UnaryDescriptor
	convert  map[[2]types.ID]ConvertDescriptor
}

// NewRegistry constructs the registry and registers the fixed table of
// descriptors over the primitive and Any types (numeric/string/bool
// ops); no descriptors are registered for container types, and the
// inferencer resolves container operands through FindOperablePath like
// any other.
func NewRegistry(tr *types.Registry) *Registry {
	r := &Registry{
		types:   tr,
		bin:     make(map[binKey]BinDescriptor),
		unary:   make(map[unKey]UnaryDescriptor),
		convert: make(map[[2]types.ID]ConvertDescriptor),
	}
	r.registerArithmetic()
	r.registerBitwise()
	r.registerComparisons()
	r.registerUnary()
	r.registerConversions()
	r.registerStringAndAny()
	return r
}

func (r *Registry) addBin(op Token, l, rr, result types.ID, impl string) {
	r.bin[binKey{op, l, rr}] = BinDescriptor{Op: op, Left: l, Right: rr, ResultID: result, Impl: impl}
}

func (r *Registry) addUnary(op Token, operand, result types.ID, impl string) {
	r.unary[unKey{op, operand}] = UnaryDescriptor{Op: op, Operand: operand, ResultID: result, Impl: impl}
}

func (r *Registry) registerArithmetic() {
	numeric := []types.ID{types.Int, types.Float}
	for _, l := range numeric {
		for _, rr := range numeric {
			result := types.Int
			if l == types.Float || rr == types.Float {
				result = types.Float
			}
			r.addBin(Add, l, rr, result, "py_object_add")
			r.addBin(Sub, l, rr, result, "py_object_subtract")
			r.addBin(Mul, l, rr, result, "py_object_multiply")
			// true division always yields Float
			r.addBin(Div, l, rr, types.Float, "py_object_divide")
			r.addBin(FloorDiv, l, rr, result, "py_object_floor_divide")
			r.addBin(Mod, l, rr, result, "py_object_modulo")
			r.addBin(Pow, l, rr, result, "py_object_power")
		}
	}
	// Bool behaves as Int for arithmetic purposes via the conversion
	// graph (Bool→Int edge); no direct Bool descriptors are registered,
	// forcing the operable-path search to promote Bool→Int first.
}

func (r *Registry) registerBitwise() {
	r.addBin(Shl, types.Int, types.Int, types.Int, "py_object_lshift")
	r.addBin(Shr, types.Int, types.Int, types.Int, "py_object_rshift")
	r.addBin(BitAnd, types.Int, types.Int, types.Int, "py_object_and")
	r.addBin(BitOr, types.Int, types.Int, types.Int, "py_object_or")
	r.addBin(BitXor, types.Int, types.Int, types.Int, "py_object_xor")
}

func (r *Registry) registerComparisons() {
	cmpOps := []Token{Eq, Ne, Lt, Le, Gt, Ge}
	numeric := []types.ID{types.Int, types.Float, types.Bool}
	for _, op := range cmpOps {
		for _, l := range numeric {
			for _, rr := range numeric {
				r.addBin(op, l, rr, types.Bool, "py_object_compare")
			}
		}
		r.addBin(op, types.String, types.String, types.Bool, "py_object_compare")
	}
}

func (r *Registry) registerUnary() {
	for _, t := range []types.ID{types.Int, types.Float} {
		r.addUnary(Neg, t, t, "py_object_negate")
	}
	r.addUnary(Not, types.Any, types.Bool, "py_object_not")
	r.addUnary(BitNot, types.Int, types.Int, "py_object_bitnot")
}

func (r *Registry) registerConversions() {
	for from, edges := range r.types.EdgesAll() {
		for _, e := range edges {
			r.convert[[2]types.ID{from, e.To}] = ConvertDescriptor{From: from, To: e.To, Impl: "py_smart_convert"}
		}
	}
}

func (r *Registry) registerStringAndAny() {
	r.addBin(Add, types.String, types.String, types.String, "py_object_add")
	r.addBin(Mul, types.String, types.Int, types.String, "py_object_multiply")
	r.addBin(Mul, types.Int, types.String, types.String, "py_object_multiply")
	for _, op := range []Token{Eq, Ne} {
		r.addBin(op, types.Any, types.Any, types.Bool, "py_object_compare")
	}
}

// LookupBin returns the exact descriptor for (op, left, right), if registered.
func (r *Registry) LookupBin(op Token, left, right types.ID) (BinDescriptor, bool) {
	d, ok := r.bin[binKey{op, left, right}]
	return d, ok
}

// LookupUnary returns the exact descriptor for (op, operand), if registered.
func (r *Registry) LookupUnary(op Token, operand types.ID) (UnaryDescriptor, bool) {
	d, ok := r.unary[unKey{op, operand}]
	return d, ok
}

// LookupConvert returns the descriptor implementing from→to, if registered.
func (r *Registry) LookupConvert(from, to types.ID) (ConvertDescriptor, bool) {
	d, ok := r.convert[[2]types.ID{from, to}]
	return d, ok
}

// ConversionStep is one edge chosen by the operable-path search.
type ConversionStep struct {
	Side types.ID // which operand this step converts (by its original type ID)
	From types.ID
	To   types.ID
}

// Path is the result of resolving an operable path for a binary op:
// the conversions to emit before the operation, and the final
// descriptor to invoke.
type Path struct {
	LeftConv  []ConversionStep
	RightConv []ConversionStep
	Descr     BinDescriptor
}

// promotionRank breaks cost ties: prefer Bool→Int,
// then Int→Float, then →Any, in that order.
func promotionRank(from, to types.ID) int {
	switch {
	case from == types.Bool && to == types.Int:
		return 0
	case from == types.Int && to == types.Float:
		return 1
	case to == types.Any:
		return 2
	default:
		return 3
	}
}

type searchState struct {
	left, right types.ID
	leftPath    []ConversionStep
	rightPath   []ConversionStep
	cost        int
}

// FindOperablePath performs a BFS to find the minimum-cost (L', R')
// reachable via conversion edges from (L, R) such that BinOp(op, L',
// R') is registered, breaking ties by promotionRank on the cheapest
// edge taken at each step.
func (r *Registry) FindOperablePath(op Token, left, right types.ID) (Path, error) {
	if d, ok := r.LookupBin(op, left, right); ok {
		return Path{Descr: d}, nil
	}

	start := searchState{left: left, right: right}
	queue := []searchState{start}
	visited := map[[2]types.ID]bool{{left, right}: true}

	var best *searchState
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if d, ok := r.LookupBin(op, cur.left, cur.right); ok {
			if best == nil || cur.cost < best.cost {
				c := cur
				best = &c
				_ = d
			}
			continue
		}
		if cur.cost >= 4 {
			continue // bounded search; the fixed graph is shallow
		}

		type candidate struct {
			next searchState
			rank int
		}
		var candidates []candidate

		for _, e := range r.types.Edges(cur.left) {
			next := cur
			next.left = e.To
			next.leftPath = append(append([]ConversionStep{}, cur.leftPath...), ConversionStep{Side: left, From: e.From, To: e.To})
			next.cost = cur.cost + 1
			candidates = append(candidates, candidate{next, promotionRank(e.From, e.To)})
		}
		for _, e := range r.types.Edges(cur.right) {
			next := cur
			next.right = e.To
			next.rightPath = append(append([]ConversionStep{}, cur.rightPath...), ConversionStep{Side: right, From: e.From, To: e.To})
			next.cost = cur.cost + 1
			candidates = append(candidates, candidate{next, promotionRank(e.From, e.To)})
		}

		sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].rank < candidates[j].rank })

		for _, c := range candidates {
			key := [2]types.ID{c.next.left, c.next.right}
			if visited[key] {
				continue
			}
			visited[key] = true
			queue = append(queue, c.next)
		}
	}

	if best == nil {
		return Path{}, fmt.Errorf("TypeError: no operable path for %s(%s, %s)", op, types.NameOf(left), types.NameOf(right))
	}
	d, _ := r.LookupBin(op, best.left, best.right)
	return Path{LeftConv: best.leftPath, RightConv: best.rightPath, Descr: d}, nil
}
