package foreign

import (
	"fmt"
	"strings"
	"tails/internal/ast"
	"tails/internal/evaluator"
	"tails/internal/object"
)

const maxRangeLength = 10_000_000

func cloneElements(items []object.Object) []object.Object {
	return append([]object.Object{}, items...)
}

func indexOf(items []object.Object, value object.Object) int {
	for i, item := range items {
		if object.Equal(item, value) {
			return i
		}
	}
	return -1
}

// fnListRemove drops the first element equal to the value.
func fnListRemove() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "remove", args, 2, 2, "list, value")
		if err != nil {
			return nil, err
		}
		items, err := listArg("remove", values, 0)
		if err != nil {
			return nil, err
		}
		out := append([]object.Object(nil), items...)
		for i, item := range items {
			if object.Equal(item, values[1]) {
				out = append(out[:i], out[i+1:]...)
				break
			}
		}
		return object.NewList(out...), nil
	}
}

func fnListRemoveAt() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "remove-at", args, 2, 2, "list, index")
		if err != nil {
			return nil, err
		}
		items, err := listArg("remove-at", values, 0)
		if err != nil {
			return nil, err
		}
		index, err := nonNegativeIntArg("remove-at", "index", values, 1)
		if err != nil {
			return nil, err
		}
		if index >= len(items) {
			return nil, fmt.Errorf("remove-at: index %d out of bounds for list of length %d", index, len(items))
		}
		out := cloneElements(items[:index])
		return object.NewList(append(out, items[index+1:]...)...), nil
	}
}

func fnListInsert() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "insert", args, 3, 3, "list, index, value")
		if err != nil {
			return nil, err
		}
		items, err := listArg("insert", values, 0)
		if err != nil {
			return nil, err
		}
		index, err := nonNegativeIntArg("insert", "index", values, 1)
		if err != nil {
			return nil, err
		}
		if index > len(items) {
			return nil, fmt.Errorf("insert: index %d out of bounds for list of length %d (max insertable index is %d)", index, len(items), len(items))
		}
		out := make([]object.Object, 0, len(items)+1)
		out = append(out, items[:index]...)
		out = append(out, values[2])
		out = append(out, items[index:]...)
		return object.NewList(out...), nil
	}
}

func fnListSetAt() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "set-at", args, 3, 3, "list, index, value")
		if err != nil {
			return nil, err
		}
		items, err := listArg("set-at", values, 0)
		if err != nil {
			return nil, err
		}
		index, err := nonNegativeIntArg("set-at", "index", values, 1)
		if err != nil {
			return nil, err
		}
		if index >= len(items) {
			return nil, fmt.Errorf("set-at: index %d out of bounds for list of length %d", index, len(items))
		}
		out := cloneElements(items)
		out[index] = values[2]
		return object.NewList(out...), nil
	}
}

// splitResult is the {value, list} object pop and shift return.
func splitResult(value object.Object, rest []object.Object) *object.Map {
	return object.NewMap().
		Put("value", value).
		Put("list", object.NewList(cloneElements(rest)...))
}

func fnListPop() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "pop", args, 1, 1, "list")
		if err != nil {
			return nil, err
		}
		items, err := listArg("pop", values, 0)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, fmt.Errorf("pop: cannot pop from empty list")
		}
		return splitResult(items[len(items)-1], items[:len(items)-1]), nil
	}
}

func fnListShift() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "shift", args, 1, 1, "list")
		if err != nil {
			return nil, err
		}
		items, err := listArg("shift", values, 0)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, fmt.Errorf("shift: cannot shift from empty list")
		}
		return splitResult(items[0], items[1:]), nil
	}
}

func fnListUnshift() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "unshift", args, 2, 2, "list, value")
		if err != nil {
			return nil, err
		}
		items, err := listArg("unshift", values, 0)
		if err != nil {
			return nil, err
		}
		return object.NewList(append([]object.Object{values[1]}, items...)...), nil
	}
}

func fnListIndexOf() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "index-of", args, 2, 2, "list, value")
		if err != nil {
			return nil, err
		}
		if s, ok := values[0].(*object.String); ok {
			sub, err := stringArg("index-of", values, 1)
			if err != nil {
				return nil, err
			}
			i := strings.Index(s.Value, sub)
			if i > 0 {
				i = len([]rune(s.Value[:i]))
			}
			return number(float64(i)), nil
		}
		items, err := listArg("index-of", values, 0)
		if err != nil {
			return nil, err
		}
		return number(float64(indexOf(items, values[1]))), nil
	}
}

// fnListContains tests list membership, or substring presence when the first
// argument is a string.
func fnListContains() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "contains", args, 2, 2, "list, value")
		if err != nil {
			return nil, err
		}
		if s, ok := values[0].(*object.String); ok {
			sub, err := stringArg("contains", values, 1)
			if err != nil {
				return nil, err
			}
			return boolean(strings.Contains(s.Value, sub)), nil
		}
		items, err := listArg("contains", values, 0)
		if err != nil {
			return nil, err
		}
		return boolean(indexOf(items, values[1]) >= 0), nil
	}
}

// fnListSlice returns items[start:end]; end defaults to the length and both
// bounds are clamped to it.
func fnListSlice() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "slice", args, 2, 3, "list, start, optional end")
		if err != nil {
			return nil, err
		}
		items, err := listArg("slice", values, 0)
		if err != nil {
			return nil, err
		}
		start, err := nonNegativeIntArg("slice", "start index", values, 1)
		if err != nil {
			return nil, err
		}
		end := len(items)
		if len(values) == 3 {
			if end, err = nonNegativeIntArg("slice", "end index", values, 2); err != nil {
				return nil, err
			}
		}
		if end < start {
			return nil, fmt.Errorf("slice: end index must be greater than or equal to start index")
		}
		start, end = min(start, len(items)), min(end, len(items))
		return object.NewList(cloneElements(items[start:end])...), nil
	}
}

func fnListConcat() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "concat", args, 1, unbounded, "lists")
		if err != nil {
			return nil, err
		}
		out := []object.Object{}
		for _, v := range values {
			l, ok := v.(*object.List)
			if !ok {
				return nil, fmt.Errorf("concat: all arguments must be lists, got %s", object.TypeName(v))
			}
			out = append(out, l.Elements...)
		}
		return object.NewList(out...), nil
	}
}

func fnListTake() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "take", args, 2, 2, "list, count")
		if err != nil {
			return nil, err
		}
		items, err := listArg("take", values, 0)
		if err != nil {
			return nil, err
		}
		count, err := nonNegativeIntArg("take", "count", values, 1)
		if err != nil {
			return nil, err
		}
		return object.NewList(cloneElements(items[:min(count, len(items))])...), nil
	}
}

func fnListDrop() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "drop", args, 2, 2, "list, count")
		if err != nil {
			return nil, err
		}
		items, err := listArg("drop", values, 0)
		if err != nil {
			return nil, err
		}
		count, err := nonNegativeIntArg("drop", "count", values, 1)
		if err != nil {
			return nil, err
		}
		return object.NewList(cloneElements(items[min(count, len(items)):])...), nil
	}
}

// fnListRange builds [start, end) stepping by step: `range 3` is [0, 1, 2],
// `range 2 5` is [2, 3, 4] and `range 5 0 -2` is [5, 3, 1].
func fnListRange() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "range", args, 1, 3, "optional start, end, optional step")
		if err != nil {
			return nil, err
		}
		nums := make([]float64, len(values))
		for i := range values {
			if nums[i], err = numberArg("range", values, i); err != nil {
				return nil, err
			}
		}
		start, end, step := 0.0, nums[0], 1.0
		if len(nums) > 1 {
			start, end = nums[0], nums[1]
		}
		if len(nums) > 2 {
			step = nums[2]
		}
		if step == 0 {
			return nil, fmt.Errorf("range: step must not be zero")
		}
		if (end-start)/step > maxRangeLength {
			return nil, fmt.Errorf("range: too many elements")
		}
		out := []object.Object{}
		for v := start; (step > 0 && v < end) || (step < 0 && v > end); v += step {
			out = append(out, number(v))
		}
		return object.NewList(out...), nil
	}
}

// fnListFlatten flattens nested lists, fully or to an optional depth.
func fnListFlatten() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "flatten", args, 1, 2, "list, optional depth")
		if err != nil {
			return nil, err
		}
		items, err := listArg("flatten", values, 0)
		if err != nil {
			return nil, err
		}
		depth := -1
		if len(values) == 2 {
			if depth, err = nonNegativeIntArg("flatten", "depth", values, 1); err != nil {
				return nil, err
			}
		}
		return object.NewList(flatten(items, depth)...), nil
	}
}

func flatten(items []object.Object, depth int) []object.Object {
	out := []object.Object{}
	for _, item := range items {
		if nested, ok := item.(*object.List); ok && depth != 0 {
			out = append(out, flatten(nested.Elements, depth-1)...)
			continue
		}
		out = append(out, item)
	}
	return out
}

func uniqueElements(items []object.Object) []object.Object {
	out := []object.Object{}
	for _, item := range items {
		if indexOf(out, item) < 0 {
			out = append(out, item)
		}
	}
	return out
}

func fnListUnique() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "unique", args, 1, 1, "list")
		if err != nil {
			return nil, err
		}
		items, err := listArg("unique", values, 0)
		if err != nil {
			return nil, err
		}
		return object.NewList(uniqueElements(items)...), nil
	}
}

// fnListZip pairs elements up to the shorter list's length.
func fnListZip() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		left, right, err := twoLists(ev, "zip", args)
		if err != nil {
			return nil, err
		}
		n := min(len(left), len(right))
		out := make([]object.Object, n)
		for i := 0; i < n; i++ {
			out[i] = object.NewList(left[i], right[i])
		}
		return object.NewList(out...), nil
	}
}

func fnListChunk() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "chunk", args, 2, 2, "list, size")
		if err != nil {
			return nil, err
		}
		items, err := listArg("chunk", values, 0)
		if err != nil {
			return nil, err
		}
		size, err := intArg("chunk", "size", values, 1)
		if err != nil {
			return nil, err
		}
		if size <= 0 {
			return nil, fmt.Errorf("chunk: size must be positive")
		}
		out := []object.Object{}
		for i := 0; i < len(items); i += size {
			out = append(out, object.NewList(cloneElements(items[i:min(i+size, len(items))])...))
		}
		return object.NewList(out...), nil
	}
}

// fnListTranspose swaps rows and columns; short rows are padded with null.
func fnListTranspose() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "transpose", args, 1, 1, "matrix")
		if err != nil {
			return nil, err
		}
		rows, err := listArg("transpose", values, 0)
		if err != nil {
			return nil, err
		}
		width := 0
		matrix := make([][]object.Object, len(rows))
		for i, row := range rows {
			l, ok := row.(*object.List)
			if !ok {
				return nil, fmt.Errorf("transpose: all elements must be lists")
			}
			matrix[i] = l.Elements
			width = max(width, len(l.Elements))
		}
		out := make([]object.Object, width)
		for col := 0; col < width; col++ {
			column := make([]object.Object, len(matrix))
			for r, row := range matrix {
				if col < len(row) {
					column[r] = row[col]
				} else {
					column[r] = object.NULL
				}
			}
			out[col] = object.NewList(column...)
		}
		return object.NewList(out...), nil
	}
}

func twoLists(ev *evaluator.Evaluator, name string, args []ast.Expression) ([]object.Object, []object.Object, error) {
	values, err := evalArgs(ev, name, args, 2, 2, "list1, list2")
	if err != nil {
		return nil, nil, err
	}
	left, err := listArg(name, values, 0)
	if err != nil {
		return nil, nil, err
	}
	right, err := listArg(name, values, 1)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func fnListUnion() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		left, right, err := twoLists(ev, "union", args)
		if err != nil {
			return nil, err
		}
		all := append(cloneElements(left), right...)
		return object.NewList(uniqueElements(all)...), nil
	}
}

func fnListDifference() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		left, right, err := twoLists(ev, "difference", args)
		if err != nil {
			return nil, err
		}
		out := []object.Object{}
		for _, item := range uniqueElements(left) {
			if indexOf(right, item) < 0 {
				out = append(out, item)
			}
		}
		return object.NewList(out...), nil
	}
}

func fnListIntersection() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		left, right, err := twoLists(ev, "intersection", args)
		if err != nil {
			return nil, err
		}
		out := []object.Object{}
		for _, item := range uniqueElements(left) {
			if indexOf(right, item) >= 0 {
				out = append(out, item)
			}
		}
		return object.NewList(out...), nil
	}
}
