package foreign

import "testing"

func TestHigherOrderListFunctions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"map [1, 2, 3] double", "[2, 4, 6]"},
		{"map [1, 2, 3] |~x (~x * 10)|", "[10, 20, 30]"},
		{"filter [1, 2, 3, 4] is-even", "[2, 4]"},
		{"reduce([1, 2, 3], |~acc ~x (~acc + ~x)|, 10)", "16"},
		{"reduce([], |~acc ~x (~acc + ~x)|, 7)", "7"},
		{"find [1, 2, 3, 4] is-even", "2"},
		{"find [1, 3] is-even", "null"},
		{"find-index [1, 3, 4] is-even", "2"},
		{"find-index [1, 3] is-even", "-1"},
		{"find-last [2, 3, 4, 5] is-even", "4"},
		{"every [2, 4] is-even", "true"},
		{"every [2, 3] is-even", "false"},
		{"some [1, 3] is-even", "false"},
		{"some [1, 2] is-even", "true"},
		{"remove-if [1, 2, 3, 4] is-even", "[1, 3]"},
		{"count-if [1, 2, 3, 4] is-even", "2"},
		{"take-while [2, 4, 5, 6] is-even", "[2, 4]"},
		{"drop-while [2, 4, 5, 6] is-even", "[5, 6]"},
		{"partition [1, 2, 3, 4] is-even", "{matched: [2, 4], unmatched: [1, 3]}"},
		{"~parts is partition [1, 2, 3, 4, 5, 6] is-even\n~parts.matched", "[2, 4, 6]"},
		{"partition [] is-even", "{matched: [], unmatched: []}"},
		{"group-by [1, 2, 3, 4] is-even", "{false: [1, 3], true: [2, 4]}"},
		{`sort-by(["ccc", "a", "bb"], length)`, "[a, bb, ccc]"},
	}

	for i, tt := range tests {
		expectEval(t, i, tt.input, tt.expected)
	}
}

func TestSortAndReverse(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"sort [3, 1, 2]", "[1, 2, 3]"},
		{`sort ["b", "c", "a"]`, "[a, b, c]"},
		{"sort [true, false]", "[false, true]"},
		{"reverse [1, 2, 3]", "[3, 2, 1]"},
		{`reverse "abc"`, "cba"},
		{"~xs is [3, 1]\n~ys is sort ~xs\n~xs", "[3, 1]"},
	}

	for i, tt := range tests {
		expectEval(t, i, tt.input, tt.expected)
	}
}

func TestListOperations(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"remove [1, 2, 1, 3] 1", "[2, 1, 3]"},
		{"remove [1, 2, 3, 2, 4] 2", "[1, 3, 2, 4]"},
		{"remove [1, 2] 5", "[1, 2]"},
		{"remove-at [1, 2, 3] 1", "[1, 3]"},
		{"insert([1, 3], 1, 2)", "[1, 2, 3]"},
		{"insert([1, 2], 2, 3)", "[1, 2, 3]"},
		{"set-at([1, 2, 3], 0, 9)", "[9, 2, 3]"},
		{"pop [1, 2, 3]", "{value: 3, list: [1, 2]}"},
		{"shift [1, 2, 3]", "{value: 1, list: [2, 3]}"},
		{"unshift [2, 3] 1", "[1, 2, 3]"},
		{"index-of [5, 6, 7] 7", "2"},
		{"index-of [5, 6, 7] 8", "-1"},
		{`index-of "héllo" "l"`, "2"},
		{"contains [1, 2] 2", "true"},
		{`contains "tails" "ail"`, "true"},
		{"slice([1, 2, 3, 4], 1, 3)", "[2, 3]"},
		{"slice([1, 2, 3, 4], 2)", "[3, 4]"},
		{"slice([1, 2], 0, 10)", "[1, 2]"},
		{"concat([1], [2, 3], [4])", "[1, 2, 3, 4]"},
		{"take [1, 2, 3] 2", "[1, 2]"},
		{"drop [1, 2, 3] 2", "[3]"},
		{"range 5", "[0, 1, 2, 3, 4]"},
		{"range 1 10 3", "[1, 4, 7]"},
		{"range(3, 0, -1)", "[3, 2, 1]"},
		{"flatten [[1, [2]], [3]]", "[1, 2, 3]"},
		{"flatten([[1, [2]], [3]], 1)", "[1, [2], 3]"},
		{"unique [1, 2, 1, 3, 2]", "[1, 2, 3]"},
		{"zip [1, 2, 3] [4, 5]", "[[1, 4], [2, 5]]"},
		{"chunk [1, 2, 3, 4, 5] 2", "[[1, 2], [3, 4], [5]]"},
		{"transpose [[1, 2], [3, 4]]", "[[1, 3], [2, 4]]"},
		{"union [1, 2] [2, 3]", "[1, 2, 3]"},
		{"difference [1, 2, 3] [2]", "[1, 3]"},
		{"intersection [1, 2, 3] [3, 2, 5]", "[2, 3]"},
	}

	for i, tt := range tests {
		expectEval(t, i, tt.input, tt.expected)
	}
}

func TestListErrors(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"pop []", "cannot pop from empty list"},
		{"range 1 5 0", "step must not be zero"},
		{"chunk [1] 0", "chunk"},
		{"remove-at [1] 5", "remove-at"},
		{"slice([1, 2, 3], 2, 1)", "slice"},
		{"reduce([1], |~acc ~x (~acc + ~x)|)", "reduce requires exactly 3 arguments"},
		{`join([[1]], ",")`, "join can only work with strings, numbers, or booleans"},
	}

	for i, tt := range tests {
		expectEvalError(t, i, tt.input, tt.expected)
	}
}
