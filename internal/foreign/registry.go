package foreign

import (
	"log/slog"
	"net/http"
	"sort"
	"tails/internal/evaluator"
	"tails/internal/util"
)

// Registry is the standard library: every named builtin a script can call.
// It owns the resources builtins open, such as database connections.
type Registry struct {
	config    util.Configuration
	functions map[string]evaluator.Builtin
	client    *http.Client
	databases *databases
}

func NewRegistry(config util.Configuration) *Registry {
	if config.HTTPTimeout <= 0 {
		config.HTTPTimeout = util.DefaultHTTPTimeout
	}
	if config.Locale == "" {
		config.Locale = util.DefaultLocale
	}
	r := &Registry{
		config:    config,
		client:    &http.Client{},
		databases: newDatabases(),
	}
	r.functions = r.builtins()
	return r
}

func (r *Registry) builtins() map[string]evaluator.Builtin {
	return map[string]evaluator.Builtin{
		// console
		"say":   fnConsoleSay(),
		"ask":   fnConsoleAsk(),
		"clear": fnConsoleClear(),

		// higher order list functions
		"map":        fnListMap(),
		"filter":     fnListFilter(),
		"reduce":     fnListReduce(),
		"sort":       fnListSort(),
		"reverse":    fnListReverse(),
		"find":       fnListFind(),
		"find-index": fnListFindIndex(),
		"find-last":  fnListFindLast(),
		"every":      fnListEvery(),
		"some":       fnListSome(),
		"remove-if":  fnListRemoveIf(),
		"count-if":   fnListCountIf(),
		"take-while": fnListTakeWhile(),
		"drop-while": fnListDropWhile(),
		"partition":  fnListPartition(),
		"group-by":   fnListGroupBy(),
		"sort-by":    fnListSortBy(),

		// list mutations, returning new lists
		"remove":    fnListRemove(),
		"remove-at": fnListRemoveAt(),
		"insert":    fnListInsert(),
		"set-at":    fnListSetAt(),
		"pop":       fnListPop(),
		"shift":     fnListShift(),
		"unshift":   fnListUnshift(),

		// list queries
		"index-of": fnListIndexOf(),
		"contains": fnListContains(),
		"slice":    fnListSlice(),
		"concat":   fnListConcat(),
		"take":     fnListTake(),
		"drop":     fnListDrop(),
		"range":    fnListRange(),

		"flatten":   fnListFlatten(),
		"unique":    fnListUnique(),
		"zip":       fnListZip(),
		"chunk":     fnListChunk(),
		"transpose": fnListTranspose(),

		"union":        fnListUnion(),
		"difference":   fnListDifference(),
		"intersection": fnListIntersection(),

		// strings
		"split":       fnStringSplit(),
		"join":        fnStringJoin(),
		"trim":        fnStringTrim(),
		"uppercase":   fnStringUppercase(),
		"lowercase":   fnStringLowercase(),
		"replace":     fnStringReplace(),
		"starts-with": fnStringStartsWith(),
		"ends-with":   fnStringEndsWith(),
		"title-case":  r.fnStringTitleCase(),

		// math
		"absolute":    fnMathAbsolute(),
		"square-root": fnMathSquareRoot(),
		"random":      fnMathRandom(),
		"floor":       fnMathFloor(),
		"ceiling":     fnMathCeiling(),
		"round":       fnMathRound(),
		"power":       fnMathPower(),

		"is-even":     fnHelperIsEven(),
		"is-odd":      fnHelperIsOdd(),
		"is-positive": fnHelperIsPositive(),
		"is-negative": fnHelperIsNegative(),
		"is-zero":     fnHelperIsZero(),
		"double":      fnHelperScale("double", 2),
		"triple":      fnHelperScale("triple", 3),
		"quadruple":   fnHelperScale("quadruple", 4),
		"half":        fnHelperScale("half", 0.5),
		"square":      fnHelperSquare(),
		"increment":   fnHelperIncrement(),
		"decrement":   fnHelperDecrement(),
		"add":         fnHelperAdd(),
		"multiply":    fnHelperMultiply(),
		"max":         fnHelperMax(),
		"min":         fnHelperMin(),

		// objects and collections
		"keys":       fnObjectKeys(),
		"values":     fnObjectValues(),
		"has":        fnObjectHas(),
		"merge":      fnObjectMerge(),
		"deep-merge": fnObjectDeepMerge(),
		"pick":       fnObjectPick(),
		"omit":       fnObjectOmit(),
		"object-get": fnObjectGet(),
		"object-set": fnObjectSet(),
		"length":     fnCollectionLength(),
		"append":     fnCollectionAppend(),

		// introspection
		"type-of":    fnTypeOf(),
		"is-number":  fnTypeIs(typeNumber),
		"is-string":  fnTypeIs(typeString),
		"is-boolean": fnTypeIs(typeBoolean),
		"is-list":    fnTypeIs(typeList),
		"is-object":  fnTypeIs(typeObject),
		"is-null":    fnTypeIs(typeNull),
		"is-empty":   fnTypeIsEmpty(),
		"is-defined": fnTypeIsDefined(),

		// dates
		"now":           fnDateNow(),
		"date":          fnDate(),
		"date-add":      fnDateAdd(),
		"date-subtract": fnDateSubtract(),
		"date-diff":     fnDateDiff(),
		"date-format":   r.fnDateFormat(),
		"date-parse":    r.fnDateParse(),
		"date-year":     fnDateComponent("date-year", func(d dateParts) int { return d.year }),
		"date-month":    fnDateComponent("date-month", func(d dateParts) int { return d.month }),
		"date-day":      fnDateComponent("date-day", func(d dateParts) int { return d.day }),
		"date-hour":     fnDateComponent("date-hour", func(d dateParts) int { return d.hour }),
		"date-minute":   fnDateComponent("date-minute", func(d dateParts) int { return d.minute }),
		"date-second":   fnDateComponent("date-second", func(d dateParts) int { return d.second }),
		"date-weekday":  fnDateComponent("date-weekday", func(d dateParts) int { return d.weekday }),
		"date-before":   fnDateCompare("date-before", func(c int) bool { return c < 0 }),
		"date-after":    fnDateCompare("date-after", func(c int) bool { return c > 0 }),
		"date-equal":    fnDateCompare("date-equal", func(c int) bool { return c == 0 }),

		// crypto
		"sha256":      fnCryptoSha256(),
		"md5":         fnCryptoMd5(),
		"hmac-sha256": fnCryptoHmacSha256(),

		// encoding
		"base64-encode": fnEncodingBase64Encode(),
		"base64-decode": fnEncodingBase64Decode(),
		"url-encode":    fnEncodingURLEncode(),
		"url-decode":    fnEncodingURLDecode(),
		"to-json":       fnEncodingToJSON(),
		"from-json":     fnEncodingFromJSON(),
		"to-yaml":       fnEncodingToYAML(),
		"from-yaml":     fnEncodingFromYAML(),

		// http
		"get":    r.fnHttpMethod("GET"),
		"post":   r.fnHttpMethod("POST"),
		"put":    r.fnHttpMethod("PUT"),
		"delete": r.fnHttpMethod("DELETE"),
		"patch":  r.fnHttpMethod("PATCH"),
		"http":   r.fnHttpRequest(),

		// filesystem
		"read":        fnIoFsRead(),
		"write":       fnIoFsWrite(),
		"file-exists": fnIoFsFileExists(),
		"dir-exists":  fnIoFsDirExists(),
		"file-size":   fnIoFsFileSize(),

		// process
		"run":  fnSysRun(),
		"wait": fnSysWait(),
		"env":  fnSysEnv(),

		// database
		"db-connect":  r.fnDbConnect(),
		"db-query":    r.fnDbQuery(),
		"db-exec":     r.fnDbExec(),
		"db-begin":    r.fnDbBegin(),
		"db-commit":   r.fnDbCommit(),
		"db-rollback": r.fnDbRollback(),
		"db-close":    r.fnDbClose(),

		// text
		"markdown":        fnTextMarkdown(),
		"format-number":   r.fnTextFormatNumber(),
		"format-currency": r.fnTextFormatCurrency(),
		"format-percent":  r.fnTextFormatPercent(),
		"fuzzy-find":      fnTextFuzzyFind(),
	}
}

func (r *Registry) Lookup(name string) (evaluator.Builtin, bool) {
	fn, ok := r.functions[name]
	return fn, ok
}

func (r *Registry) Has(name string) bool {
	_, ok := r.functions[name]
	return ok
}

// Names lists every builtin, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Config() util.Configuration {
	return r.config
}

// Close releases every database connection the registry still holds.
func (r *Registry) Close() error {
	slog.Debug("closing registry", slog.Int("databases", r.databases.len()))
	return r.databases.closeAll()
}
