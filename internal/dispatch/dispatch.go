// Package dispatch holds the single TypeTag x method-name -> stdlib
// function-name table spec.md §4.7 requires: "resolve method via the
// typechecker-provided TypeTag through a shared dispatch table". Both
// compiler and interpreter method-call lowering consult the same map, so a
// method resolves to the same stdlib entry point in both engines (spec §9,
// "Method dispatch" design note). No teacher analogue exists for this
// concern; modeled after the teacher's own single-source-of-truth map
// pattern (compiler/code.go's `definitions`, compiler/compiler.go's
// `parsingRules`).
package dispatch

import (
	"atlas/internal/ast"
	"atlas/internal/value"
)

// Table maps (TypeTag, method name) to the stdlib free-function name both
// engines call, with the receiver prepended as the first argument.
var Table = map[ast.TypeTag]map[string]string{
	ast.TagArray: {
		"len": "len", "get": "get", "set": "set", "push": "push", "pop": "pop",
		"shift": "shift", "unshift": "unshift", "reverse": "reverse",
		"slice": "slice", "concat": "concat", "join": "join",
		"includes": "includes", "indexOf": "indexOf",
		"map": "map", "filter": "filter", "reduce": "reduce", "forEach": "forEach",
		"find": "find", "findIndex": "findIndex", "some": "some", "every": "every",
		"sort": "sort", "sortBy": "sortBy", "flatMap": "flatMap", "flatten": "flatten",
	},
	ast.TagHashMap: {
		"put": "hashMapPut", "get": "hashMapGet", "remove": "hashMapRemove",
		"has": "hashMapHas", "keys": "hashMapKeys", "values": "hashMapValues",
		"entries": "hashMapEntries", "len": "hashMapLen", "clear": "hashMapClear",
		"forEach": "hashMapForEach", "map": "hashMapMap", "filter": "hashMapFilter",
	},
	ast.TagHashSet: {
		"add": "hashSetAdd", "remove": "hashSetRemove", "has": "hashSetHas",
		"elems": "hashSetElems", "len": "hashSetLen", "clear": "hashSetClear",
		"union": "hashSetUnion", "intersect": "hashSetIntersect",
		"forEach": "hashSetForEach", "map": "hashSetMap", "filter": "hashSetFilter",
	},
	ast.TagQueue: {
		"enqueue": "queueEnqueue", "dequeue": "queueDequeue", "peek": "queuePeek",
		"len": "queueLen", "clear": "queueClear",
	},
	ast.TagStack: {
		"push": "stackPush", "pop": "stackPop", "peek": "stackPeek",
		"len": "stackLen", "clear": "stackClear",
	},
	ast.TagString: {
		"len": "stringLen", "upper": "stringUpper", "lower": "stringLower",
		"trim": "stringTrim", "split": "stringSplit", "replace": "stringReplace",
		"contains": "stringContains", "startsWith": "stringStartsWith",
		"endsWith": "stringEndsWith", "charAt": "stringCharAt",
		"toNumber": "stringToNumber", "repeat": "stringRepeat",
	},
	ast.TagNumber: {
		"toString": "numberToString", "round": "numberRound",
		"floor": "numberFloor", "ceil": "numberCeil", "abs": "numberAbs",
	},
	ast.TagOption: {
		"map": "optionMap", "unwrapOr": "optionUnwrapOr",
		"isSome": "optionIsSome", "isNone": "optionIsNone",
	},
	ast.TagResult: {
		"map": "resultMap", "mapErr": "resultMapErr",
		"andThen": "resultAndThen", "orElse": "resultOrElse",
		"isOk": "resultIsOk", "isErr": "resultIsErr", "unwrapOr": "resultUnwrapOr",
	},
	ast.TagJSON: {
		"get": "jsonGet", "stringify": "jsonStringify",
	},
	ast.TagRegex: {
		"test": "regexTest", "match": "regexMatch",
		"replace": "regexReplace", "replaceWith": "regexReplaceWith",
		"replaceAll": "regexReplaceAll", "replaceAllWith": "regexReplaceAllWith",
	},
	ast.TagDateTime: {
		"format": "datetimeFormat", "year": "datetimeYear",
		"month": "datetimeMonth", "day": "datetimeDay",
	},
}

// Resolve looks up the stdlib function name for a method call on a value of
// the given static TypeTag.
func Resolve(tag ast.TypeTag, method string) (string, bool) {
	methods, ok := Table[tag]
	if !ok {
		return "", false
	}
	name, ok := methods[method]
	return name, ok
}

// KindToTag maps a runtime value.Kind back to the static TypeTag that
// indexes Table, for the rare Member call the typechecker left unannotated
// (TagUnknown) — the compiler falls back to resolving the method at the
// call site dynamically, by the receiver's runtime kind.
var KindToTag = map[value.Kind]ast.TypeTag{
	value.KindNull:     ast.TagNull,
	value.KindBool:     ast.TagBool,
	value.KindNumber:   ast.TagNumber,
	value.KindString:   ast.TagString,
	value.KindArray:    ast.TagArray,
	value.KindHashMap:  ast.TagHashMap,
	value.KindHashSet:  ast.TagHashSet,
	value.KindQueue:    ast.TagQueue,
	value.KindStack:    ast.TagStack,
	value.KindOption:   ast.TagOption,
	value.KindResult:   ast.TagResult,
	value.KindJSON:     ast.TagJSON,
	value.KindRegex:    ast.TagRegex,
	value.KindDateTime: ast.TagDateTime,
}

// ResolveDynamic resolves a method by a value's runtime kind, for the
// dynamic-dispatch fallback (stdlib's __dynamic_dispatch__).
func ResolveDynamic(k value.Kind, method string) (string, bool) {
	tag, ok := KindToTag[k]
	if !ok {
		return "", false
	}
	return Resolve(tag, method)
}

// CollectionReturning is the fixed, shared set of stdlib names whose result
// replaces the receiver/first-argument binding outright (spec §4.3). Used
// identically by the compiler's and interpreter's free-function and
// method-call emitters to guarantee write-back parity.
var CollectionReturning = map[string]bool{
	"push": true, "set": true, "__set_index__": true, "unshift": true, "reverse": true, "flatten": true,
	"sort": true, "sortBy": true,
	"queueEnqueue": true, "stackPush": true,
	"hashMapPut": true, "hashMapClear": true,
	"hashSetAdd": true, "hashSetRemove": true, "hashSetClear": true,
	"clear": true, "queueClear": true, "stackClear": true,
}

// PairReturning is the fixed, shared set of stdlib names that return
// `[extracted, new_collection]`, triggering the two-step write-back
// sequence of spec §4.3.
var PairReturning = map[string]bool{
	"pop": true, "shift": true,
	"queueDequeue": true, "stackPop": true, "hashMapRemove": true,
}
