// Package variables resolves variable references embedded in text.
//
// A [Store] holds typed values under names of the form ${scalar}, @{list}
// and &{dict}. Lookups ignore case and whitespace, so ${My Var} and
// ${myvar} are the same variable.
//
// # Syntax
//
// References may appear anywhere in a string and may nest:
//
//	${name}              stored value
//	${my${suffix}}       name built from another variable
//	@{list}[0]           list item, negative indexes count from the end
//	@{list}[1:3]         list slice
//	&{dict}[key]         dictionary value
//	&{dict}[${key}]      dictionary value under a non-string key
//	${obj.attr[0]}       attribute and item access on any scalar
//	${text.upper()}      method call
//	${${a} + ${b}}       arithmetic with + - * / and //
//	${1} ${True} ${None} literal numbers, booleans and None
//	${EMPTY} ${SPACE}    empty value and a single space
//
// A backslash escapes the reference that follows it, so \${name} is the
// literal text ${name} and \\${name} is a backslash followed by the value.
// Triple-quoted strings inside an expression may contain braces and
// newlines.
//
// # Replacement
//
// [Store.ReplaceScalar] returns the value of a string that is exactly one
// reference with its type intact; any other string is rendered with
// [Format]. [Store.ReplaceString] always renders. [Store.ReplaceList]
// additionally expands list references that stand alone into their items.
//
// # Errors
//
// All errors match [ErrData] and one of [ErrName], [ErrVariableNotFound],
// [ErrIndex], [ErrKey], [ErrExpression] or [ErrVariableType] with
// [errors.Is].
package variables
