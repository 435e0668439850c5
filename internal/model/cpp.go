package model

import (
	"regexp"
	"slices"
	"strings"
)

var namespaceSplit = regexp.MustCompile(`[./\\]`)

// CppClassName turns a dotted full name into a C++ qualified name.
func CppClassName(fullName string) string {
	return strings.ReplaceAll(fullName, ".", "::")
}

func namespaceIndent(indent []string) string {
	if len(indent) > 0 {
		return indent[0]
	}
	return "  "
}

// CppNamespaceBegin opens one nested namespace per segment of fullName.
func CppNamespaceBegin(fullName string, indent ...string) []string {
	step := namespaceIndent(indent)
	var (
		out []string
		cur string
	)
	for _, name := range namespaceSplit.Split(fullName, -1) {
		out = append(out, cur+"namespace "+name+" {")
		cur += step
	}
	return out
}

// CppNamespaceEnd closes what CppNamespaceBegin opened, innermost first.
func CppNamespaceEnd(fullName string, indent ...string) []string {
	step := namespaceIndent(indent)
	var (
		out []string
		cur string
	)
	for _, name := range namespaceSplit.Split(fullName, -1) {
		out = append(out, cur+"} // namespace "+name)
		cur += step
	}
	slices.Reverse(out)
	return out
}
