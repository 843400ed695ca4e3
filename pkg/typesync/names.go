package typesync

import "strings"

const typesScope = "@types/"

// TypingsName returns the DefinitelyTyped directory name for a package.
// Scoped packages are flattened: "@koa/router" becomes "koa__router".
// Unscoped names and names in the @types scope are returned unchanged.
func TypingsName(name string) string {
	scope, rest, ok := splitScope(name)
	if !ok || scope == "types" {
		return name
	}
	return scope + "__" + rest
}

// TypesPackageName returns the @types package that would hold declarations
// for name.
func TypesPackageName(name string) string {
	return typesScope + TypingsName(name)
}

// CodePackageName reverses [TypesPackageName]: "@types/koa__router" becomes
// "@koa/router" and "@types/lodash" becomes "lodash".
func CodePackageName(typesPackageName string) string {
	name := strings.TrimPrefix(typesPackageName, typesScope)
	if strings.Count(name, "__") == 1 {
		scope, rest, _ := strings.Cut(name, "__")
		return "@" + scope + "/" + rest
	}
	return name
}

// IsTypesPackage reports whether name lives in the @types scope.
func IsTypesPackage(name string) bool {
	return strings.HasPrefix(name, typesScope)
}

// splitScope splits "@scope/rest" into its parts.
func splitScope(name string) (scope, rest string, ok bool) {
	if !strings.HasPrefix(name, "@") {
		return "", "", false
	}
	scope, rest, ok = strings.Cut(name[1:], "/")
	if !ok || scope == "" {
		return "", "", false
	}
	return scope, rest, true
}

// candidatesFor returns a Candidate for every name that is not itself an
// @types package and whose @types package is not already declared.
func candidatesFor(names []string) []Candidate {
	declared := make(map[string]bool, len(names))
	for _, n := range names {
		if IsTypesPackage(n) {
			declared[n] = true
		}
	}

	var out []Candidate
	for _, n := range names {
		if IsTypesPackage(n) {
			continue
		}
		types := TypesPackageName(n)
		if declared[types] {
			continue
		}
		out = append(out, Candidate{
			TypingsName:      TypingsName(n),
			CodePackageName:  n,
			TypesPackageName: types,
		})
	}
	return out
}
