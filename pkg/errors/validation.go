package errors

import "strings"

// maxPackageNameLen is the npm registry's limit.
const maxPackageNameLen = 214

// ValidatePackageName checks that name can be looked up in an npm registry:
// either "name" or "@scope/name", at most 214 bytes, every part made of
// URL-safe characters and not starting with "." or "_". Upper case is
// accepted because legacy packages such as "JSONStream" are still
// published.
func ValidatePackageName(name string) error {
	switch {
	case name == "":
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	case len(name) > maxPackageNameLen:
		return New(ErrCodeInvalidPackage, "package name longer than %d characters", maxPackageNameLen)
	}

	parts := []string{name}
	if rest, ok := strings.CutPrefix(name, "@"); ok {
		scope, pkg, found := strings.Cut(rest, "/")
		if !found || scope == "" || pkg == "" {
			return New(ErrCodeInvalidPackage, "scoped package %q must look like @scope/name", name)
		}
		parts = []string{scope, pkg}
	}

	for _, part := range parts {
		if part[0] == '.' || part[0] == '_' {
			return New(ErrCodeInvalidPackage, "package name %q cannot start with %q", name, part[:1])
		}
		if i := strings.IndexFunc(part, func(r rune) bool { return !isNameChar(r) }); i >= 0 {
			return New(ErrCodeInvalidPackage, "package name %q contains %q", name, part[i:i+1])
		}
	}
	return nil
}

// isNameChar reports whether r survives URL component encoding unchanged.
func isNameChar(r rune) bool {
	switch {
	case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9':
		return true
	}
	return strings.ContainsRune("-._~!*'()", r)
}
