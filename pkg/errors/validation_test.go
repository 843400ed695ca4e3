package errors

import (
	"strings"
	"testing"
)

func TestValidatePackageName(t *testing.T) {
	valid := []string{
		"express",
		"my-package",
		"my_package",
		"lodash.merge",
		"@koa/router",
		"@types/node",
		"@types/babel__core",
		"JSONStream",
		strings.Repeat("a", maxPackageNameLen),
	}
	for _, name := range valid {
		if err := ValidatePackageName(name); err != nil {
			t.Errorf("ValidatePackageName(%q) = %v, want nil", name, err)
		}
	}

	invalid := map[string]string{
		"empty":           "",
		"too long":        strings.Repeat("a", maxPackageNameLen+1),
		"leading dot":     ".bin",
		"leading _":       "_private",
		"dot dot":         "..",
		"scope leading .": "@../etc",
		"empty scope":     "@/router",
		"empty scoped":    "@koa/",
		"bare scope":      "@koa",
		"nested scope":    "@a/b/c",
		"unscoped slash":  "foo/bar",
		"backslash":       "foo\\bar",
		"null byte":       "foo\x00bar",
		"newline":         "foo\nbar",
		"space":           "foo bar",
		"query":           "foo?x=1",
		"fragment":        "foo#x",
		"file specifier":  "file:../lib",
	}
	for label, name := range invalid {
		t.Run(label, func(t *testing.T) {
			err := ValidatePackageName(name)
			if !Is(err, ErrCodeInvalidPackage) {
				t.Errorf("ValidatePackageName(%q) = %v, want %s", name, err, ErrCodeInvalidPackage)
			}
		})
	}
}
