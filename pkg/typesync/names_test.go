package typesync

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTypingsName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"koa", "koa"},
		{"@koa/router", "koa__router"},
		{"@types/node", "@types/node"},
		{"@myorg/package7", "myorg__package7"},
		{"@/weird", "@/weird"},
		{"@noslash", "@noslash"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TypingsName(tt.name); got != tt.want {
				t.Errorf("TypingsName(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestTypesAndCodePackageNameRoundTrip(t *testing.T) {
	tests := []struct {
		code  string
		types string
	}{
		{"lodash", "@types/lodash"},
		{"@koa/router", "@types/koa__router"},
		{"@babel/core", "@types/babel__core"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := TypesPackageName(tt.code); got != tt.types {
				t.Errorf("TypesPackageName(%q) = %q, want %q", tt.code, got, tt.types)
			}
			if got := CodePackageName(tt.types); got != tt.code {
				t.Errorf("CodePackageName(%q) = %q, want %q", tt.types, got, tt.code)
			}
		})
	}
}

func TestCodePackageName_MultipleSeparators(t *testing.T) {
	if got := CodePackageName("@types/a__b__c"); got != "a__b__c" {
		t.Errorf("CodePackageName() = %q, want %q", got, "a__b__c")
	}
}

func TestIsTypesPackage(t *testing.T) {
	if !IsTypesPackage("@types/node") {
		t.Error("@types/node should be a types package")
	}
	if IsTypesPackage("@typescript-eslint/parser") {
		t.Error("@typescript-eslint/parser is not a types package")
	}
}

func TestCandidatesFor(t *testing.T) {
	got := candidatesFor([]string{"react", "@types/react", "lodash", "@types/node", "@koa/router"})
	want := []Candidate{
		{TypingsName: "lodash", CodePackageName: "lodash", TypesPackageName: "@types/lodash"},
		{TypingsName: "koa__router", CodePackageName: "@koa/router", TypesPackageName: "@types/koa__router"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("candidatesFor() mismatch (-want +got):\n%s", diff)
	}
}
