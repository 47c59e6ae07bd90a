package view

import (
	"testing"
)

func TestAssetURL_PrefixVariantsIdentical(t *testing.T) {
	c := newContext(t, "/admin/dashboard", "/admin/dashboard", "")

	want := "/app/assets/styles/dashboard.css"
	for _, in := range []string{
		"styles/dashboard.css",
		"/styles/dashboard.css",
		"assets/styles/dashboard.css",
		"app/assets/styles/dashboard.css",
		"/app/assets/styles/dashboard.css",
	} {
		if got := AssetURL(c, in); got != want {
			t.Fatalf("AssetURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAssetURL_SubPathDeployment(t *testing.T) {
	root := newContext(t, "/admin/dashboard", "/admin/dashboard", "")
	sub := newContext(t, "/admin/dashboard", "/admin/dashboard", "/osas")

	gotRoot := AssetURL(root, "js/router.js")
	gotSub := AssetURL(sub, "js/router.js")

	if gotRoot != "/app/assets/js/router.js" {
		t.Fatalf("root URL = %q", gotRoot)
	}
	if gotSub != "/osas/app/assets/js/router.js" {
		t.Fatalf("sub-path URL = %q", gotSub)
	}
	// Same logical path differs only in the leading segment.
	if gotSub != "/osas"+gotRoot {
		t.Fatalf("URLs differ beyond the leading segment: %q vs %q", gotRoot, gotSub)
	}
}

func TestAssetURL_AlwaysAbsolute(t *testing.T) {
	// A fragment loaded into another page's DOM must not produce a relative
	// path that would resolve against the host page's base.
	c := newContext(t, "/load", "", "")
	if got := AssetURL(c, "img/logo.png"); got[0] != '/' {
		t.Fatalf("AssetURL not absolute: %q", got)
	}
}
