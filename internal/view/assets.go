package view

import (
	"strings"

	"github.com/labstack/echo/v4"
)

const assetBase = "app/assets"

// AssetURL maps a logical asset path to a deployment-absolute URL. Callers
// may pass the path with or without an "assets/" or "app/assets/" prefix;
// the result is identical. The URL is always absolute so it resolves the
// same way from a top-level page and from a fragment injected into an
// already-loaded page, where relative paths would resolve against the wrong
// base. Resolution happens per request and is never cached: the prefix
// depends on the request's path context.
func AssetURL(c echo.Context, path string) string {
	p := strings.TrimPrefix(path, "/")
	p = strings.TrimPrefix(p, assetBase+"/")
	p = strings.TrimPrefix(p, "assets/")

	if root := BasePrefix(c); root != "" {
		return "/" + root + "/" + assetBase + "/" + p
	}
	return "/" + assetBase + "/" + p
}
