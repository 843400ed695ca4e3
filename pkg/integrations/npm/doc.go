// Package npm fetches package metadata from an npm registry.
//
// # Overview
//
// [Client] implements [typesync.Source]. For every package it reports the
// published versions (newest first), whether each version ships its own
// "types"/"typings", whether the newest version is deprecated, and the
// "latest" dist-tag.
//
// # Usage
//
//	client := npm.NewClient(npm.Options{Token: os.Getenv("NPM_TOKEN")})
//	meta, err := client.Fetch(ctx, "@types/node")
//	if meta == nil && err == nil {
//	    // not published
//	}
//
// # Caching
//
// Pass a [cache.Cache] in [Options] to keep responses between runs. Only the
// reduced metadata is stored, not the full registry document.
//
// [typesync.Source]: github.com/jeffijoe/typesync/pkg/typesync.Source
// [cache.Cache]: github.com/jeffijoe/typesync/pkg/cache.Cache
package npm
