// Package typesync finds dependencies without bundled type declarations and
// adds the matching @types packages to devDependencies.
//
// # Overview
//
// For every declared dependency that is not itself an @types package and has
// no @types package declared yet, the [Syncer]:
//
//  1. looks up the code package and picks the published version closest to
//     the declared range (same major.minor, else the newest)
//  2. skips it when that version ships its own "types"/"typings"
//  3. looks up the @types package and skips it when missing or deprecated
//  4. adds "~<version>" using the @types version closest to the declared range
//
// Existing devDependencies always win and the section is written sorted.
//
// # Usage
//
//	s, err := typesync.New(typesync.Config{
//	    Source:     npm.NewClient(npm.Options{}),
//	    Workspaces: workspace.NewResolver(),
//	    Options:    config.NewLoader(overrides, logger),
//	    Logger:     logger,
//	})
//	result, err := s.Sync(ctx, "package.json", false)
//
// # Workspaces
//
// When a [WorkspaceResolver] is configured, every member manifest of a
// monorepo root is synced in the same call. The root result is always first.
//
// # Naming
//
// Scoped packages map to DefinitelyTyped names by joining scope and name
// with a double underscore, see [TypingsName] and [CodePackageName].
package typesync
