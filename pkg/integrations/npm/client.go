package npm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jeffijoe/typesync/pkg/cache"
	tserrors "github.com/jeffijoe/typesync/pkg/errors"
	"github.com/jeffijoe/typesync/pkg/integrations"
	"github.com/jeffijoe/typesync/pkg/typesync"
)

// DefaultRegistry is the public npm registry.
const DefaultRegistry = "https://registry.npmjs.org"

// Options configures a [Client].
type Options struct {
	Registry string        // base URL (default DefaultRegistry)
	Token    string        // sent as "Authorization: Bearer <token>" when set
	Cache    cache.Cache   // response cache (default: none)
	CacheTTL time.Duration // lifetime of cached responses
	Refresh  bool          // skip cache reads, still write fresh responses
}

// Client fetches package metadata from an npm registry.
type Client struct {
	*integrations.Client
	baseURL string
	refresh bool
}

// NewClient creates a registry client.
func NewClient(opts Options) *Client {
	var headers map[string]string
	if opts.Token != "" {
		headers = map[string]string{"Authorization": "Bearer " + opts.Token}
	}
	registry := strings.TrimRight(opts.Registry, "/")
	if registry == "" {
		registry = DefaultRegistry
	}
	return &Client{
		Client:  integrations.NewClient(opts.Cache, "npm:"+registry+":", opts.CacheTTL, headers),
		baseURL: registry,
		refresh: opts.Refresh,
	}
}

// Fetch implements [typesync.Source]. Unknown packages, names the registry
// cannot hold and packages without any published version return (nil, nil).
func (c *Client) Fetch(ctx context.Context, name string) (*typesync.PackageMetadata, error) {
	if tserrors.ValidatePackageName(name) != nil {
		return nil, nil
	}

	var meta typesync.PackageMetadata
	err := c.Cached(ctx, name, c.refresh, &meta, func() error {
		return c.fetch(ctx, name, &meta)
	})
	if errors.Is(err, integrations.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, tserrors.Wrap(tserrors.ErrCodeRegistry, err, "failed to fetch %s from %s", name, c.baseURL)
	}
	return &meta, nil
}

func (c *Client) fetch(ctx context.Context, name string, meta *typesync.PackageMetadata) error {
	var data registryResponse
	if err := c.Get(ctx, c.baseURL+"/"+escapeName(name), &data); err != nil {
		return err
	}
	if len(data.Versions) == 0 {
		return integrations.ErrNotFound
	}

	versions := make([]typesync.VersionRecord, 0, len(data.Versions))
	deprecated := make(map[string]bool, len(data.Versions))
	for id, v := range data.Versions {
		version := v.Version
		if version == "" {
			version = id
		}
		versions = append(versions, typesync.VersionRecord{
			Version:    version,
			HasTypings: truthy(v.Types) || truthy(v.Typings),
		})
		deprecated[version] = truthy(v.Deprecated)
	}
	typesync.SortVersions(versions)

	*meta = typesync.PackageMetadata{
		Name:          data.Name,
		LatestVersion: data.DistTags.Latest,
		Deprecated:    deprecated[versions[0].Version],
		Versions:      versions,
	}
	if meta.Name == "" {
		meta.Name = name
	}
	return nil
}

// escapeName encodes the scope separator: "@scope/pkg" becomes "@scope%2fpkg".
func escapeName(name string) string {
	if strings.HasPrefix(name, "@") {
		return strings.Replace(name, "/", "%2f", 1)
	}
	return name
}

// truthy follows the registry's loose typing: "types"/"typings" may be a
// path or a boolean, and "deprecated" is a message where "" means
// un-deprecated.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case bool:
		return val
	default:
		return true
	}
}

type registryResponse struct {
	Name     string                    `json:"name"`
	DistTags distTags                  `json:"dist-tags"`
	Versions map[string]versionDetails `json:"versions"`
}

type distTags struct {
	Latest string `json:"latest"`
}

type versionDetails struct {
	Version    string `json:"version"`
	Types      any    `json:"types"`
	Typings    any    `json:"typings"`
	Deprecated any    `json:"deprecated"`
}

var _ typesync.Source = (*Client)(nil)
