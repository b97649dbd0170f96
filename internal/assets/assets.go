// Package assets defines the AssetResolver interface that maps a Visual
// to a local file path, plus a local-filesystem and a generative
// implementation.
package assets

import (
	"context"

	"github.com/kazuvin/teto/internal/script"
)

// Resolver maps a script.Visual to a local file path, generating the
// asset first if necessary.
type Resolver interface {
	Resolve(ctx context.Context, v script.Visual) (path string, err error)
}
