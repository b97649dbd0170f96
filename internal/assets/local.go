package assets

import (
	"context"
	"os"

	tetoerrors "github.com/kazuvin/teto/pkg/errors"
	"github.com/kazuvin/teto/internal/script"
)

// LocalResolver resolves {path} visuals by statting the file. It never
// generates anything; a {description, generate} visual is always an
// error from this resolver.
type LocalResolver struct{}

// NewLocal returns a LocalResolver.
func NewLocal() *LocalResolver { return &LocalResolver{} }

func (r *LocalResolver) Resolve(_ context.Context, v script.Visual) (string, error) {
	if v.IsGenerated() {
		return "", tetoerrors.Validation("LocalResolver cannot resolve a generated visual")
	}
	if _, err := os.Stat(v.Path); err != nil {
		if os.IsNotExist(err) {
			return "", tetoerrors.AssetNotFound(v.Path)
		}
		return "", tetoerrors.AssetNotFound(v.Path)
	}
	return v.Path, nil
}

var _ Resolver = (*LocalResolver)(nil)
