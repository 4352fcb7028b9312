package repo

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/docstore"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// Doc is a decoded document together with its full path.
type Doc[T any] struct {
	Path string
	Data T
}

// Find runs an arbitrary query, typically a collection group, and decodes every match.
func Find[T any, PT interface {
	*T
	Entity
}](ctx context.Context, store docstore.Store, wc WriteContext, q docstore.Query) ([]Doc[T], error) {
	snaps, err := wc.query(ctx, store, q)
	if err != nil {
		return nil, pkgerrors.Database(pkgerrors.ReasonRetrieveFailed, fmt.Errorf("query %s: %w", q.Collection, err))
	}
	out := make([]Doc[T], 0, len(snaps))
	for _, snap := range snaps {
		item, err := decode[T, PT](snap)
		if err != nil {
			return nil, pkgerrors.Database(pkgerrors.ReasonRetrieveFailed, err)
		}
		out = append(out, Doc[T]{Path: snap.Path(), Data: *item})
	}
	return out, nil
}

// DeletePath removes the document at path.
func DeletePath(ctx context.Context, store docstore.Store, wc WriteContext, path string) error {
	if err := wc.delete(ctx, store, path); err != nil {
		return pkgerrors.Database(pkgerrors.ReasonDeleteFailed, fmt.Errorf("delete %s: %w", path, err))
	}
	return nil
}
