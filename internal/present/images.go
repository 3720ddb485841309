package present

import (
	"context"
	"strings"

	"github.com/sandeepkv93/storefront-admin-console/internal/storage"
)

// ImageResolver turns a stored image reference into a URL the operator can
// open. Absolute URLs pass through, rooted paths join the asset base URL and
// bare object keys are presigned when a presigner is configured.
type ImageResolver struct {
	BaseURL   string
	Presigner storage.Presigner
}

func (r ImageResolver) Resolve(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return "", nil
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return ref, nil
	case strings.HasPrefix(ref, "/"):
		return strings.TrimRight(r.BaseURL, "/") + ref, nil
	case r.Presigner != nil:
		return r.Presigner.PresignGet(ctx, ref)
	case r.BaseURL != "":
		key, err := storage.CleanObjectKey(ref)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(r.BaseURL, "/") + "/" + key, nil
	default:
		return ref, nil
	}
}
