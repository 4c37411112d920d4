package backup

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"experiment-setup/internal/errors"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSStore reads backups stored as objects directly under a bucket prefix
type GCSStore struct {
	client     *storage.Client
	bucketName string
	prefix     string
}

// NewGCSStore creates a new GCSStore instance
func NewGCSStore(ctx context.Context, config *GCSConfig, opts ...option.ClientOption) (*GCSStore, error) {
	if config == nil {
		return nil, errors.NewConfigError("GCS storage configuration is required", nil)
	}

	var verrs ValidationErrors
	config.validate(&verrs)
	if verrs.HasErrors() {
		return nil, errors.NewConfigError("invalid GCS storage configuration", verrs)
	}

	if config.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(config.CredentialsPath))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, NewStorageError("failed to create GCS client", err)
	}

	return &GCSStore{
		client:     client,
		bucketName: config.Bucket,
		prefix:     normalizePrefix(config.Prefix),
	}, nil
}

// List returns the backup objects directly under the prefix, using the object creation time
func (g *GCSStore) List(ctx context.Context) ([]Descriptor, error) {
	var descs []Descriptor

	query := &storage.Query{Prefix: g.prefix, Delimiter: "/"}
	if err := query.SetAttrSelection([]string{"Name", "Size", "Created"}); err != nil {
		return nil, NewStorageError("failed to build GCS query", err)
	}

	it := g.client.Bucket(g.bucketName).Objects(ctx, query)
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, NewStorageError(fmt.Sprintf("failed to list backups in %s", g.Location()), err)
		}

		if d, ok := g.descriptorFromAttrs(attrs); ok {
			descs = append(descs, d)
		}
	}

	SortDescriptors(descs)
	return descs, nil
}

func (g *GCSStore) descriptorFromAttrs(attrs *storage.ObjectAttrs) (Descriptor, bool) {
	// synthetic directory entries carry only Prefix
	if attrs.Name == "" {
		return Descriptor{}, false
	}

	name := strings.TrimPrefix(attrs.Name, g.prefix)
	if name == "" || strings.Contains(name, "/") || !IsBackupFile(name) {
		return Descriptor{}, false
	}

	return Descriptor{
		Name:      name,
		CreatedAt: attrs.Created,
		Size:      attrs.Size,
	}, true
}

// Open streams a backup object
func (g *GCSStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	reader, err := g.client.Bucket(g.bucketName).Object(g.prefix + name).NewReader(ctx)
	if err != nil {
		if stderrors.Is(err, storage.ErrObjectNotExist) {
			return nil, NewNotFoundError(name, err)
		}
		return nil, NewStorageError(fmt.Sprintf("failed to download backup %s from GCS", name), err)
	}

	return reader, nil
}

// Location returns the gs:// URL of the prefix
func (g *GCSStore) Location() string {
	return fmt.Sprintf("gs://%s/%s", g.bucketName, g.prefix)
}

// Close closes the GCS client
func (g *GCSStore) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}
