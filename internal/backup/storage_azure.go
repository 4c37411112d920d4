package backup

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"experiment-setup/internal/errors"

	"github.com/Azure/azure-storage-blob-go/azblob"
)

// AzureStore reads backups stored as blobs directly under a container prefix
type AzureStore struct {
	containerURL  azblob.ContainerURL
	containerName string
	prefix        string
}

// NewAzureStore creates a new AzureStore instance
func NewAzureStore(config *AzureConfig) (*AzureStore, error) {
	if config == nil {
		return nil, errors.NewConfigError("Azure storage configuration is required", nil)
	}

	var verrs ValidationErrors
	config.validate(&verrs)
	if verrs.HasErrors() {
		return nil, errors.NewConfigError("invalid Azure storage configuration", verrs)
	}

	credential, err := azblob.NewSharedKeyCredential(config.AccountName, config.AccountKey)
	if err != nil {
		return nil, errors.NewConfigError("failed to create Azure credentials", err)
	}

	pipeline := azblob.NewPipeline(credential, azblob.PipelineOptions{})

	serviceURL, err := url.Parse(fmt.Sprintf("https://%s.blob.core.windows.net", config.AccountName))
	if err != nil {
		return nil, errors.NewConfigError("failed to parse Azure service URL", err)
	}

	return &AzureStore{
		containerURL:  azblob.NewServiceURL(*serviceURL, pipeline).NewContainerURL(config.ContainerName),
		containerName: config.ContainerName,
		prefix:        normalizePrefix(config.Prefix),
	}, nil
}

// List returns the backup blobs directly under the prefix.
// CreationTime is used when the service reports it, LastModified otherwise.
func (a *AzureStore) List(ctx context.Context) ([]Descriptor, error) {
	var descs []Descriptor

	for marker := (azblob.Marker{}); marker.NotDone(); {
		listResponse, err := a.containerURL.ListBlobsFlatSegment(ctx, marker, azblob.ListBlobsSegmentOptions{
			Prefix: a.prefix,
		})
		if err != nil {
			return nil, NewStorageError(fmt.Sprintf("failed to list backups in %s", a.Location()), err)
		}

		for _, blob := range listResponse.Segment.BlobItems {
			if d, ok := a.descriptorFromBlob(blob); ok {
				descs = append(descs, d)
			}
		}

		marker = listResponse.NextMarker
	}

	SortDescriptors(descs)
	return descs, nil
}

func (a *AzureStore) descriptorFromBlob(blob azblob.BlobItemInternal) (Descriptor, bool) {
	name := strings.TrimPrefix(blob.Name, a.prefix)
	if name == "" || strings.Contains(name, "/") || !IsBackupFile(name) {
		return Descriptor{}, false
	}

	created := blob.Properties.LastModified
	if blob.Properties.CreationTime != nil {
		created = *blob.Properties.CreationTime
	}

	var size int64
	if blob.Properties.ContentLength != nil {
		size = *blob.Properties.ContentLength
	}

	return Descriptor{
		Name:      name,
		CreatedAt: created,
		Size:      size,
	}, true
}

// Open streams a backup blob with retrying reads
func (a *AzureStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	blobURL := a.containerURL.NewBlockBlobURL(a.prefix + name)

	downloadResponse, err := blobURL.Download(ctx, 0, azblob.CountToEnd, azblob.BlobAccessConditions{}, false, azblob.ClientProvidedKeyOptions{})
	if err != nil {
		var storageErr azblob.StorageError
		if stderrors.As(err, &storageErr) && storageErr.ServiceCode() == azblob.ServiceCodeBlobNotFound {
			return nil, NewNotFoundError(name, err)
		}
		return nil, NewStorageError(fmt.Sprintf("failed to download backup %s from Azure", name), err)
	}

	return downloadResponse.Body(azblob.RetryReaderOptions{MaxRetryRequests: 20}), nil
}

// Location returns the azure:// URL of the prefix
func (a *AzureStore) Location() string {
	return fmt.Sprintf("azure://%s/%s", a.containerName, a.prefix)
}

// Close is a no-op; the pipeline holds no resources
func (a *AzureStore) Close() error {
	return nil
}
