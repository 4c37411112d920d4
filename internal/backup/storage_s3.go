package backup

import (
	"context"
	"fmt"
	"io"
	"strings"

	"experiment-setup/internal/errors"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// S3Store reads backups stored as objects directly under a bucket prefix
type S3Store struct {
	client s3iface.S3API
	bucket string
	prefix string
}

// NewS3Store creates a new S3Store instance
func NewS3Store(config *S3Config) (*S3Store, error) {
	if config == nil {
		return nil, errors.NewConfigError("S3 storage configuration is required", nil)
	}

	var verrs ValidationErrors
	config.validate(&verrs)
	if verrs.HasErrors() {
		return nil, errors.NewConfigError("invalid S3 storage configuration", verrs)
	}

	awsConfig := &aws.Config{
		Region: aws.String(config.Region),
	}
	if config.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(config.AccessKey, config.SecretKey, "")
	}
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, NewStorageError("failed to create AWS session", err)
	}

	return NewS3StoreWithClient(s3.New(sess), config.Bucket, config.Prefix), nil
}

// NewS3StoreWithClient creates an S3Store over an existing client
func NewS3StoreWithClient(client s3iface.S3API, bucket, prefix string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: normalizePrefix(prefix),
	}
}

// List returns the backup objects directly under the prefix, using LastModified as the creation time
func (s *S3Store) List(ctx context.Context) ([]Descriptor, error) {
	var descs []Descriptor

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	}

	err := s.client.ListObjectsV2PagesWithContext(ctx, input,
		func(page *s3.ListObjectsV2Output, lastPage bool) bool {
			for _, obj := range page.Contents {
				if d, ok := s.descriptorFromObject(obj); ok {
					descs = append(descs, d)
				}
			}
			return true
		})
	if err != nil {
		return nil, NewStorageError(fmt.Sprintf("failed to list backups in %s", s.Location()), err)
	}

	SortDescriptors(descs)
	return descs, nil
}

func (s *S3Store) descriptorFromObject(obj *s3.Object) (Descriptor, bool) {
	name := strings.TrimPrefix(aws.StringValue(obj.Key), s.prefix)
	if name == "" || strings.Contains(name, "/") || !IsBackupFile(name) {
		return Descriptor{}, false
	}

	return Descriptor{
		Name:      name,
		CreatedAt: aws.TimeValue(obj.LastModified),
		Size:      aws.Int64Value(obj.Size),
	}, true
}

// Open downloads a backup object as a stream
func (s *S3Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	result, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + name),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && (aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == "NotFound") {
			return nil, NewNotFoundError(name, err)
		}
		return nil, NewStorageError(fmt.Sprintf("failed to download backup %s from S3", name), err)
	}

	return result.Body, nil
}

// Location returns the s3:// URL of the prefix
func (s *S3Store) Location() string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.prefix)
}

// Close is a no-op; the AWS session holds no resources
func (s *S3Store) Close() error {
	return nil
}
