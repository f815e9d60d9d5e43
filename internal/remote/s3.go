// Package remote provides object store backends for the backup pipeline.
package remote

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/billagee/dropbox-to-s3/internal/backup"
)

// S3Store implements backup.ObjectStore against Amazon S3. Credentials
// come from the SDK's default chain (environment, shared config files,
// instance profile); the tool only selects which profile and region to use.
type S3Store struct {
	client *s3.Client
}

// NewS3Store creates an S3-backed object store. profile and region are
// optional; empty values fall through to the SDK defaults.
func NewS3Store(ctx context.Context, profile, region string) (*S3Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &S3Store{client: s3.NewFromConfig(cfg)}, nil
}

// List returns every object under the prefix, paging through the full
// listing.
func (s *S3Store) List(ctx context.Context, bucket, prefix string) (map[string]backup.RemoteObject, error) {
	objects := make(map[string]backup.RemoteObject)
	listParams := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	}

	paginator := s3.NewListObjectsV2Paginator(s.client, listParams)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing s3://%s/%s: %w", bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			objects[*obj.Key] = backup.RemoteObject{
				Key:     *obj.Key,
				Size:    aws.ToInt64(obj.Size),
				ModTime: aws.ToTime(obj.LastModified),
			}
		}
	}
	return objects, nil
}

// Upload stores an object using the multipart upload manager.
func (s *S3Store) Upload(ctx context.Context, bucket, key string, r io.Reader, size int64) error {
	uploader := manager.NewUploader(s.client)
	_, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("uploading s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

// Download retrieves an object and writes its content to w.
func (s *S3Store) Download(ctx context.Context, bucket, key string, w io.Writer) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("fetching s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("reading s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

// Compile-time check that S3Store implements backup.ObjectStore.
var _ backup.ObjectStore = (*S3Store)(nil)
