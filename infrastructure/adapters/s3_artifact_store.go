package adapters

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"doc-narrator-api/application/ports/outbound"
	"doc-narrator-api/config"
	"doc-narrator-api/domain"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/rs/zerolog/log"
)

type s3ArtifactStore struct {
	s3Svc         *s3.S3
	storageConfig *config.StorageConfig
}

// NewS3ArtifactStore returns the object-store artifact backend. PutObject is
// atomic on S3, so the write-only-on-full-success discipline holds without a
// temp-and-rename step.
func NewS3ArtifactStore(s3Svc *s3.S3, storageConfig *config.StorageConfig) outbound.ArtifactStorePort {
	return &s3ArtifactStore{
		s3Svc:         s3Svc,
		storageConfig: storageConfig,
	}
}

func (s *s3ArtifactStore) EnsureJob(_ context.Context, ref domain.JobRef) (string, error) {
	// Prefixes need no creation on S3.
	return fmt.Sprintf("s3://%s/%s", s.storageConfig.BucketName, ref.ID), nil
}

func (s *s3ArtifactStore) Put(ctx context.Context, ref domain.JobRef, name string, r io.Reader) (string, error) {
	payload, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	key := s.itemKey(ref, name)
	putInput := &s3.PutObjectInput{
		Bucket:        aws.String(s.storageConfig.BucketName),
		Key:           aws.String(key),
		Body:          bytes.NewReader(payload),
		ContentLength: aws.Int64(int64(len(payload))),
	}

	if _, err := s.s3Svc.PutObjectWithContext(ctx, putInput); err != nil {
		log.Error().
			Err(err).
			Str("bucket", s.storageConfig.BucketName).
			Str("key", key).
			Msg("Failed to upload artifact to S3")
		return "", err
	}

	artifactRef := fmt.Sprintf("s3://%s/%s", s.storageConfig.BucketName, key)
	log.Debug().
		Str("artifact", artifactRef).
		Msg("Successfully uploaded artifact to S3")

	return artifactRef, nil
}

func (s *s3ArtifactStore) Get(ctx context.Context, ref domain.JobRef, name string) (io.ReadCloser, error) {
	out, err := s.s3Svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.storageConfig.BucketName),
		Key:    aws.String(s.itemKey(ref, name)),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

func (s *s3ArtifactStore) Exists(ctx context.Context, ref domain.JobRef, name string) (bool, error) {
	_, err := s.s3Svc.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.storageConfig.BucketName),
		Key:    aws.String(s.itemKey(ref, name)),
	})
	if err != nil {
		if aerr, ok := err.(awserr.RequestFailure); ok && aerr.StatusCode() == 404 {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *s3ArtifactStore) itemKey(ref domain.JobRef, name string) string {
	return fmt.Sprintf("%s/%s", ref.ID, name)
}
