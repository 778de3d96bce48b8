package objectstore

import (
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/weberc2/afs/pkg/types"
)

var _ types.ObjectStore = (*S3ObjectStore)(nil)

// S3ObjectStore keeps snapshots in S3. Objects are stored with
// `ContentType` so that they download sensibly from the console.
type S3ObjectStore struct {
	Client      s3iface.S3API
	ContentType string
}

// NewS3ObjectStore builds a client from the shared AWS configuration
// (environment, ~/.aws). An empty `region` defers to that configuration.
func NewS3ObjectStore(region string) (*S3ObjectStore, error) {
	options := session.Options{SharedConfigState: session.SharedConfigEnable}
	if region != "" {
		options.Config.Region = aws.String(region)
	}
	sess, err := session.NewSessionWithOptions(options)
	if err != nil {
		return nil, fmt.Errorf("creating aws session: %w", err)
	}
	return &S3ObjectStore{
		Client:      s3.New(sess),
		ContentType: "application/gzip",
	}, nil
}

func (store *S3ObjectStore) PutObject(
	bucket string,
	key string,
	data io.ReadSeeker,
) error {
	input := s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   data,
	}
	if store.ContentType != "" {
		input.ContentType = aws.String(store.ContentType)
	}
	if _, err := store.Client.PutObject(&input); err != nil {
		return fmt.Errorf(
			"putting object in bucket `%s` at key `%s`: %w",
			bucket,
			key,
			err,
		)
	}
	return nil
}

func (store *S3ObjectStore) GetObject(
	bucket string,
	key string,
) (io.ReadCloser, error) {
	rsp, err := store.Client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, &types.ObjectNotFoundErr{Bucket: bucket, Key: key}
		}
		return nil, fmt.Errorf(
			"getting object from bucket `%s` at key `%s`: %w",
			bucket,
			key,
			err,
		)
	}
	return rsp.Body, nil
}

func (store *S3ObjectStore) ListObjects(
	bucket string,
	prefix string,
) ([]string, error) {
	var keys []string
	if err := store.Client.ListObjectsV2Pages(
		&s3.ListObjectsV2Input{
			Bucket: aws.String(bucket),
			Prefix: aws.String(prefix),
		},
		func(rsp *s3.ListObjectsV2Output, lastPage bool) bool {
			for _, object := range rsp.Contents {
				keys = append(keys, aws.StringValue(object.Key))
			}
			return true
		},
	); err != nil {
		return keys, fmt.Errorf(
			"listing objects in bucket `%s` with prefix `%s`: %w",
			bucket,
			prefix,
			err,
		)
	}
	return keys, nil
}

// DeleteObject removes `key`. S3 deletes are idempotent, so the object is
// checked first to report missing keys the same way the other stores do.
func (store *S3ObjectStore) DeleteObject(bucket, key string) error {
	if _, err := store.Client.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		if isNoSuchKey(err) {
			return &types.ObjectNotFoundErr{Bucket: bucket, Key: key}
		}
		return fmt.Errorf(
			"checking object in bucket `%s` at key `%s`: %w",
			bucket,
			key,
			err,
		)
	}
	if _, err := store.Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf(
			"deleting object from bucket `%s` at key `%s`: %w",
			bucket,
			key,
			err,
		)
	}
	return nil
}

// isNoSuchKey reports whether `err` means the key doesn't exist. HEAD
// responses carry no body, so they surface as a bare `NotFound` code.
func isNoSuchKey(err error) bool {
	var awsErr awserr.Error
	if !errors.As(err, &awsErr) {
		return false
	}
	return awsErr.Code() == s3.ErrCodeNoSuchKey || awsErr.Code() == "NotFound"
}
