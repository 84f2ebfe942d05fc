package content

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/sirupsen/logrus"
)

type objectStore interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// BucketSink publishes documents to an S3 compatible bucket. Objects whose
// checksum metadata matches the document are not uploaded again.
type BucketSink struct {
	log     *logrus.Logger
	storage objectStore
	bucket  *string
	prefix  string
}

func NewBucketSink(log *logrus.Logger, storage *s3.Client, bucket *string, prefix string) *BucketSink {
	return &BucketSink{
		log:     log,
		storage: storage,
		bucket:  bucket,
		prefix:  prefix,
	}
}

func checksum(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound"
}

func (b *BucketSink) Write(ctx context.Context, doc *Document) error {
	key := path.Join(b.prefix, doc.Path)
	docChecksum := checksum(doc.Body)

	headRes, err := b.storage.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: b.bucket,
		Key:    &key,
	})
	if err == nil && headRes.Metadata["checksum"] == docChecksum {
		b.log.Debugf("%s is up to date", key)
		return nil
	}
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("could not check if %s exists: %w", key, err)
	}

	_, err = b.storage.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      b.bucket,
		Key:         &key,
		Body:        bytes.NewReader(doc.Body),
		ContentType: aws.String("text/markdown; charset=utf-8"),
		Metadata: map[string]string{
			"checksum": docChecksum,
		},
	})
	if err != nil {
		return fmt.Errorf("could not upload %s: %w", key, err)
	}
	b.log.Infof("uploaded %s", key)
	return nil
}
