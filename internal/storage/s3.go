package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

type S3Options struct {
	Region string
	// Endpoint targets an S3-compatible server (MinIO); path-style addressing is used.
	Endpoint string
	// PublicURL, when set, is the CDN base that serves "{PublicURL}/{bucket}/{key}".
	PublicURL string
	ACL       string
}

type S3Store struct {
	client   *s3.S3
	uploader *s3manager.Uploader
	bucket   string
	base     string
	acl      string
}

func NewS3Session(opts S3Options) (*session.Session, error) {
	cfg := &aws.Config{Region: aws.String(opts.Region)}
	if opts.Endpoint != "" {
		cfg.Endpoint = aws.String(opts.Endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
	return session.NewSession(cfg)
}

func NewS3Store(sess *session.Session, bucket string, opts S3Options) *S3Store {
	client := s3.New(sess)

	var base string
	switch {
	case opts.PublicURL != "":
		base = strings.TrimRight(opts.PublicURL, "/") + "/" + bucket
	case opts.Endpoint != "":
		base = strings.TrimRight(opts.Endpoint, "/") + "/" + bucket
	default:
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, opts.Region)
	}

	return &S3Store{
		client:   client,
		uploader: s3manager.NewUploaderWithClient(client),
		bucket:   bucket,
		base:     base,
		acl:      opts.ACL,
	}
}

func (s *S3Store) Bucket() string { return s.bucket }

func (s *S3Store) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	input := &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if s.acl != "" {
		input.ACL = aws.String(s.acl)
	}

	if _, err := s.uploader.UploadWithContext(ctx, input); err != nil {
		return "", err
	}
	return s.PublicURL(key), nil
}

// Remove checks the key exists first; S3 reports success for deletes of missing keys.
func (s *S3Store) Remove(ctx context.Context, key string) error {
	_, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var reqErr awserr.RequestFailure
		if errors.As(err, &reqErr) && reqErr.StatusCode() == http.StatusNotFound {
			return fmt.Errorf("%s/%s: %w", s.bucket, key, ErrNotFound)
		}
		return err
	}

	_, err = s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *S3Store) PublicURL(key string) string {
	return s.base + "/" + escapeKey(key)
}

func (s *S3Store) KeyFromURL(rawURL string) (string, bool) {
	return keyAfterPrefix(rawURL, s.base+"/")
}
