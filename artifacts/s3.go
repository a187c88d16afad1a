package artifacts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config contains minimal configuration for the S3 artifact store.
// Region and Profile fall back to the standard AWS config/credential chain.
type S3Config struct {
	Bucket string
	// Prefix is prepended to every object key.
	Prefix  string
	Region  string
	Profile string
	// UsePathStyle forces path-style addressing (useful for S3-compatible providers).
	UsePathStyle bool
	// PresignExpiry is how long returned URLs stay valid.
	PresignExpiry time.Duration
}

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type presignAPI interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Store uploads artifacts to a bucket and returns presigned GET URLs
type S3Store struct {
	client  objectAPI
	presign presignAPI
	bucket  string
	prefix  string
	expiry  time.Duration

	mu   sync.RWMutex
	keys map[string]string // handle -> object key
}

// NewS3Store creates an S3 store using the default AWS configuration chain
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	c := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})
	return newS3Store(c, s3.NewPresignClient(c), cfg), nil
}

func newS3Store(client objectAPI, presign presignAPI, cfg S3Config) *S3Store {
	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	expiry := cfg.PresignExpiry
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &S3Store{
		client:  client,
		presign: presign,
		bucket:  cfg.Bucket,
		prefix:  prefix,
		expiry:  expiry,
		keys:    make(map[string]string),
	}
}

// Save uploads data and returns a presigned URL for it
func (s *S3Store) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := s.prefix + "artifacts/" + uniqueName(name)

	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("failed to upload object to S3: %w", err)
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign object: %w", err)
	}

	s.mu.Lock()
	s.keys[req.URL] = key
	s.mu.Unlock()
	return req.URL, nil
}

// Open streams an artifact saved during this session. Caller must Close it.
func (s *S3Store) Open(ctx context.Context, handle string) (io.ReadCloser, error) {
	s.mu.RLock()
	key, ok := s.keys[handle]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}
