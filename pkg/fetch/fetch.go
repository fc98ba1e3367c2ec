// Package fetch downloads SIF bundles from an object store into the local
// input directory ahead of a load run.
package fetch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/netpublish/sifloader/pkg/logging"
)

// Config selects the bucket prefix to pull .sif objects from.
type Config struct {
	Bucket          string `yaml:"bucket" validate:"required"`
	Prefix          string `yaml:"prefix"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"` // non-AWS stores
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// S3API is the subset of the S3 client the fetcher uses.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewClient builds an S3 client from the fetch configuration. Credentials
// fall back to the ambient AWS chain when not set explicitly.
func NewClient(ctx context.Context, cfg Config) (*s3.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Fetcher downloads .sif objects under a bucket prefix.
type Fetcher struct {
	api    S3API
	bucket string
	prefix string
	dest   string
	log    logging.Logger
}

// NewFetcher creates a fetcher writing into dest.
func NewFetcher(api S3API, bucket, prefix, dest string, log logging.Logger) *Fetcher {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Fetcher{
		api:    api,
		bucket: bucket,
		prefix: prefix,
		dest:   dest,
		log:    log.With(logging.Component("fetcher")),
	}
}

// Fetch lists the prefix and downloads every .sif object into the
// destination directory. Returns the local paths written.
func (f *Fetcher) Fetch(ctx context.Context) ([]string, error) {
	if err := os.MkdirAll(f.dest, 0o755); err != nil {
		return nil, fmt.Errorf("create destination %s: %w", f.dest, err)
	}

	var written []string
	var continuation *string
	for {
		out, err := f.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(f.bucket),
			Prefix:            aws.String(f.prefix),
			ContinuationToken: continuation,
		})
		if err != nil {
			return written, fmt.Errorf("list s3://%s/%s: %w", f.bucket, f.prefix, err)
		}

		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, ".sif") {
				continue
			}
			local, err := f.download(ctx, key)
			if err != nil {
				return written, err
			}
			written = append(written, local)
		}

		if !aws.ToBool(out.IsTruncated) {
			break
		}
		continuation = out.NextContinuationToken
	}

	f.log.Info("fetched sif bundle",
		logging.String("bucket", f.bucket),
		logging.Count(len(written)))
	return written, nil
}

func (f *Fetcher) download(ctx context.Context, key string) (string, error) {
	out, err := f.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("get s3://%s/%s: %w", f.bucket, key, err)
	}
	defer out.Body.Close()

	local := filepath.Join(f.dest, path.Base(key))
	tmp := local + ".part"
	w, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", tmp, err)
	}
	if _, err := io.Copy(w, out.Body); err != nil {
		w.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("download %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, local); err != nil {
		return "", err
	}

	f.log.Debug("downloaded object", logging.String("key", key), logging.File(local))
	return local, nil
}
