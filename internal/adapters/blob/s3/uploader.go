// Package s3 sube respaldos de la planilla de pesajes a un bucket S3 (o MinIO).
package s3

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	appconfig "herd-weight-tracker/internal/platform/config"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// putter es la parte de *s3.Client que se usa.
type putter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Uploader struct {
	client putter
	bucket string
	prefix string
	now    func() time.Time
}

// New arma el cliente con la cadena de credenciales por defecto de AWS.
func New(ctx context.Context, cfg appconfig.BackupConfig) (*Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newUploader(client, cfg.Bucket, cfg.Prefix), nil
}

func newUploader(client putter, bucket, prefix string) *Uploader {
	return &Uploader{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		now:    time.Now,
	}
}

// Key arma <prefix>/<YYYY-MM-DD>/<uuid>.xlsx.
func (u *Uploader) Key() string {
	return path.Join(u.prefix, u.now().UTC().Format("2006-01-02"), uuid.NewString()+".xlsx")
}

// Upload sube body y devuelve la key usada.
func (u *Uploader) Upload(ctx context.Context, body []byte) (string, error) {
	key := u.Key()
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(xlsxContentType),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", u.bucket, key, err)
	}
	return key, nil
}
