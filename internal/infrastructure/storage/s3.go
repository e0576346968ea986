package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/YouSangSon/tour-service/internal/config"
	"github.com/YouSangSon/tour-service/internal/domain/repository"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrInvalidConfig는 저장소 설정 누락 에러입니다
var ErrInvalidConfig = errors.New("storage: bucket, access key and secret key are required")

// PutObjectAPI는 S3 클라이언트 중 사용하는 부분입니다
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store는 S3 호환 오브젝트 저장소 기반 이미지 저장소입니다
type S3Store struct {
	client PutObjectAPI
	bucket string
}

var _ repository.ImageStore = (*S3Store)(nil)

// NewS3Client는 설정으로 S3 클라이언트를 생성합니다
func NewS3Client(cfg config.StorageConfig) (*s3.Client, error) {
	if cfg.Bucket == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, ErrInvalidConfig
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = region
			o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
		},
	}
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.UsePathStyle
		})
	}

	return s3.New(s3.Options{}, opts...), nil
}

// NewS3Store는 새로운 S3Store를 생성합니다
func NewS3Store(client PutObjectAPI, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket}
}

// Put은 이미지를 public-read로 업로드합니다
func (s *S3Store) Put(ctx context.Context, folder, name, contentType string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(path.Join(folder, name)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		ACL:           types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}
	return nil
}
