package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/nguyentantai21042004/lecture-recap/internal/apperr"
)

type s3API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type s3Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type implS3 struct {
	api     s3API
	presign s3Presigner
}

// NewS3 creates an ObjectStore backed by Amazon S3
func NewS3(client *s3.Client) ObjectStore {
	return &implS3{
		api:     client,
		presign: s3.NewPresignClient(client),
	}
}

func (s *implS3) List(ctx context.Context, bucket, prefix string) ([]Object, error) {
	paginator := s3.NewListObjectsV2Paginator(s.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})

	var objects []Object
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, apperr.New(apperr.KindStorage, "list "+prefix, err)
		}
		for _, obj := range page.Contents {
			objects = append(objects, Object{
				Bucket: bucket,
				Key:    aws.ToString(obj.Key),
				Size:   aws.ToInt64(obj.Size),
			})
		}
	}

	return objects, nil
}

func (s *implS3) Download(ctx context.Context, bucket, key, dst string) error {
	body, err := s.open(ctx, bucket, key)
	if err != nil {
		return err
	}
	defer body.Close()

	f, err := os.Create(dst)
	if err != nil {
		return apperr.New(apperr.KindStorage, "download "+key, fmt.Errorf("create %s: %w", dst, err))
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		return apperr.New(apperr.KindStorage, "download "+key, err)
	}
	return nil
}

func (s *implS3) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	body, err := s.open(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, apperr.New(apperr.KindStorage, "get "+key, err)
	}
	return data, nil
}

func (s *implS3) Put(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return apperr.New(apperr.KindStorage, "put "+key, err)
	}
	return nil
}

func (s *implS3) PresignPut(ctx context.Context, bucket, key, contentType string, ttl time.Duration) (string, error) {
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPrivate,
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", apperr.New(apperr.KindStorage, "presign "+key, err)
	}
	return req.URL, nil
}

func (s *implS3) open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, apperr.New(apperr.KindNotFound, "get "+key, err)
		}
		return nil, apperr.New(apperr.KindStorage, "get "+key, err)
	}
	return out.Body, nil
}
