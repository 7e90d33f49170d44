package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"twin-agent/internal/domain"
)

// s3API is the minimal S3 interface required by S3Store.
// *s3.Client from aws-sdk-go-v2 satisfies this interface.
type s3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Store keeps one JSON object per session under a key prefix. S3 PUTs are
// atomic per object, so a reader sees either the previous record or the new
// one, never a partial write.
type S3Store struct {
	api    s3API
	bucket string
	prefix string
}

func NewS3Store(api s3API, bucket, prefix string) (*S3Store, error) {
	if api == nil {
		return nil, errors.New("repository: s3 api must not be nil")
	}
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("repository: s3 bucket must not be empty")
	}
	return &S3Store{
		api:    api,
		bucket: bucket,
		prefix: strings.Trim(strings.TrimSpace(prefix), "/"),
	}, nil
}

func (s *S3Store) key(sessionID string) string {
	if s.prefix == "" {
		return sessionID + fileExt
	}
	return s.prefix + "/" + sessionID + fileExt
}

func (s *S3Store) Load(ctx context.Context, sessionID string) ([]domain.Message, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(sessionID)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return []domain.Message{}, nil
		}
		return nil, fmt.Errorf("repository: get session %q: %w: %w", sessionID, ErrUnavailable, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("repository: read session %q: %w: %w", sessionID, ErrUnavailable, err)
	}
	history, err := decodeHistory(data)
	if err != nil {
		return nil, fmt.Errorf("repository: session %q: %w", sessionID, err)
	}
	return history, nil
}

func (s *S3Store) Append(ctx context.Context, sessionID string, history []domain.Message) error {
	data, err := encodeHistory(history)
	if err != nil {
		return fmt.Errorf("repository: session %q: %w", sessionID, err)
	}
	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(sessionID)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("repository: put session %q: %w: %w", sessionID, ErrUnavailable, err)
	}
	return nil
}

func (s *S3Store) Sessions(ctx context.Context) ([]string, error) {
	listPrefix := ""
	if s.prefix != "" {
		listPrefix = s.prefix + "/"
	}

	var (
		ids   []string
		token *string
	)
	for {
		out, err := s.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(listPrefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("repository: list sessions: %w: %w", ErrUnavailable, err)
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			name := strings.TrimPrefix(key, listPrefix)
			if !strings.HasSuffix(name, fileExt) || strings.Contains(name, "/") {
				continue
			}
			ids = append(ids, strings.TrimSuffix(name, fileExt))
		}
		if out.NextContinuationToken == nil {
			break
		}
		token = out.NextContinuationToken
	}
	return ids, nil
}
