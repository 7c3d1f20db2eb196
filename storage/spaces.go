// Package storage archives assembled transcripts to an S3-compatible
// bucket such as DigitalOcean Spaces.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/nijaru/yt-transcript/errors"
)

type SpacesConfig struct {
	AccessKey string
	SecretKey string
	Region    string
	Endpoint  string
	Bucket    string
	PathStyle bool
}

type SpacesClient struct {
	client *s3.Client
	bucket string
}

// ArchivedTranscript is the JSON document stored per video.
type ArchivedTranscript struct {
	VideoID   string    `json:"video_id"`
	Language  string    `json:"language"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSpacesClient(ctx context.Context, cfg SpacesConfig) (*SpacesClient, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
		config.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	return &SpacesClient{client: client, bucket: cfg.Bucket}, nil
}

func objectKey(videoID string) string {
	return fmt.Sprintf("transcripts/%s.json", videoID)
}

func (s *SpacesClient) SaveTranscript(ctx context.Context, videoID, language, text string) error {
	data, err := json.Marshal(ArchivedTranscript{
		VideoID:   videoID,
		Language:  language,
		Text:      text,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey(videoID)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to save to Spaces: %w", err)
	}

	return nil
}

// GetTranscript reads an archived transcript back. A missing object is a
// NotFound AppError.
func (s *SpacesClient) GetTranscript(ctx context.Context, videoID string) (*ArchivedTranscript, error) {
	const op = "SpacesClient.GetTranscript"

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(videoID)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if stderrors.As(err, &noSuchKey) {
			return nil, errors.NotFound(op, err, "Archived transcript not found")
		}
		return nil, fmt.Errorf("failed to get from Spaces: %w", err)
	}
	defer result.Body.Close()

	var data ArchivedTranscript
	if err := json.NewDecoder(result.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode transcript: %w", err)
	}

	return &data, nil
}
