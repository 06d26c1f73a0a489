package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/nijaru/yt-sum/config"
	"github.com/nijaru/yt-sum/errors"
	"github.com/nijaru/yt-sum/models"
)

// objectAPI is the part of the S3 client the archive uses.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Archive keeps the latest summary per video and algorithm in an S3
// compatible bucket such as DigitalOcean Spaces.
type Archive struct {
	client objectAPI
	bucket string
}

func NewArchive(ctx context.Context, cfg config.ArchiveConfig) (*Archive, error) {
	const op = "storage.NewArchive"

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Internal(op, err, "unable to load SDK config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newArchive(client, cfg.Bucket), nil
}

func newArchive(client objectAPI, bucket string) *Archive {
	return &Archive{client: client, bucket: bucket}
}

func Key(videoID string, algorithm models.Algorithm) string {
	return fmt.Sprintf("summaries/%s/%s.json", videoID, algorithm)
}

// Save overwrites the stored summary for the record's video and algorithm.
func (a *Archive) Save(ctx context.Context, record *models.Record) error {
	const op = "Archive.Save"

	data, err := json.Marshal(record)
	if err != nil {
		return errors.Internal(op, err, "failed to marshal summary")
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(Key(record.VideoID, record.Algorithm)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return errors.Internal(op, err, "failed to save summary to archive")
	}
	return nil
}

func (a *Archive) Get(ctx context.Context, videoID string, algorithm models.Algorithm) (*models.Record, error) {
	const op = "Archive.Get"

	result, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(Key(videoID, algorithm)),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, errors.NotFound(op, err,
				fmt.Sprintf("no archived %s summary for video %s", algorithm, videoID))
		}
		return nil, errors.Internal(op, err, "failed to get summary from archive")
	}
	defer result.Body.Close()

	var record models.Record
	if err := json.NewDecoder(result.Body).Decode(&record); err != nil {
		return nil, errors.Internal(op, err, "failed to decode archived summary")
	}
	return &record, nil
}
