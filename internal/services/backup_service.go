package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"cottonwood-backend/internal/membership"
	"cottonwood-backend/internal/metrics"
	"cottonwood-backend/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the S3 call the backup needs
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// BackupConfig describes an S3-compatible bucket (Cloudflare R2 in production)
type BackupConfig struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Prefix    string
}

// NewS3Client builds a client for an S3-compatible endpoint
func NewS3Client(ctx context.Context, cfg BackupConfig) (*s3.Client, error) {
	region := cfg.Region
	if region == "" {
		region = "auto"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to configure backup client: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// RosterSnapshot is the JSON document uploaded by a backup
type RosterSnapshot struct {
	GeneratedAt time.Time               `json:"generatedAt"`
	Stats       models.ClubStats        `json:"stats"`
	Members     []models.MemberResponse `json:"members"`
}

// BackupResult names the uploaded object
type BackupResult struct {
	Key     string    `json:"key"`
	Members int       `json:"members"`
	Bytes   int       `json:"bytes"`
	TakenAt time.Time `json:"takenAt"`
}

type BackupService struct {
	Members *MemberService
	Client  ObjectPutter
	Bucket  string
	Prefix  string
}

// NewBackupService returns a service that uploads to bucket. A nil client
// disables backups.
func NewBackupService(members *MemberService, client ObjectPutter, bucket, prefix string) *BackupService {
	return &BackupService{Members: members, Client: client, Bucket: bucket, Prefix: prefix}
}

// Enabled reports whether a bucket is configured
func (s *BackupService) Enabled() bool {
	return s.Client != nil && s.Bucket != ""
}

// Run snapshots the resolved roster and uploads it
func (s *BackupService) Run(ctx context.Context) (*BackupResult, error) {
	if !s.Enabled() {
		return nil, ErrBackupDisabled
	}

	log.Println("[Backup] Starting roster snapshot...")
	all, err := s.Members.Roster(ctx)
	if err != nil {
		metrics.BackupsTotal.WithLabelValues("failure").Inc()
		return nil, err
	}

	takenAt := s.Members.Clock()
	snap := RosterSnapshot{
		GeneratedAt: takenAt.UTC(),
		Stats:       membership.ComputeStats(all, s.Members.Today(), nil),
		Members:     make([]models.MemberResponse, 0, len(all)),
	}
	for _, r := range all {
		snap.Members = append(snap.Members, membership.ToResponse(r))
	}

	data, err := json.Marshal(snap)
	if err != nil {
		metrics.BackupsTotal.WithLabelValues("failure").Inc()
		return nil, err
	}

	key := s.objectKey(takenAt)
	_, err = s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		metrics.BackupsTotal.WithLabelValues("failure").Inc()
		log.Printf("[Backup] Failed to upload %s: %v", key, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	metrics.BackupsTotal.WithLabelValues("success").Inc()
	log.Printf("[Backup] Success: %s (%d members, %d bytes)", key, len(all), len(data))
	return &BackupResult{Key: key, Members: len(all), Bytes: len(data), TakenAt: takenAt}, nil
}

func (s *BackupService) objectKey(t time.Time) string {
	prefix := strings.Trim(s.Prefix, "/")
	name := fmt.Sprintf("roster_%s.json", t.UTC().Format("20060102_150405"))
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
