// services/minio.go
package services

import (
	goContext "context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"

	"github.com/serenity-path/aura_api/dto"
	"github.com/serenity-path/aura_api/shared"
)

// MinIOService stores achievement badge images in object storage.
type MinIOService struct {
	context.DefaultService

	client *minio.Client

	endpoint  string
	accessKey string
	secretKey string
	bucket    string
	useSSL    bool
	publicURL string
}

const MINIO_SVC = "minio_svc"

func (svc MinIOService) Id() string {
	return MINIO_SVC
}

func (svc *MinIOService) Configure(ctx *context.Context) error {
	svc.endpoint = envOr("MINIO_ENDPOINT", "localhost:9000")
	svc.accessKey = envOr("MINIO_ACCESS_KEY", "minioadmin")
	svc.secretKey = envOr("MINIO_SECRET_KEY", "minioadmin")
	svc.bucket = envOr("MINIO_BUCKET", "aura-badges")
	svc.useSSL = os.Getenv("MINIO_USE_SSL") == "true"
	svc.publicURL = os.Getenv("MINIO_PUBLIC_URL")

	return svc.DefaultService.Configure(ctx)
}

func (svc *MinIOService) Start() error {
	client, err := minio.New(svc.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(svc.accessKey, svc.secretKey, ""),
		Secure: svc.useSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create minio client: %w", err)
	}
	svc.client = client

	ctx, cancel := goContext.WithTimeout(goContext.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, svc.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, svc.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		log.Printf("Created bucket %s", svc.bucket)
	}

	return nil
}

var allowedBadgeTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
}

// UploadBadge stores a badge image under badges/<achievementID><ext> and
// returns its public URL.
func (svc *MinIOService) UploadBadge(achievementID string, file *multipart.FileHeader) (*dto.MediaUploadResponse, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType, ok := allowedBadgeTypes[ext]
	if !ok {
		return nil, shared.NewBadRequestError(nil, "Unsupported badge image type")
	}

	src, err := file.Open()
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to read upload")
	}
	defer src.Close()

	objectName := fmt.Sprintf("badges/%s%s", achievementID, ext)

	ctx, cancel := goContext.WithTimeout(goContext.Background(), 30*time.Second)
	defer cancel()

	info, err := svc.client.PutObject(ctx, svc.bucket, objectName, src, file.Size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to store badge image")
	}

	return &dto.MediaUploadResponse{
		ObjectName:  objectName,
		URL:         svc.ObjectURL(objectName),
		Size:        info.Size,
		ContentType: contentType,
	}, nil
}

func (svc *MinIOService) ObjectURL(objectName string) string {
	if svc.publicURL != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(svc.publicURL, "/"), svc.bucket, objectName)
	}

	scheme := "http"
	if svc.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, svc.endpoint, svc.bucket, objectName)
}

func (svc *MinIOService) DeleteObject(objectName string) error {
	ctx, cancel := goContext.WithTimeout(goContext.Background(), 10*time.Second)
	defer cancel()

	return svc.client.RemoveObject(ctx, svc.bucket, objectName, minio.RemoveObjectOptions{})
}
