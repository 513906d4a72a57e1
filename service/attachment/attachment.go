package attachment

import (
	"context"
	"fmt"
	"time"

	"servicedesk-backend/apperr"
	"servicedesk-backend/config"

	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss"
	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss/credentials"
)

const presignExpiry = 15 * time.Minute

// Service 文章附件服务，附件存储在OSS上，路径为 articles/<文章id>/<文件名>
type Service struct {
	client *oss.Client
	bucket string
	region string
}

func NewService() (*Service, error) {
	cfg := config.Cfg.OSS
	if cfg.BucketName == "" {
		return nil, apperr.Configuration("oss bucket name is not set")
	}

	client := oss.NewClient(&oss.Config{
		Region: oss.Ptr(cfg.Region),
		CredentialsProvider: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.AccessKeySecret,
		),
	})

	return &Service{
		client: client,
		bucket: cfg.BucketName,
		region: cfg.Region,
	}, nil
}

func ObjectName(articleID uint, fileName string) string {
	return fmt.Sprintf("articles/%d/%s", articleID, fileName)
}

// PresignDownloadURL 生成附件的临时下载链接
func (s *Service) PresignDownloadURL(ctx context.Context, articleID uint, fileName string) (string, error) {
	result, err := s.client.Presign(ctx, &oss.GetObjectRequest{
		Bucket: oss.Ptr(s.bucket),
		Key:    oss.Ptr(ObjectName(articleID, fileName)),
	}, oss.PresignExpires(presignExpiry))
	if err != nil {
		return "", apperr.Upstream("failed to presign download url: %v", err)
	}
	return result.URL, nil
}

type UploadPolicy struct {
	Host string `json:"host"`
	Dir  string `json:"dir"`
}

// UploadPolicyFor 前端直传附件需要的目标地址信息
func (s *Service) UploadPolicyFor(articleID uint) UploadPolicy {
	return UploadPolicy{
		Host: fmt.Sprintf("https://%s.oss-%s.aliyuncs.com", s.bucket, s.region),
		Dir:  fmt.Sprintf("articles/%d/", articleID),
	}
}
