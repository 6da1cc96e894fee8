package usecase

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"careers-backend/internal/domain"
	"careers-backend/pkg/apperror"
	"careers-backend/pkg/logger"
	"careers-backend/pkg/security"
	"careers-backend/pkg/security/antivirus"

	"github.com/google/uuid"
)

// UploadQuota limits uploads per candidate over a long window.
type UploadQuota interface {
	AllowUpload(ctx context.Context, candidateID string) (bool, int, error)
}

type UploadConfig struct {
	MaxBytes int64
	// Scanner is optional; nil skips malware scanning.
	Scanner antivirus.Scanner
	// Quota is optional; nil disables the daily cap.
	Quota UploadQuota
}

type uploadUsecase struct {
	storage   domain.FileStorage
	cfg       UploadConfig
	secLogger *security.SecurityLogger
}

func NewUploadUsecase(storage domain.FileStorage, cfg UploadConfig, secLogger *security.SecurityLogger) domain.UploadUsecase {
	if secLogger == nil {
		secLogger = security.DefaultLogger()
	}
	return &uploadUsecase{storage: storage, cfg: cfg, secLogger: secLogger}
}

func (u *uploadUsecase) rejected(ctx context.Context, event security.EventType, candidateID domain.CandidateID, kind domain.UploadKind, details map[string]interface{}) {
	details["kind"] = string(kind)
	u.secLogger.Log(ctx, security.SecurityEvent{
		Event:        event,
		SubjectType:  "candidate_id",
		SubjectValue: candidateID.String(),
		Details:      details,
	})
}

func (u *uploadUsecase) checkQuota(ctx context.Context, candidateID domain.CandidateID) error {
	if u.cfg.Quota == nil {
		return nil
	}
	allowed, retryAfter, err := u.cfg.Quota.AllowUpload(ctx, candidateID.String())
	if allowed {
		if err != nil {
			logger.Log.Debug("Upload quota not enforced", "error", err)
		}
		return nil
	}
	if err != nil {
		return apperror.Unavailable("Upload service temporarily unavailable. Please try again.", err)
	}
	return apperror.New(http.StatusTooManyRequests,
		fmt.Sprintf("Daily upload limit reached. Please try again in %d minutes.", retryAfter/60), nil)
}

func (u *uploadUsecase) Upload(ctx context.Context, candidateID domain.CandidateID, kind domain.UploadKind, filename string, data []byte) (*domain.UploadResult, error) {
	var policy security.FilePolicy
	switch kind {
	case domain.UploadKindResume:
		policy = security.ResumePolicy
	case domain.UploadKindPhoto:
		policy = security.PhotoPolicy
	default:
		return nil, apperror.BadRequest("Upload kind must be resume or photo")
	}

	if len(data) == 0 {
		return nil, apperror.BadRequest("File is empty")
	}
	if limit := u.cfg.MaxBytes; limit > 0 && int64(len(data)) > limit {
		return nil, apperror.New(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("File is too large. Maximum size is %d MB", limit/(1024*1024)), nil)
	}
	if err := u.checkQuota(ctx, candidateID); err != nil {
		return nil, err
	}

	filename = filepath.Base(filename)
	result := security.ValidateFile(policy, filename, data)
	if !result.Valid {
		u.rejected(ctx, security.EventUploadRejected, candidateID, kind, map[string]interface{}{"reason": result.Error})
		return nil, apperror.BadRequest("Invalid file: " + result.Error)
	}

	if u.cfg.Scanner != nil {
		scan := u.cfg.Scanner.Scan(ctx, filename, bytes.NewReader(data))
		if scan.Error != nil {
			return nil, apperror.Unavailable("File scanning is unavailable. Please try again.", scan.Error)
		}
		if scan.Infected {
			u.rejected(ctx, security.EventMalwareDetected, candidateID, kind, map[string]interface{}{"reason": "malware", "threat": scan.ThreatName, "scanner": scan.ScannerName})
			return nil, apperror.BadRequest("Invalid file: malware detected")
		}
	}

	body, contentType, ext := data, result.DetectedMIME, result.Extension
	resourceType := domain.ResourceRaw
	switch {
	case security.IsImageExtension(ext):
		compressed, err := compressImage(data)
		if err != nil {
			return nil, apperror.BadRequest("Image could not be processed")
		}
		body, contentType, ext = compressed, "image/jpeg", ".jpg"
		resourceType = domain.ResourceImage
	case ext == ".pdf":
		contentType = "application/pdf"
		resourceType = domain.ResourcePDF
	default:
		contentType = mimeForDocument(ext, contentType)
	}

	if u.storage == nil {
		return nil, apperror.Unavailable("File storage is unavailable. Please try again.", nil)
	}
	key := fmt.Sprintf("%ss/%s/%s%s", kind, candidateID, uuid.NewString(), ext)
	url, err := u.storage.Put(ctx, key, contentType, body)
	if err != nil {
		return nil, apperror.Unavailable("File storage is unavailable. Please try again.", err)
	}

	return &domain.UploadResult{
		URL:          url,
		ResourceType: resourceType,
		Key:          key,
		Size:         len(body),
		ContentType:  contentType,
	}, nil
}

func mimeForDocument(ext, detected string) string {
	switch strings.ToLower(ext) {
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return detected
}
