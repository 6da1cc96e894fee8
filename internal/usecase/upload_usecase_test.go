package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"
	"testing"

	"careers-backend/internal/domain"
	"careers-backend/internal/usecase"
	"careers-backend/pkg/apperror"
	"careers-backend/pkg/security"
	"careers-backend/pkg/security/antivirus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

var minimalPDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func TestUpload(t *testing.T) {
	ctx := context.Background()
	cid := domain.NewCandidateID()

	t.Run("Should recompress photos to bounded JPEG", func(t *testing.T) {
		store := &fakeStorage{}
		uc := usecase.NewUploadUsecase(store, usecase.UploadConfig{MaxBytes: 5 << 20}, security.NewNopLogger())

		res, err := uc.Upload(ctx, cid, domain.UploadKindPhoto, "me.png", pngBytes(t, 2400, 600))
		require.NoError(t, err)
		assert.Equal(t, domain.ResourceImage, res.ResourceType)
		assert.Equal(t, "image/jpeg", store.contentType)
		assert.True(t, strings.HasPrefix(store.key, "photos/"+cid.String()+"/"))
		assert.True(t, strings.HasSuffix(store.key, ".jpg"))
		assert.Equal(t, "https://files.example.com/"+store.key, res.URL)

		decoded, err := jpeg.Decode(bytes.NewReader(store.body))
		require.NoError(t, err)
		assert.Equal(t, 1200, decoded.Bounds().Dx())
		assert.Equal(t, 300, decoded.Bounds().Dy())
	})

	t.Run("Should store resumes as pdf resources", func(t *testing.T) {
		store := &fakeStorage{}
		uc := usecase.NewUploadUsecase(store, usecase.UploadConfig{MaxBytes: 5 << 20}, security.NewNopLogger())

		res, err := uc.Upload(ctx, cid, domain.UploadKindResume, "cv.PDF", minimalPDF)
		require.NoError(t, err)
		assert.Equal(t, domain.ResourcePDF, res.ResourceType)
		assert.Equal(t, "application/pdf", store.contentType)
		assert.True(t, strings.HasPrefix(store.key, "resumes/"+cid.String()+"/"))
		assert.Equal(t, minimalPDF, store.body)
	})

	t.Run("Should reject content that does not match the extension", func(t *testing.T) {
		uc := usecase.NewUploadUsecase(&fakeStorage{}, usecase.UploadConfig{MaxBytes: 5 << 20}, security.NewNopLogger())

		_, err := uc.Upload(ctx, cid, domain.UploadKindResume, "cv.pdf", pngBytes(t, 4, 4))
		requireAppError(t, err, apperror.KindValidation, http.StatusBadRequest)
	})

	t.Run("Should reject photos uploaded as resumes", func(t *testing.T) {
		uc := usecase.NewUploadUsecase(&fakeStorage{}, usecase.UploadConfig{MaxBytes: 5 << 20}, security.NewNopLogger())

		_, err := uc.Upload(ctx, cid, domain.UploadKindResume, "me.png", pngBytes(t, 4, 4))
		requireAppError(t, err, apperror.KindValidation, http.StatusBadRequest)
	})

	t.Run("Should enforce the size limit", func(t *testing.T) {
		uc := usecase.NewUploadUsecase(&fakeStorage{}, usecase.UploadConfig{MaxBytes: 16}, security.NewNopLogger())

		_, err := uc.Upload(ctx, cid, domain.UploadKindResume, "cv.pdf", minimalPDF)
		require.Error(t, err)
		var appErr *apperror.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, http.StatusRequestEntityTooLarge, appErr.Code)
	})

	t.Run("Should reject unknown kind", func(t *testing.T) {
		uc := usecase.NewUploadUsecase(&fakeStorage{}, usecase.UploadConfig{MaxBytes: 5 << 20}, security.NewNopLogger())

		_, err := uc.Upload(ctx, cid, "avatar", "me.png", pngBytes(t, 4, 4))
		requireAppError(t, err, apperror.KindValidation, http.StatusBadRequest)
	})

	t.Run("Should report storage outage as unavailable", func(t *testing.T) {
		uc := usecase.NewUploadUsecase(&fakeStorage{err: errors.New("s3 down")}, usecase.UploadConfig{MaxBytes: 5 << 20}, security.NewNopLogger())

		_, err := uc.Upload(ctx, cid, domain.UploadKindResume, "cv.pdf", minimalPDF)
		requireAppError(t, err, apperror.KindUnavailable, http.StatusServiceUnavailable)
	})

	t.Run("Should reject files the scanner flags", func(t *testing.T) {
		store := &fakeStorage{}
		scanner := &fakeScanner{result: antivirus.ScanResult{Infected: true, ThreatName: "Eicar-Signature", ScannerName: "fake"}}
		core, logs := observer.New(zapcore.DebugLevel)
		uc := usecase.NewUploadUsecase(store, usecase.UploadConfig{MaxBytes: 5 << 20, Scanner: scanner}, security.NewLogger(zap.New(core)))

		_, err := uc.Upload(ctx, cid, domain.UploadKindResume, "cv.pdf", minimalPDF)
		requireAppError(t, err, apperror.KindValidation, http.StatusBadRequest)
		assert.Equal(t, minimalPDF, scanner.scanned)
		assert.Empty(t, store.key)

		entries := logs.FilterMessage(string(security.EventMalwareDetected)).All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Equal(t, string(security.SeverityCRITICAL), entries[0].ContextMap()["severity"])
	})

	t.Run("Should refuse uploads when scanning fails", func(t *testing.T) {
		scanner := &fakeScanner{result: antivirus.ScanResult{Infected: true, Error: errors.New("clamd down")}}
		uc := usecase.NewUploadUsecase(&fakeStorage{}, usecase.UploadConfig{MaxBytes: 5 << 20, Scanner: scanner}, security.NewNopLogger())

		_, err := uc.Upload(ctx, cid, domain.UploadKindResume, "cv.pdf", minimalPDF)
		requireAppError(t, err, apperror.KindUnavailable, http.StatusServiceUnavailable)
	})

	t.Run("Should enforce the daily quota", func(t *testing.T) {
		quota := &fakeQuota{allowed: false, retryAfter: 3600}
		uc := usecase.NewUploadUsecase(&fakeStorage{}, usecase.UploadConfig{MaxBytes: 5 << 20, Quota: quota}, security.NewNopLogger())

		_, err := uc.Upload(ctx, cid, domain.UploadKindResume, "cv.pdf", minimalPDF)
		require.Error(t, err)
		var appErr *apperror.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, http.StatusTooManyRequests, appErr.Code)
		assert.Equal(t, cid.String(), quota.candidateID)
	})

	t.Run("Should upload when the quota store is unreachable", func(t *testing.T) {
		store := &fakeStorage{}
		quota := &fakeQuota{allowed: true, err: errors.New("redis not connected")}
		uc := usecase.NewUploadUsecase(store, usecase.UploadConfig{MaxBytes: 5 << 20, Quota: quota}, security.NewNopLogger())

		_, err := uc.Upload(ctx, cid, domain.UploadKindResume, "cv.pdf", minimalPDF)
		require.NoError(t, err)
		assert.NotEmpty(t, store.key)
	})
}

type fakeScanner struct {
	result  antivirus.ScanResult
	scanned []byte
}

func (f *fakeScanner) Scan(_ context.Context, _ string, data io.Reader) antivirus.ScanResult {
	f.scanned, _ = io.ReadAll(data)
	return f.result
}

func (f *fakeScanner) Name() string { return "fake" }

func (f *fakeScanner) Available(context.Context) bool { return true }

type fakeQuota struct {
	allowed     bool
	retryAfter  int
	err         error
	candidateID string
}

func (f *fakeQuota) AllowUpload(_ context.Context, candidateID string) (bool, int, error) {
	f.candidateID = candidateID
	return f.allowed, f.retryAfter, f.err
}
