package domain

import "context"

type UploadKind string

const (
	UploadKindResume UploadKind = "resume"
	UploadKindPhoto  UploadKind = "photo"
)

// ResourceType normalizes stored files into the three shapes clients render.
type ResourceType string

const (
	ResourceImage ResourceType = "image"
	ResourcePDF   ResourceType = "pdf"
	ResourceRaw   ResourceType = "raw"
)

type UploadResult struct {
	URL          string       `json:"url"`
	ResourceType ResourceType `json:"resourceType"`
	Key          string       `json:"key"`
	Size         int          `json:"size"`
	ContentType  string       `json:"contentType"`
}

// FileStorage is an opaque URL-producing file host.
type FileStorage interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

type UploadUsecase interface {
	Upload(ctx context.Context, candidateID CandidateID, kind UploadKind, filename string, data []byte) (*UploadResult, error)
}
