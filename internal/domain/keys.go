package domain

type CtxKey string

const (
	KeyCandidateID   CtxKey = "CandidateID"
	KeyUserEmail     CtxKey = "Email"
	KeyUserRole      CtxKey = "Role"
	KeyEmailVerified CtxKey = "EmailVerified"
	KeyAuthSource    CtxKey = "AuthSource"
	KeyRequestID     CtxKey = "RequestID"
)

const (
	RoleCandidate = "candidate"
	RoleAdmin     = "admin"
)

// Auth sources recorded by the auth gate.
const (
	AuthSourceHeader = "header"
	AuthSourceCookie = "cookie"
)
