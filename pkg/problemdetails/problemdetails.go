package problemdetails

import "fmt"

const (
	TypeInvalidRequest       = "invalid-request"
	TypeMalformedPayload     = "malformed-payload"
	TypePayloadTooLarge      = "payload-too-large"
	TypeMethodNotAllowed     = "method-not-allowed"
	TypeUnsupportedMediaType = "unsupported-media-type"
	TypeRateLimitExceeded    = "rate-limit-exceeded"
	TypeInternalError        = "internal-error"
)

const typeBaseURL = "https://hitstream.dev/problems/"

type ProblemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

func New(status int, problemType, title, detail string) *ProblemDetail {
	return &ProblemDetail{
		Type:   fmt.Sprintf("%s%s", typeBaseURL, problemType),
		Title:  title,
		Status: status,
		Detail: detail,
	}
}
