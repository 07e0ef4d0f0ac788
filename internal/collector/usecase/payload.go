package usecase

import (
	"fmt"
	"net/url"
	"strings"
)

// ParsePayload decodes a hit payload query string. Blank values are kept,
// empty segments are skipped and a repeated key keeps its last value. A
// segment without '=' or with a bad escape fails the whole payload.
func ParsePayload(raw string) (map[string]string, error) {
	params := make(map[string]string)
	for _, segment := range strings.Split(raw, "&") {
		if segment == "" {
			continue
		}

		key, value, ok := strings.Cut(segment, "=")
		if !ok {
			return nil, fmt.Errorf("%w: bad query field %q", ErrMalformedPayload, segment)
		}

		k, err := url.QueryUnescape(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		v, err := url.QueryUnescape(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		params[k] = v
	}
	return params, nil
}
