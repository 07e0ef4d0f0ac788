package usecase

import (
	"encoding/base64"
	"errors"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// FirstPage is the cursor of the newest page.
var FirstPage = Cursor{ServerTimeUTC: math.MaxInt64}

// EncodeCursor renders c as an opaque, URL-safe token.
func EncodeCursor(c Cursor) string {
	return base64.URLEncoding.EncodeToString([]byte(strconv.FormatInt(c.ServerTimeUTC, 10) + ":" + c.ID))
}

// DecodeCursor parses a token from EncodeCursor. An empty token is the first page.
func DecodeCursor(token string) (Cursor, error) {
	if token == "" {
		return FirstPage, nil
	}

	decoded, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}

	ts, id, _ := strings.Cut(string(decoded), ":")
	serverTime, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}

	return Cursor{ServerTimeUTC: serverTime, ID: id}, nil
}
