package transport

import (
	"encoding/json"
	"net/url"

	"items-api/internal/apperror"
	"items-api/internal/middleware"
	"items-api/internal/repository"
)

const invalidPageMessage = "Invalid page parameter format"

// EncodePageToken renders a scan cursor as an opaque, URL-safe page token
func EncodePageToken(cursor *repository.Cursor) (string, error) {
	raw, err := json.Marshal(cursor)
	if err != nil {
		return "", err
	}
	return url.QueryEscape(string(raw)), nil
}

// DecodePageToken reverses EncodePageToken. An empty token selects the first page.
func DecodePageToken(token string) (*repository.Cursor, error) {
	if token == "" {
		return nil, nil
	}

	unescaped, err := url.PathUnescape(token)
	if err != nil {
		return nil, apperror.Wrap(apperror.InvalidPageCursor, invalidPageMessage, err)
	}

	var cursor repository.Cursor
	if err := json.Unmarshal([]byte(unescaped), &cursor); err != nil {
		return nil, apperror.Wrap(apperror.InvalidPageCursor, invalidPageMessage, err)
	}
	id, err := middleware.ValidateID(cursor.ID)
	if err != nil {
		return nil, apperror.Wrap(apperror.InvalidPageCursor, invalidPageMessage, err)
	}

	return &repository.Cursor{ID: id}, nil
}
