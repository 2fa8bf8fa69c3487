package storage

import (
	"context"
	"encoding/json"
	"errors"
)

var ErrNotConfigured = errors.New("object storage not configured")

// Object is one blob to upload.
type Object struct {
	Key         string
	ContentType string
	Data        []byte
}

// Service uploads objects and returns where they can be fetched from.
type Service interface {
	Put(ctx context.Context, obj Object) (string, error)
}

// PutJSON encodes v and uploads it under key, returning the object URL.
func PutJSON(ctx context.Context, svc Service, key string, v any) (string, error) {
	if svc == nil {
		return "", ErrNotConfigured
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return svc.Put(ctx, Object{Key: key, ContentType: "application/json", Data: data})
}
