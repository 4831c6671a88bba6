package uploads

import (
	"context"
	"io"
	"strings"
	"testing"

	pkgerrors "github.com/printmade/printshop-backend/pkg/errors"
)

type stubObjectStore struct {
	objectName  string
	contentType string
	body        string
	err         error
}

func (s *stubObjectStore) Upload(_ context.Context, objectName, contentType string, body io.Reader) (string, error) {
	s.objectName = objectName
	s.contentType = contentType
	data, _ := io.ReadAll(body)
	s.body = string(data)
	if s.err != nil {
		return "", s.err
	}
	return "bucket/" + objectName, nil
}

func TestStoreReturnsObjectPath(t *testing.T) {
	store := &stubObjectStore{}
	svc, err := NewService(store, 25)
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	path, err := svc.Store(context.Background(), "poster final.pdf", "application/pdf", 12, strings.NewReader("pdf contents"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if !strings.HasPrefix(path, "bucket/artwork/") {
		t.Fatalf("unexpected path %q", path)
	}
	if !strings.HasSuffix(store.objectName, "poster_final.pdf") {
		t.Fatalf("unexpected object name %q", store.objectName)
	}
	if store.body != "pdf contents" {
		t.Fatalf("body not streamed: %q", store.body)
	}
}

func TestStoreWrapsProviderFailure(t *testing.T) {
	store := &stubObjectStore{err: io.ErrUnexpectedEOF}
	svc, err := NewService(store, 25)
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	_, err = svc.Store(context.Background(), "a.pdf", "application/pdf", 10, strings.NewReader("x"))
	if !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestStoreRejectsBodyLongerThanDeclaredSize(t *testing.T) {
	store := &stubObjectStore{}
	svc, err := NewService(store, 25)
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	_, err = svc.Store(context.Background(), "a.pdf", "application/pdf", 4, strings.NewReader("more than four bytes"))
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for oversize body, got %v", err)
	}
}

func TestStoreAcceptsBodyMatchingDeclaredSize(t *testing.T) {
	store := &stubObjectStore{}
	svc, err := NewService(store, 25)
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	if _, err = svc.Store(context.Background(), "a.pdf", "application/pdf", 4, strings.NewReader("1234")); err != nil {
		t.Fatalf("store: %v", err)
	}
	if store.body != "1234" {
		t.Fatalf("body not streamed: %q", store.body)
	}
}

func TestStoreValidation(t *testing.T) {
	svc, err := NewService(&stubObjectStore{}, 1)
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	_, err = svc.Store(context.Background(), "", "application/pdf", 10, strings.NewReader("x"))
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for empty name, got %v", err)
	}

	_, err = svc.Store(context.Background(), "a.pdf", "application/x-msdownload", 10, strings.NewReader("x"))
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for content type, got %v", err)
	}

	_, err = svc.Store(context.Background(), "a.pdf", "application/pdf", 2*1024*1024, strings.NewReader("x"))
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for size, got %v", err)
	}

	_, err = svc.Store(context.Background(), "a.pdf", "application/pdf", 0, strings.NewReader("x"))
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for zero size, got %v", err)
	}
}
