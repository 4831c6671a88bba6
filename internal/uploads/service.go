package uploads

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/google/uuid"

	pkgerrors "github.com/printmade/printshop-backend/pkg/errors"
)

type objectStore interface {
	Upload(ctx context.Context, objectName, contentType string, body io.Reader) (string, error)
}

var allowedArtworkTypes = []string{
	"application/pdf",
	"image/png",
	"image/jpeg",
	"image/svg+xml",
}

// Service stores customer artwork files and returns the stable object path
// checkout embeds into an order item's customization.
type Service interface {
	Store(ctx context.Context, fileName, contentType string, size int64, body io.Reader) (string, error)
}

type service struct {
	store          objectStore
	maxUploadBytes int64
}

// NewService builds an uploads service with the required dependencies.
func NewService(store objectStore, maxUploadMB int) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if maxUploadMB <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}
	return &service{
		store:          store,
		maxUploadBytes: int64(maxUploadMB) * 1024 * 1024,
	}, nil
}

func (s *service) Store(ctx context.Context, fileName, contentType string, size int64, body io.Reader) (string, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "file name is required")
	}
	if size <= 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "file size must be positive")
	}
	if size > s.maxUploadBytes {
		return "", pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("file exceeds the %d byte upload limit", s.maxUploadBytes))
	}
	if !isAllowedArtworkType(contentType) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unsupported artwork content type")
	}

	objectName := buildObjectName(uuid.New(), fileName)

	limited := &declaredSizeReader{r: body, left: size}

	path, err := s.store.Upload(ctx, objectName, contentType, limited)
	if limited.exceeded {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "file body exceeds the declared size")
	}
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store artwork file")
	}
	return path, nil
}

// declaredSizeReader fails the stream once more bytes arrive than the caller
// declared, so an understated size cannot store a truncated object.
type declaredSizeReader struct {
	r        io.Reader
	left     int64
	exceeded bool
}

func (d *declaredSizeReader) Read(p []byte) (int, error) {
	if d.exceeded {
		return 0, errDeclaredSizeExceeded
	}
	if d.left <= 0 {
		var probe [1]byte
		n, err := d.r.Read(probe[:])
		if n > 0 {
			d.exceeded = true
			return 0, errDeclaredSizeExceeded
		}
		return 0, err
	}
	if int64(len(p)) > d.left {
		p = p[:d.left]
	}
	n, err := d.r.Read(p)
	d.left -= int64(n)
	return n, err
}

var errDeclaredSizeExceeded = pkgerrors.New(pkgerrors.CodeValidation, "file body exceeds the declared size")

func isAllowedArtworkType(contentType string) bool {
	for _, candidate := range allowedArtworkTypes {
		if strings.EqualFold(candidate, strings.TrimSpace(contentType)) {
			return true
		}
	}
	return false
}

func buildObjectName(id uuid.UUID, fileName string) string {
	cleanName := sanitizeFileName(fileName)
	if cleanName == "" {
		cleanName = id.String()
	}
	return fmt.Sprintf("artwork/%s/%s", id.String(), cleanName)
}

func sanitizeFileName(fileName string) string {
	var b strings.Builder
	for _, r := range fileName {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "._")
}
