package controllers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/printmade/printshop-backend/api/middleware"
	"github.com/printmade/printshop-backend/internal/checkout"
	"github.com/printmade/printshop-backend/pkg/db/models"
)

type stubCheckoutService struct {
	input checkout.Input
	order *models.Order
	err   error
	calls int
}

func (s *stubCheckoutService) Checkout(ctx context.Context, input checkout.Input) (*models.Order, error) {
	s.calls++
	s.input = input
	if s.err != nil {
		return nil, s.err
	}
	return s.order, nil
}

type stubUploadsService struct {
	stored []string
	path   string
	err    error
}

func (s *stubUploadsService) Store(ctx context.Context, fileName, contentType string, size int64, body io.Reader) (string, error) {
	s.stored = append(s.stored, fileName)
	if s.err != nil {
		return "", s.err
	}
	return s.path, nil
}

func placedOrder(userID uuid.UUID) *models.Order {
	return &models.Order{
		ID:     uuid.New(),
		UserID: userID,
		Total:  decimal.RequireFromString("29.00"),
	}
}

func TestOrderCreateJSON(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()
	svc := &stubCheckoutService{order: placedOrder(userID)}

	body := `{"items":[{"product_id":"` + productID.String() + `","quantity":2}],` +
		`"shipping_address":"1 Print Lane","billing_address":"1 Print Lane"}`
	req := authedRequest(http.MethodPost, "/api/v1/orders", body, userID)
	rec := httptest.NewRecorder()
	OrderCreate(svc, nil, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.calls != 1 {
		t.Fatalf("expected checkout invoked once, got %d", svc.calls)
	}
	if svc.input.UserID != userID {
		t.Fatalf("user id not forwarded")
	}
	if len(svc.input.Items) != 1 || svc.input.Items[0].ProductID != productID || svc.input.Items[0].Quantity != 2 {
		t.Fatalf("items not forwarded: %+v", svc.input.Items)
	}
}

func TestOrderCreateRejectsMissingAddress(t *testing.T) {
	userID := uuid.New()
	svc := &stubCheckoutService{order: placedOrder(userID)}

	body := `{"items":[{"product_id":"` + uuid.NewString() + `","quantity":1}],"billing_address":"x"}`
	req := authedRequest(http.MethodPost, "/api/v1/orders", body, userID)
	rec := httptest.NewRecorder()
	OrderCreate(svc, nil, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if svc.calls != 0 {
		t.Fatalf("checkout should not run on invalid payload")
	}
}

func TestOrderCreateMultipartStoresArtwork(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()
	svc := &stubCheckoutService{order: placedOrder(userID)}
	files := &stubUploadsService{path: "bucket/artwork/abc/logo.pdf"}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	orderJSON := `{"items":[{"product_id":"` + productID.String() + `","quantity":1}],` +
		`"shipping_address":"1 Print Lane","billing_address":"1 Print Lane"}`
	if err := writer.WriteField(orderFormField, orderJSON); err != nil {
		t.Fatalf("write order field: %v", err)
	}
	part, err := writer.CreateFormFile(artworkFieldPrefix+"0", "logo.pdf")
	if err != nil {
		t.Fatalf("create file part: %v", err)
	}
	if _, err := part.Write([]byte("%PDF-1.4")); err != nil {
		t.Fatalf("write file part: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))

	rec := httptest.NewRecorder()
	OrderCreate(svc, files, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if len(files.stored) != 1 || files.stored[0] != "logo.pdf" {
		t.Fatalf("artwork not stored: %v", files.stored)
	}
	if len(svc.input.Files) != 1 {
		t.Fatalf("attachment not forwarded: %+v", svc.input.Files)
	}
	if svc.input.Files[0].ItemIndex != 0 || svc.input.Files[0].Path != files.path {
		t.Fatalf("unexpected attachment %+v", svc.input.Files[0])
	}
}

func TestOrderCreateMultipartRequiresOrderField(t *testing.T) {
	userID := uuid.New()
	svc := &stubCheckoutService{order: placedOrder(userID)}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))

	rec := httptest.NewRecorder()
	OrderCreate(svc, nil, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
