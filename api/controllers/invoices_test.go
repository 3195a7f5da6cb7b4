package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/billfoldhq/billfold-backend/api/middleware"
	invoicesvc "github.com/billfoldhq/billfold-backend/internal/invoices"
	"github.com/billfoldhq/billfold-backend/pkg/db/models"
	"github.com/billfoldhq/billfold-backend/pkg/enums"
	"github.com/billfoldhq/billfold-backend/pkg/logger"
)

type testInvoiceService struct {
	listFn      func(ctx context.Context, query invoicesvc.ListQuery) (*invoicesvc.ListResult, error)
	getFn       func(ctx context.Context, orgID, id uuid.UUID) (*models.Invoice, error)
	setStatusFn func(ctx context.Context, orgID, id uuid.UUID, status enums.InvoiceStatus) (*models.Invoice, error)
	cancelFn    func(ctx context.Context, orgID, id uuid.UUID) (*models.Invoice, error)
}

func (s *testInvoiceService) List(ctx context.Context, query invoicesvc.ListQuery) (*invoicesvc.ListResult, error) {
	if s.listFn != nil {
		return s.listFn(ctx, query)
	}
	return &invoicesvc.ListResult{}, nil
}

func (s *testInvoiceService) Get(ctx context.Context, orgID, id uuid.UUID) (*models.Invoice, error) {
	if s.getFn != nil {
		return s.getFn(ctx, orgID, id)
	}
	return &models.Invoice{ID: id, OrgID: orgID}, nil
}

func (s *testInvoiceService) Create(ctx context.Context, orgID uuid.UUID, input invoicesvc.CreateInvoiceInput) (*models.Invoice, error) {
	return &models.Invoice{OrgID: orgID, VendorName: input.VendorName}, nil
}

func (s *testInvoiceService) Update(ctx context.Context, orgID, id uuid.UUID, input invoicesvc.UpdateInvoiceInput) (*models.Invoice, error) {
	return &models.Invoice{ID: id, OrgID: orgID}, nil
}

func (s *testInvoiceService) SetStatus(ctx context.Context, orgID, id uuid.UUID, status enums.InvoiceStatus) (*models.Invoice, error) {
	if s.setStatusFn != nil {
		return s.setStatusFn(ctx, orgID, id, status)
	}
	return &models.Invoice{ID: id, OrgID: orgID, Status: status}, nil
}

func (s *testInvoiceService) Categorize(ctx context.Context, orgID, id uuid.UUID, input invoicesvc.CategorizeInput) (*models.Invoice, error) {
	return &models.Invoice{ID: id, OrgID: orgID}, nil
}

func (s *testInvoiceService) AssignVendor(ctx context.Context, orgID, id uuid.UUID, input invoicesvc.AssignVendorInput) (*models.Invoice, error) {
	return &models.Invoice{ID: id, OrgID: orgID}, nil
}

func (s *testInvoiceService) Cancel(ctx context.Context, orgID, id uuid.UUID) (*models.Invoice, error) {
	if s.cancelFn != nil {
		return s.cancelFn(ctx, orgID, id)
	}
	return &models.Invoice{ID: id, OrgID: orgID, Status: enums.InvoiceStatusCancelled}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func jsonBody(payload string) io.Reader {
	return strings.NewReader(payload)
}

func withOrg(req *http.Request, orgID uuid.UUID) *http.Request {
	return req.WithContext(middleware.WithOrgID(req.Context(), orgID.String()))
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestInvoiceListParsesFilters(t *testing.T) {
	orgID := uuid.New()
	categoryID := uuid.New()
	var seen invoicesvc.ListQuery
	svc := &testInvoiceService{
		listFn: func(ctx context.Context, query invoicesvc.ListQuery) (*invoicesvc.ListResult, error) {
			seen = query
			return &invoicesvc.ListResult{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices?status=PENDING&category_id="+categoryID.String()+"&search=acme&limit=25", nil)
	req = withOrg(req, orgID)
	resp := httptest.NewRecorder()
	InvoiceList(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if seen.OrgID != orgID {
		t.Fatalf("unexpected org %s", seen.OrgID)
	}
	if seen.Filters.Status == nil || *seen.Filters.Status != enums.InvoiceStatusPending {
		t.Fatalf("status filter not parsed: %+v", seen.Filters)
	}
	if seen.Filters.CategoryID == nil || *seen.Filters.CategoryID != categoryID {
		t.Fatalf("category filter not parsed: %+v", seen.Filters)
	}
	if seen.Filters.Search != "acme" {
		t.Fatalf("unexpected search %q", seen.Filters.Search)
	}
	if seen.Pagination.Limit != 25 {
		t.Fatalf("unexpected limit %d", seen.Pagination.Limit)
	}
}

func TestInvoiceListRejectsUnknownStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices?status=BOGUS", nil)
	req = withOrg(req, uuid.New())
	resp := httptest.NewRecorder()
	InvoiceList(&testInvoiceService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestInvoiceListRequiresOrgContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil)
	resp := httptest.NewRecorder()
	InvoiceList(&testInvoiceService{}, testLogger())(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestInvoiceDetailReadsRouteParam(t *testing.T) {
	orgID := uuid.New()
	invoiceID := uuid.New()
	svc := &testInvoiceService{
		getFn: func(ctx context.Context, gotOrg, gotID uuid.UUID) (*models.Invoice, error) {
			if gotOrg != orgID {
				t.Fatalf("unexpected org %s", gotOrg)
			}
			if gotID != invoiceID {
				t.Fatalf("unexpected invoice %s", gotID)
			}
			return &models.Invoice{ID: gotID, OrgID: gotOrg}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/"+invoiceID.String(), nil)
	req = withOrg(req, orgID)
	req = addRouteParam(req, "invoiceId", invoiceID.String())
	resp := httptest.NewRecorder()
	InvoiceDetail(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}

	var envelope struct {
		Data models.Invoice `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.ID != invoiceID {
		t.Fatalf("unexpected invoice id %s", envelope.Data.ID)
	}
}

func TestInvoiceDetailRejectsBadID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/not-a-uuid", nil)
	req = withOrg(req, uuid.New())
	req = addRouteParam(req, "invoiceId", "not-a-uuid")
	resp := httptest.NewRecorder()
	InvoiceDetail(&testInvoiceService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestInvoiceSetStatusParsesEnum(t *testing.T) {
	orgID := uuid.New()
	invoiceID := uuid.New()
	var seenStatus enums.InvoiceStatus
	svc := &testInvoiceService{
		setStatusFn: func(ctx context.Context, gotOrg, gotID uuid.UUID, status enums.InvoiceStatus) (*models.Invoice, error) {
			seenStatus = status
			return &models.Invoice{ID: gotID, OrgID: gotOrg, Status: status}, nil
		},
	}

	body := `{"status":"PAID"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/"+invoiceID.String()+"/status", jsonBody(body))
	req.Header.Set("Content-Type", "application/json")
	req = withOrg(req, orgID)
	req = addRouteParam(req, "invoiceId", invoiceID.String())
	resp := httptest.NewRecorder()
	InvoiceSetStatus(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if seenStatus != enums.InvoiceStatusPaid {
		t.Fatalf("unexpected parsed status %s", seenStatus)
	}
}

func TestInvoiceSetStatusRejectsUnknownValue(t *testing.T) {
	invoiceID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/"+invoiceID.String()+"/status", jsonBody(`{"status":"SHIPPED"}`))
	req.Header.Set("Content-Type", "application/json")
	req = withOrg(req, uuid.New())
	req = addRouteParam(req, "invoiceId", invoiceID.String())
	resp := httptest.NewRecorder()
	InvoiceSetStatus(&testInvoiceService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
