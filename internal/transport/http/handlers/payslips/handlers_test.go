package payslips

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sawa/internal/domain/auth"
	"sawa/internal/domain/payroll"
)

type fakeSlips struct {
	rec payroll.Record
}

func (f *fakeSlips) PayslipByID(_ context.Context, tenantID, payslipID string) (payroll.Record, error) {
	if tenantID != f.rec.TenantID || payslipID != f.rec.ID {
		return payroll.Record{}, payroll.ErrPayslipNotFound
	}
	return f.rec, nil
}

func testRecord() payroll.Record {
	return payroll.Record{
		ID:           "slip-1",
		TenantID:     "tenant-1",
		RunID:        "run-1",
		EmployeeID:   "emp-1",
		EmployeeCode: "EMP0001",
		EmployeeName: "Ngozi Okafor",
		Period:       "2026-08",
		Slip: payroll.Payslip{
			Basic: 30_000_000,
			Gross: 45_000_000,
			Net:   40_000_000,
		},
		CreatedAt: time.Now(),
	}
}

func TestHandleDownload(t *testing.T) {
	gate := auth.NewGate("test-secret", 10*time.Minute, nil)
	rec := testRecord()
	h := NewHandler(gate, &fakeSlips{rec: rec})

	token, err := gate.IssueDownloadToken(rec.TenantID, rec.ID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest("GET", "/payslips/pdf?token="+token, nil)
	resp := httptest.NewRecorder()
	h.HandleDownload(resp, req)

	if resp.Code != 200 {
		t.Fatalf("status = %d: %s", resp.Code, resp.Body.String())
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type = %q", ct)
	}
	if cd := resp.Header().Get("Content-Disposition"); !strings.Contains(cd, "payslip-EMP0001-2026-08.pdf") {
		t.Fatalf("content disposition = %q", cd)
	}
	if !strings.HasPrefix(resp.Body.String(), "%PDF") {
		t.Fatal("response is not a PDF")
	}
}

func TestHandleDownloadBadToken(t *testing.T) {
	gate := auth.NewGate("test-secret", 10*time.Minute, nil)
	h := NewHandler(gate, &fakeSlips{rec: testRecord()})

	req := httptest.NewRequest("GET", "/payslips/pdf?token=garbage", nil)
	resp := httptest.NewRecorder()
	h.HandleDownload(resp, req)

	if resp.Code != 403 {
		t.Fatalf("status = %d", resp.Code)
	}
}

func TestHandleDownloadMissingToken(t *testing.T) {
	gate := auth.NewGate("test-secret", 10*time.Minute, nil)
	h := NewHandler(gate, &fakeSlips{rec: testRecord()})

	req := httptest.NewRequest("GET", "/payslips/pdf", nil)
	resp := httptest.NewRecorder()
	h.HandleDownload(resp, req)

	if resp.Code != 403 {
		t.Fatalf("status = %d", resp.Code)
	}
}

func TestHandleDownloadUnknownPayslip(t *testing.T) {
	gate := auth.NewGate("test-secret", 10*time.Minute, nil)
	h := NewHandler(gate, &fakeSlips{rec: testRecord()})

	token, err := gate.IssueDownloadToken("tenant-1", "missing-slip")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest("GET", "/payslips/pdf?token="+token, nil)
	resp := httptest.NewRecorder()
	h.HandleDownload(resp, req)

	if resp.Code != 404 {
		t.Fatalf("status = %d", resp.Code)
	}
}

func TestHandleDownloadExpiredToken(t *testing.T) {
	gate := auth.NewGate("test-secret", -time.Minute, nil)
	rec := testRecord()
	h := NewHandler(gate, &fakeSlips{rec: rec})

	token, err := gate.IssueDownloadToken(rec.TenantID, rec.ID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest("GET", "/payslips/pdf?token="+token, nil)
	resp := httptest.NewRecorder()
	h.HandleDownload(resp, req)

	if resp.Code != 403 {
		t.Fatalf("status = %d", resp.Code)
	}
}
