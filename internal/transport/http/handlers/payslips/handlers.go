package payslips

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"sawa/internal/domain/auth"
	"sawa/internal/domain/payroll"
	"sawa/internal/transport/http/api"
	"sawa/internal/transport/http/middleware"
)

type PayslipSource interface {
	PayslipByID(ctx context.Context, tenantID, payslipID string) (payroll.Record, error)
}

type Handler struct {
	Gate  *auth.Gate
	Slips PayslipSource
}

func NewHandler(gate *auth.Gate, slips PayslipSource) *Handler {
	return &Handler{Gate: gate, Slips: slips}
}

// HandleDownload serves the PDF behind a signed download link. The token
// names exactly one payslip and expires on the PIN-token TTL, so links
// forwarded outside the chat go stale quickly.
func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	claims, err := h.Gate.VerifyDownloadToken(r.URL.Query().Get("token"))
	if err != nil {
		api.Fail(w, http.StatusForbidden, "invalid_token", "download link is invalid or has expired", requestID)
		return
	}

	rec, err := h.Slips.PayslipByID(r.Context(), claims.TenantID, claims.PayslipID)
	if errors.Is(err, payroll.ErrPayslipNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "payslip not found", requestID)
		return
	}
	if err != nil {
		slog.Error("payslip lookup failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal", "could not load payslip", requestID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=payslip-%s-%s.pdf", rec.EmployeeCode, rec.Period))
	if err := payroll.RenderPDF(w, rec); err != nil {
		slog.Error("payslip render failed", "err", err, "requestId", requestID)
	}
}
