// Package rpc exposes the billing operations as a Connect service.
package rpc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/billing/internal/billing"
	"github.com/mmynk/billing/internal/export"
	"github.com/mmynk/billing/internal/models"
)

// ServiceName is the fully-qualified name of the billing service.
const ServiceName = "billing.v1.BillingService"

// Procedure paths.
const (
	SaveBillProcedure       = "/" + ServiceName + "/SaveBill"
	ListRecordsProcedure    = "/" + ServiceName + "/ListRecords"
	ExportRecordsProcedure  = "/" + ServiceName + "/ExportRecords"
	DeleteCustomerProcedure = "/" + ServiceName + "/DeleteCustomer"
)

// BillingServer adapts a billing.BillingStore to Connect handlers.
type BillingServer struct {
	store     billing.BillingStore
	exportDir string
}

// NewBillingServer creates a server. Exports are written under exportDir.
func NewBillingServer(store billing.BillingStore, exportDir string) *BillingServer {
	return &BillingServer{store: store, exportDir: exportDir}
}

// NewBillingServiceHandler builds an HTTP handler from the server. It returns
// the path on which to mount the handler and the handler itself.
func NewBillingServiceHandler(svc *BillingServer, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(SaveBillProcedure, connect.NewUnaryHandler(SaveBillProcedure, svc.SaveBill, opts...))
	mux.Handle(ListRecordsProcedure, connect.NewUnaryHandler(ListRecordsProcedure, svc.ListRecords, opts...))
	mux.Handle(ExportRecordsProcedure, connect.NewUnaryHandler(ExportRecordsProcedure, svc.ExportRecords, opts...))
	mux.Handle(DeleteCustomerProcedure, connect.NewUnaryHandler(DeleteCustomerProcedure, svc.DeleteCustomer, opts...))
	return "/" + ServiceName + "/", mux
}

// SaveBill handles the Save Bill form action.
func (s *BillingServer) SaveBill(ctx context.Context, req *connect.Request[SaveBillRequest]) (*connect.Response[SaveBillResponse], error) {
	saved, err := s.store.SaveBill(ctx, req.Msg.Name, req.Msg.Email, req.Msg.Amount)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&SaveBillResponse{
		BillID:          saved.Bill.ID,
		CustomerID:      saved.Customer.ID,
		CustomerCreated: saved.CustomerCreated,
		Date:            saved.Bill.Date,
		Time:            saved.Bill.Time,
	}), nil
}

// ListRecords handles the Load Records form action.
func (s *BillingServer) ListRecords(ctx context.Context, _ *connect.Request[ListRecordsRequest]) (*connect.Response[ListRecordsResponse], error) {
	records, err := s.store.ListRecords(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = Record{
			BillID:       r.BillID,
			CustomerName: r.CustomerName,
			Email:        r.Email,
			Amount:       models.FormatAmount(r.Amount),
			Date:         r.Date,
			Time:         r.Time,
		}
	}
	return connect.NewResponse(&ListRecordsResponse{Records: out}), nil
}

// ExportRecords handles the Export form action.
func (s *BillingServer) ExportRecords(ctx context.Context, req *connect.Request[ExportRecordsRequest]) (*connect.Response[ExportRecordsResponse], error) {
	name, err := exportFilename(req.Msg.Filename)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	path := filepath.Join(s.exportDir, name)
	if err := s.store.ExportRecords(ctx, path); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ExportRecordsResponse{Path: path}), nil
}

// DeleteCustomer handles the Delete Customer form action. An unknown email
// is reported in the response, not as an error.
func (s *BillingServer) DeleteCustomer(ctx context.Context, req *connect.Request[DeleteCustomerRequest]) (*connect.Response[DeleteCustomerResponse], error) {
	result, err := s.store.DeleteCustomer(ctx, req.Msg.Email)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&DeleteCustomerResponse{
		Deleted:  result == billing.Deleted,
		NotFound: result == billing.NotFound,
	}), nil
}

// exportFilename reduces a requested name to a bare file name. A name
// without an extension is written as a workbook and gets the .xlsx suffix.
func exportFilename(requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return export.DefaultFilename, nil
	}
	name := filepath.Base(requested)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid export filename %q", requested)
	}
	if filepath.Ext(name) == "" {
		name += "." + string(export.FormatXLSX)
	}
	return name, nil
}

func toConnectError(err error) error {
	switch {
	case errors.Is(err, billing.ErrValidation):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case billing.IsDuplicate(err):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// NewExportDownloadHandler serves the records as a spreadsheet download.
// ?format=csv selects CSV; the default is a workbook.
func NewExportDownloadHandler(store billing.BillingStore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		format := export.FormatXLSX
		contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		if strings.EqualFold(r.URL.Query().Get("format"), "csv") {
			format = export.FormatCSV
			contentType = "text/csv"
		}

		records, err := store.ListRecords(r.Context())
		if err != nil {
			slog.Error("Export download failed", "error", err)
			http.Error(w, "could not load records", http.StatusInternalServerError)
			return
		}

		// Buffer so a failed encode never sends a partial file.
		var buf bytes.Buffer
		if err := export.Write(&buf, format, records); err != nil {
			slog.Error("Export download failed", "error", err)
			http.Error(w, "could not encode records", http.StatusInternalServerError)
			return
		}

		filename := strings.TrimSuffix(export.DefaultFilename, filepath.Ext(export.DefaultFilename)) + "." + string(format)
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		http.ServeContent(w, r, filename, time.Now(), bytes.NewReader(buf.Bytes()))
	})
}
