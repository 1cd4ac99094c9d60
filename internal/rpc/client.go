package rpc

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

// BillingServiceClient calls the billing service over Connect.
type BillingServiceClient struct {
	saveBill       *connect.Client[SaveBillRequest, SaveBillResponse]
	listRecords    *connect.Client[ListRecordsRequest, ListRecordsResponse]
	exportRecords  *connect.Client[ExportRecordsRequest, ExportRecordsResponse]
	deleteCustomer *connect.Client[DeleteCustomerRequest, DeleteCustomerResponse]
}

// NewBillingServiceClient constructs a client for the service at baseURL,
// e.g. http://localhost:8080.
func NewBillingServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *BillingServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &BillingServiceClient{
		saveBill:       connect.NewClient[SaveBillRequest, SaveBillResponse](httpClient, baseURL+SaveBillProcedure, opts...),
		listRecords:    connect.NewClient[ListRecordsRequest, ListRecordsResponse](httpClient, baseURL+ListRecordsProcedure, opts...),
		exportRecords:  connect.NewClient[ExportRecordsRequest, ExportRecordsResponse](httpClient, baseURL+ExportRecordsProcedure, opts...),
		deleteCustomer: connect.NewClient[DeleteCustomerRequest, DeleteCustomerResponse](httpClient, baseURL+DeleteCustomerProcedure, opts...),
	}
}

func (c *BillingServiceClient) SaveBill(ctx context.Context, req *connect.Request[SaveBillRequest]) (*connect.Response[SaveBillResponse], error) {
	return c.saveBill.CallUnary(ctx, req)
}

func (c *BillingServiceClient) ListRecords(ctx context.Context, req *connect.Request[ListRecordsRequest]) (*connect.Response[ListRecordsResponse], error) {
	return c.listRecords.CallUnary(ctx, req)
}

func (c *BillingServiceClient) ExportRecords(ctx context.Context, req *connect.Request[ExportRecordsRequest]) (*connect.Response[ExportRecordsResponse], error) {
	return c.exportRecords.CallUnary(ctx, req)
}

func (c *BillingServiceClient) DeleteCustomer(ctx context.Context, req *connect.Request[DeleteCustomerRequest]) (*connect.Response[DeleteCustomerResponse], error) {
	return c.deleteCustomer.CallUnary(ctx, req)
}
