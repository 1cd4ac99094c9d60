package rpc

// SaveBillRequest carries the form fields for one bill.
type SaveBillRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Amount string `json:"amount"`
}

type SaveBillResponse struct {
	BillID          int64  `json:"bill_id"`
	CustomerID      int64  `json:"customer_id"`
	CustomerCreated bool   `json:"customer_created"`
	Date            string `json:"date"`
	Time            string `json:"time"`
}

type ListRecordsRequest struct{}

// Record is one bill joined with its customer. Amount is a decimal string.
type Record struct {
	BillID       int64  `json:"bill_id"`
	CustomerName string `json:"customer_name"`
	Email        string `json:"email"`
	Amount       string `json:"amount"`
	Date         string `json:"date"`
	Time         string `json:"time"`
}

type ListRecordsResponse struct {
	Records []Record `json:"records"`
}

// ExportRecordsRequest names the file to write inside the server's export
// directory. Only the base name is used.
type ExportRecordsRequest struct {
	Filename string `json:"filename"`
}

type ExportRecordsResponse struct {
	Path string `json:"path"`
}

type DeleteCustomerRequest struct {
	Email string `json:"email"`
}

// DeleteCustomerResponse reports the outcome. Exactly one of Deleted and
// NotFound is true.
type DeleteCustomerResponse struct {
	Deleted  bool `json:"deleted"`
	NotFound bool `json:"not_found"`
}
