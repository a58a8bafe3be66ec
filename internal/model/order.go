package model

import "time"

// DatetimeLayout is the format of OrderRow.Datetime.
const DatetimeLayout = "2006/01/02 15:04:05"

// Result codes carried in Envelope.Result.
const (
	ResultOK    = 0
	ResultError = -1
)

// Order is the body of an addorder request.
type Order struct {
	OrderName    string `json:"orderName" validate:"required,max=100"`
	CustomerName string `json:"customerName" validate:"required,max=100"`
	ProductName  string `json:"productName" validate:"required,max=100"`
}

// OperationOrder is one half of an operation request.
type OperationOrder struct {
	OrderName   string `json:"orderName" validate:"required,max=100"`
	ProductName string `json:"productName" validate:"required,max=100"`
}

// OrderRow is an order as listed by getorder.
type OrderRow struct {
	OrderName    string `json:"order_name"`
	CustomerName string `json:"customer_name"`
	ProductName  string `json:"product_name"`
	Datetime     string `json:"datetime"`
}

// Envelope is the response body of every dlex endpoint. Result is a pointer
// so an absent code can be told apart from ResultOK.
type Envelope struct {
	Result  *int       `json:"result,omitempty"`
	Message string     `json:"message,omitempty"`
	Data    []OrderRow `json:"data,omitempty"`
}

// NewEnvelope builds an envelope with the given result code.
func NewEnvelope(result int, message string) Envelope {
	return Envelope{Result: &result, Message: message}
}

// Succeeded reports whether the envelope carries ResultOK.
func (e Envelope) Succeeded() bool {
	return e.Result != nil && *e.Result == ResultOK
}

// FormatDatetime renders t the way OrderRow.Datetime is stored.
func FormatDatetime(t time.Time) string {
	return t.Local().Format(DatetimeLayout)
}
