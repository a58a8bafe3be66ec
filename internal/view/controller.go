package view

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dlex-orders/internal/model"
)

// Ids of the fixed page elements.
const (
	IDOrderData     = "orderdata"
	IDMessages      = "messages"
	IDErrorMessages = "errormessages"
	IDOrderName     = "orderName"
	IDCustomerName  = "customerName"
	IDProductName   = "productName"
)

// Display values written to banner elements.
const (
	DisplayBlock = "block"
	DisplayNone  = "none"
)

var ErrMissingElement = errors.New("element not found")

// OrderAPI is the backend the controller talks to.
type OrderAPI interface {
	ListOrders(ctx context.Context) (model.Envelope, error)
	AddOrder(ctx context.Context, order model.Order) (model.Envelope, error)
	Operation(ctx context.Context, a, b model.OperationOrder) (model.Envelope, error)
	DeleteOrders(ctx context.Context) (model.Envelope, error)
}

// ResetMode says when both banners are hidden relative to the network call.
type ResetMode int

const (
	ResetBefore ResetMode = iota
	ResetAfter
)

// Options select the behaviour of one page variant.
type Options struct {
	Reset ResetMode
	// RefreshAfterSubmit re-renders the list after a successful submission.
	RefreshAfterSubmit bool
	// ClearListOnError empties the list when a call fails or its result is nonzero.
	ClearListOnError bool
}

// Presets for the order pages.
var (
	VariantList      = Options{Reset: ResetBefore}
	VariantAdd       = Options{Reset: ResetBefore}
	VariantRefresh   = Options{Reset: ResetBefore, RefreshAfterSubmit: true}
	VariantOperation = Options{Reset: ResetAfter, RefreshAfterSubmit: true, ClearListOnError: true}
)

var variants = map[string]Options{
	"list":      VariantList,
	"add":       VariantAdd,
	"refresh":   VariantRefresh,
	"operation": VariantOperation,
}

// VariantByName looks a preset up by its page name.
func VariantByName(name string) (Options, bool) {
	opts, ok := variants[name]
	return opts, ok
}

// Fields names the inputs read by one operation button.
type Fields struct {
	FirstOrderName    string
	FirstProductName  string
	SecondOrderName   string
	SecondProductName string
}

// OperationFields derives the input ids bound to operation button no.
func OperationFields(no int) Fields {
	return Fields{
		FirstOrderName:    fmt.Sprintf("%s%d1", IDOrderName, no),
		FirstProductName:  fmt.Sprintf("%s%d1", IDProductName, no),
		SecondOrderName:   fmt.Sprintf("%s%d2", IDOrderName, no),
		SecondProductName: fmt.Sprintf("%s%d2", IDProductName, no),
	}
}

// Controller reads form inputs, calls the API and rewrites the page.
// Calls may overlap; the last response to arrive wins.
type Controller struct {
	api  OrderAPI
	doc  Document
	opts Options
}

func NewController(api OrderAPI, doc Document, opts Options) *Controller {
	return &Controller{api: api, doc: doc, opts: opts}
}

// GetOrder fetches every order and renders it into the list.
func (c *Controller) GetOrder(ctx context.Context) error {
	list, err := c.element(IDOrderData)
	if err != nil {
		return err
	}
	if c.opts.Reset == ResetBefore {
		if err := c.hideBanners(); err != nil {
			return err
		}
	}

	env, err := c.api.ListOrders(ctx)
	if c.opts.Reset == ResetAfter {
		if hideErr := c.hideBanners(); hideErr != nil {
			return hideErr
		}
	}
	if err != nil {
		if c.opts.ClearListOnError {
			list.SetInnerHTML("")
		}
		return fmt.Errorf("get order: %w", err)
	}

	list.SetInnerHTML(RenderRows(env.Data))
	return c.showBanner(env)
}

// AddOrder submits the three order inputs exactly as typed.
func (c *Controller) AddOrder(ctx context.Context) error {
	values, err := c.values(IDOrderName, IDCustomerName, IDProductName)
	if err != nil {
		return err
	}
	order := model.Order{OrderName: values[0], CustomerName: values[1], ProductName: values[2]}

	return c.submit(ctx, "add order", func(ctx context.Context) (model.Envelope, error) {
		return c.api.AddOrder(ctx, order)
	})
}

// Operation submits the pair of orders bound to button no.
func (c *Controller) Operation(ctx context.Context, no int) error {
	f := OperationFields(no)
	values, err := c.values(f.FirstOrderName, f.FirstProductName, f.SecondOrderName, f.SecondProductName)
	if err != nil {
		return err
	}
	a := model.OperationOrder{OrderName: values[0], ProductName: values[1]}
	b := model.OperationOrder{OrderName: values[2], ProductName: values[3]}

	return c.submit(ctx, fmt.Sprintf("operation %d", no), func(ctx context.Context) (model.Envelope, error) {
		return c.api.Operation(ctx, a, b)
	})
}

// DeleteOrders removes every order.
func (c *Controller) DeleteOrders(ctx context.Context) error {
	return c.submit(ctx, "delete orders", c.api.DeleteOrders)
}

// Bind returns the click handler of operation button no.
func (c *Controller) Bind(no int) func(context.Context) error {
	return func(ctx context.Context) error {
		return c.Operation(ctx, no)
	}
}

func (c *Controller) submit(ctx context.Context, action string, call func(context.Context) (model.Envelope, error)) error {
	if c.opts.Reset == ResetBefore {
		if err := c.hideBanners(); err != nil {
			return err
		}
	}

	env, err := call(ctx)
	if c.opts.Reset == ResetAfter {
		if hideErr := c.hideBanners(); hideErr != nil {
			return hideErr
		}
	}
	if err != nil {
		c.clearListOnError()
		return fmt.Errorf("%s: %w", action, err)
	}

	var refreshErr error
	if env.Succeeded() {
		if c.opts.RefreshAfterSubmit {
			refreshErr = c.refresh(ctx)
		}
	} else {
		c.clearListOnError()
	}

	if err := c.showBanner(env); err != nil {
		return err
	}
	return refreshErr
}

// refresh re-renders the list without touching the banners.
func (c *Controller) refresh(ctx context.Context) error {
	list, err := c.element(IDOrderData)
	if err != nil {
		return err
	}
	env, err := c.api.ListOrders(ctx)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	list.SetInnerHTML(RenderRows(env.Data))
	return nil
}

func (c *Controller) clearListOnError() {
	if !c.opts.ClearListOnError {
		return
	}
	if list := c.doc.ElementByID(IDOrderData); list != nil {
		list.SetInnerHTML("")
	}
}

func (c *Controller) hideBanners() error {
	for _, id := range []string{IDMessages, IDErrorMessages} {
		el, err := c.element(id)
		if err != nil {
			return err
		}
		el.SetDisplay(DisplayNone)
	}
	return nil
}

// showBanner shows the message in the success or error banner. Nothing is
// shown unless the envelope has both a message and a result.
func (c *Controller) showBanner(env model.Envelope) error {
	if env.Message == "" || env.Result == nil {
		return nil
	}
	id := IDErrorMessages
	if *env.Result == model.ResultOK {
		id = IDMessages
	}
	el, err := c.element(id)
	if err != nil {
		return err
	}
	el.SetInnerHTML("<p>" + env.Message + "</p>")
	el.SetDisplay(DisplayBlock)
	return nil
}

func (c *Controller) values(ids ...string) ([]string, error) {
	values := make([]string, len(ids))
	for i, id := range ids {
		el, err := c.element(id)
		if err != nil {
			return nil, err
		}
		values[i] = el.Value()
	}
	return values, nil
}

func (c *Controller) element(id string) (Element, error) {
	el := c.doc.ElementByID(id)
	if el == nil {
		return nil, fmt.Errorf("%q: %w", id, ErrMissingElement)
	}
	return el, nil
}

// RenderRows renders one flex row per order. Values are inserted as is.
func RenderRows(rows []model.OrderRow) string {
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(`<div class="flex-container">`)
		b.WriteString(`<div style="width:100px;" class="t_data">` + row.OrderName + `</div>`)
		b.WriteString(`<div style="width:200px;" class="t_data">` + row.CustomerName + `</div>`)
		b.WriteString(`<div style="width:300px;" class="t_data">` + row.ProductName + `</div>`)
		b.WriteString(`<div style="width:300px;" class="t_data">` + row.Datetime + `</div>`)
		b.WriteString(`</div>`)
	}
	return b.String()
}
