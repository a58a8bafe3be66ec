//go:build js && wasm

package main

import (
	"context"
	"log"
	"net/url"
	"os"
	"syscall/js"

	"dlex-orders/internal/client"
	"dlex-orders/internal/view"
	"dlex-orders/internal/view/domdoc"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	base, err := pageBase()
	if err != nil {
		logger.Printf("msg=startup_failed err=%q", err)
		return
	}
	api, err := client.New(base)
	if err != nil {
		logger.Printf("msg=startup_failed err=%q", err)
		return
	}

	doc := domdoc.New()
	opts, ok := view.VariantByName(doc.Variant())
	if !ok {
		opts = view.VariantOperation
	}
	ctrl := view.NewController(api, doc, opts)

	// Each click runs on its own goroutine; overlapping calls are not serialized.
	onClick := func(event string, fn func(context.Context) error) func() {
		return func() {
			go func() {
				if err := fn(context.Background()); err != nil {
					logger.Printf("msg=%s_failed err=%q", event, err)
				}
			}()
		}
	}

	doc.OnClick("getButton", onClick("get_order", ctrl.GetOrder))
	doc.OnClick("addButton", onClick("add_order", ctrl.AddOrder))
	doc.OnClick("deleteButton", onClick("delete_orders", ctrl.DeleteOrders))
	for no, id := range doc.OperationButtons() {
		doc.OnClick(id, onClick("operation", ctrl.Bind(no)))
	}

	logger.Printf("msg=dlexweb_ready base=%s", base)
	select {}
}

// pageBase resolves "./" against the page location, as relative fetch URLs do.
func pageBase() (string, error) {
	page, err := url.Parse(js.Global().Get("location").Get("href").String())
	if err != nil {
		return "", err
	}
	return page.ResolveReference(&url.URL{Path: "./"}).String(), nil
}
