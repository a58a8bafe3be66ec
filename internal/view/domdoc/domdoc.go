//go:build js && wasm

// Package domdoc adapts the browser DOM to view.Document.
package domdoc

import (
	"strconv"

	"honnef.co/go/js/dom/v2"

	"dlex-orders/internal/view"
)

type Document struct {
	doc dom.Document
}

func New() *Document {
	return &Document{doc: dom.GetWindow().Document()}
}

func (d *Document) ElementByID(id string) view.Element {
	el := d.doc.GetElementByID(id)
	if el == nil {
		return nil
	}
	return element{el: el}
}

// OnClick registers fn as the click listener of the element with id.
// It reports false when the page has no such element.
func (d *Document) OnClick(id string, fn func()) bool {
	el := d.doc.GetElementByID(id)
	if el == nil {
		return false
	}
	el.AddEventListener("click", false, func(dom.Event) { fn() })
	return true
}

// OperationButtons maps the data-no attribute of every operation button on
// the page to its element id.
func (d *Document) OperationButtons() map[int]string {
	buttons := make(map[int]string)
	for _, el := range d.doc.QuerySelectorAll("[data-no]") {
		no, err := strconv.Atoi(el.GetAttribute("data-no"))
		if err != nil {
			continue
		}
		buttons[no] = el.ID()
	}
	return buttons
}

// Variant returns the data-variant attribute of the page body.
func (d *Document) Variant() string {
	body := d.doc.QuerySelector("body")
	if body == nil {
		return ""
	}
	return body.GetAttribute("data-variant")
}

type element struct {
	el dom.Element
}

func (e element) InnerHTML() string {
	return e.el.InnerHTML()
}

func (e element) SetInnerHTML(html string) {
	e.el.SetInnerHTML(html)
}

func (e element) Display() string {
	return e.el.Underlying().Get("style").Get("display").String()
}

func (e element) SetDisplay(display string) {
	e.el.Underlying().Get("style").Set("display", display)
}

func (e element) Value() string {
	v := e.el.Underlying().Get("value")
	if v.IsUndefined() || v.IsNull() {
		return ""
	}
	return v.String()
}
