package view

import "sync"

// Element is the part of a DOM node the controller touches.
type Element interface {
	InnerHTML() string
	SetInnerHTML(html string)
	Display() string
	SetDisplay(display string)
	Value() string
}

// Document looks elements up by id. ElementByID returns nil when the id is
// not present.
type Document interface {
	ElementByID(id string) Element
}

// MemoryDocument is a Document kept in memory, used by tests and the CLI.
type MemoryDocument struct {
	mu       sync.RWMutex
	elements map[string]*MemoryElement
}

// NewMemoryDocument creates a document holding an empty element per id.
func NewMemoryDocument(ids ...string) *MemoryDocument {
	d := &MemoryDocument{elements: make(map[string]*MemoryElement, len(ids))}
	for _, id := range ids {
		d.Add(id)
	}
	return d
}

// NewPageDocument creates a document with the ids of the order page plus
// the operation fields for every index in nos.
func NewPageDocument(nos ...int) *MemoryDocument {
	ids := []string{IDOrderData, IDMessages, IDErrorMessages, IDOrderName, IDCustomerName, IDProductName}
	for _, no := range nos {
		f := OperationFields(no)
		ids = append(ids, f.FirstOrderName, f.FirstProductName, f.SecondOrderName, f.SecondProductName)
	}
	return NewMemoryDocument(ids...)
}

// Add registers id, returning the existing element when already present.
func (d *MemoryDocument) Add(id string) *MemoryElement {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.elements[id]; ok {
		return el
	}
	el := &MemoryElement{}
	d.elements[id] = el
	return el
}

func (d *MemoryDocument) ElementByID(id string) Element {
	el := d.Element(id)
	if el == nil {
		return nil
	}
	return el
}

// Element returns the concrete element for id, or nil.
func (d *MemoryDocument) Element(id string) *MemoryElement {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.elements[id]
}

// SetValue sets the value of the input registered under id.
func (d *MemoryDocument) SetValue(id, value string) {
	d.Add(id).SetValue(value)
}

type MemoryElement struct {
	mu        sync.Mutex
	innerHTML string
	display   string
	value     string
}

func (e *MemoryElement) InnerHTML() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.innerHTML
}

func (e *MemoryElement) SetInnerHTML(html string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.innerHTML = html
}

func (e *MemoryElement) Display() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.display
}

func (e *MemoryElement) SetDisplay(display string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.display = display
}

func (e *MemoryElement) Value() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value
}

func (e *MemoryElement) SetValue(value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.value = value
}

// Visible reports whether the element is shown as a block.
func (e *MemoryElement) Visible() bool {
	return e.Display() == DisplayBlock
}
