package page

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"github.com/Guyuepp/Go-Like-Toggle/domain"
)

const attrDisabled = "disabled"

// Document is a rendered page held in memory.
// goquery selections are not safe for concurrent mutation, so every element
// operation goes through the document lock.
type Document struct {
	mu       sync.Mutex
	doc      *goquery.Document
	elements map[*html.Node]*Element
}

// Parse builds a Document from rendered HTML
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return &Document{
		doc:      doc,
		elements: make(map[*html.Node]*Element),
	}, nil
}

// Load parses the HTML file at path
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f)
}

// Buttons returns every element matching selector that carries a non-empty idAttr.
// A selector that matches nothing yields an empty slice.
func (d *Document) Buttons(selector, idAttr string) []domain.ButtonElement {
	d.mu.Lock()
	defer d.mu.Unlock()

	res := make([]domain.ButtonElement, 0)
	d.doc.Find(selector).Each(func(i int, sel *goquery.Selection) {
		id, _ := sel.Attr(idAttr)
		id = strings.TrimSpace(id)
		if id == "" {
			logrus.Warnf("skip %s #%d: missing %s", selector, i, idAttr)
			return
		}

		node := sel.Get(0)
		el, ok := d.elements[node]
		if !ok {
			el = &Element{doc: d, sel: sel, id: id}
			d.elements[node] = el
		}
		res = append(res, el)
	})
	return res
}

// HTML renders the current state of the page
func (d *Document) HTML() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Html()
}

// Element is a button inside a Document
type Element struct {
	doc *Document
	sel *goquery.Selection
	id  string
}

var _ domain.ButtonElement = (*Element)(nil)

func (e *Element) ID() string {
	return e.id
}

func (e *Element) HasClass(_ context.Context, class string) (bool, error) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.sel.HasClass(class), nil
}

func (e *Element) SwapClass(_ context.Context, remove, add string) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.sel.RemoveClass(remove).AddClass(add)
	return nil
}

func (e *Element) SetDisabled(_ context.Context, disabled bool) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if disabled {
		e.sel.SetAttr(attrDisabled, attrDisabled)
	} else {
		e.sel.RemoveAttr(attrDisabled)
	}
	return nil
}

// Classes returns the element's class list
func (e *Element) Classes() []string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	class, _ := e.sel.Attr("class")
	return strings.Fields(class)
}

// Disabled reports whether the disabled attribute is set
func (e *Element) Disabled() bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	_, ok := e.sel.Attr(attrDisabled)
	return ok
}
