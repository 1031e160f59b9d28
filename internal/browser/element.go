package browser

import (
	"context"
	"slices"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"github.com/Guyuepp/Go-Like-Toggle/domain"
)

// Element is a button node of a Tab
type Element struct {
	tab  *Tab
	node cdp.NodeID
	id   string
}

var _ domain.ButtonElement = (*Element)(nil)

func (e *Element) ID() string {
	return e.id
}

func (e *Element) HasClass(ctx context.Context, class string) (bool, error) {
	classes, err := e.classes(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(classes, class), nil
}

func (e *Element) SwapClass(ctx context.Context, remove, add string) error {
	e.tab.mu.Lock()
	defer e.tab.mu.Unlock()

	classes, err := e.classes(ctx)
	if err != nil {
		return err
	}

	next := make([]string, 0, len(classes)+1)
	for _, c := range classes {
		if c != remove && c != add {
			next = append(next, c)
		}
	}
	next = append(next, add)

	return chromedp.Run(e.tab.ctx,
		chromedp.SetAttributeValue(e.sel(), "class", strings.Join(next, " "), chromedp.ByNodeID))
}

func (e *Element) SetDisabled(ctx context.Context, disabled bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.tab.mu.Lock()
	defer e.tab.mu.Unlock()

	if disabled {
		return chromedp.Run(e.tab.ctx, chromedp.SetAttributeValue(e.sel(), "disabled", "disabled", chromedp.ByNodeID))
	}
	return chromedp.Run(e.tab.ctx, chromedp.RemoveAttribute(e.sel(), "disabled", chromedp.ByNodeID))
}

func (e *Element) classes(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		class string
		ok    bool
	)
	if err := chromedp.Run(e.tab.ctx, chromedp.AttributeValue(e.sel(), "class", &class, &ok, chromedp.ByNodeID)); err != nil {
		return nil, err
	}
	return strings.Fields(class), nil
}

func (e *Element) sel() []cdp.NodeID {
	return []cdp.NodeID{e.node}
}
