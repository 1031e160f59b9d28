package browser

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/Guyuepp/Go-Like-Toggle/domain"
)

// BindingName is the window function the page calls on every like click
const BindingName = "goLikeToggle"

// Options controls the browser process
type Options struct {
	Headless  bool
	UserAgent string
}

// Tab is a live page in a Chrome tab
type Tab struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex // serializes DOM mutations
	elements map[cdp.NodeID]*Element

	listenOnce sync.Once
	onClick    atomic.Pointer[func(id string)]
}

// Open starts Chrome and navigates to url
func Open(ctx context.Context, url string, opt Options) (*Tab, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opt.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
	)
	if opt.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(opt.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(tabCtx, chromedp.Navigate(url), chromedp.WaitReady(`body`)); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("open %s: %w", url, err)
	}

	return &Tab{
		ctx: tabCtx,
		cancel: func() {
			tabCancel()
			allocCancel()
		},
		elements: make(map[cdp.NodeID]*Element),
	}, nil
}

// Close shuts the tab and the browser down
func (t *Tab) Close() {
	t.cancel()
}

// Buttons returns every element matching selector that carries a non-empty idAttr
func (t *Tab) Buttons(ctx context.Context, selector, idAttr string) ([]domain.ButtonElement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var nodes []*cdp.Node
	if err := chromedp.Run(t.ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	res := make([]domain.ButtonElement, 0, len(nodes))
	for i, node := range nodes {
		id := strings.TrimSpace(node.AttributeValue(idAttr))
		if id == "" {
			logrus.Warnf("skip %s #%d: missing %s", selector, i, idAttr)
			continue
		}
		el, ok := t.elements[node.NodeID]
		if !ok {
			el = &Element{tab: t, node: node.NodeID, id: id}
			t.elements[node.NodeID] = el
		}
		res = append(res, el)
	}
	return res, nil
}

// Listen installs a click listener on every matching button that is not bound yet.
// fn replaces the callback of earlier calls; it runs on the browser event
// goroutine and must not block.
// Returns the number of listeners installed by this call.
func (t *Tab) Listen(ctx context.Context, selector, idAttr string, fn func(id string)) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	t.onClick.Store(&fn)

	var err error
	t.listenOnce.Do(func() {
		chromedp.ListenTarget(t.ctx, t.dispatch)
		err = chromedp.Run(t.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
			return runtime.AddBinding(BindingName).Do(ctx)
		}))
	})
	if err != nil {
		return 0, fmt.Errorf("add binding: %w", err)
	}

	script, err := listenerScript(selector, idAttr)
	if err != nil {
		return 0, err
	}

	var n int
	if err := chromedp.Run(t.ctx, chromedp.Evaluate(script, &n)); err != nil {
		return 0, fmt.Errorf("install listeners: %w", err)
	}
	return n, nil
}

// dispatch forwards binding calls to the current click callback
func (t *Tab) dispatch(ev any) {
	called, ok := ev.(*runtime.EventBindingCalled)
	if !ok || called.Name != BindingName {
		return
	}
	if fn := t.onClick.Load(); fn != nil && *fn != nil {
		(*fn)(called.Payload)
	}
}

func listenerScript(selector, idAttr string) (string, error) {
	sel, err := json.Marshal(selector)
	if err != nil {
		return "", err
	}
	attr, err := json.Marshal(idAttr)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`(() => {
	let n = 0;
	document.querySelectorAll(%s).forEach((b) => {
		if (b.dataset.likeToggleBound) return;
		b.dataset.likeToggleBound = "1";
		b.addEventListener("click", (ev) => {
			ev.preventDefault();
			const id = b.getAttribute(%s);
			if (id) window.%s(id);
		});
		n++;
	});
	return n;
})()`, sel, attr, BindingName), nil
}

// Cookies returns the cookies of the current page
func (t *Tab) Cookies(ctx context.Context) ([]*http.Cookie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var cookies []*network.Cookie
	err := chromedp.Run(t.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = network.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, err
	}

	return toHTTPCookies(cookies), nil
}

func toHTTPCookies(cookies []*network.Cookie) []*http.Cookie {
	res := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		if c == nil {
			continue
		}
		res = append(res, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		})
	}
	return res
}

// HTML renders the current DOM
func (t *Tab) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var html string
	err := chromedp.Run(t.ctx, chromedp.OuterHTML("html", &html))
	return html, err
}
