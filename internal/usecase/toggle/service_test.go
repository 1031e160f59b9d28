package toggle_test

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guyuepp/Go-Like-Toggle/domain"
	"github.com/Guyuepp/Go-Like-Toggle/internal/page"
	"github.com/Guyuepp/Go-Like-Toggle/internal/repository"
	"github.com/Guyuepp/Go-Like-Toggle/internal/usecase/toggle"
)

const timeline = `<html><body>
<button class="btn like-button btn-secondary" data-message-id="42">like</button>
<button class="btn like-button btn-primary" data-message-id="7">like</button>
<button class="btn like-button btn-primary" data-message-id="7">like (pinned)</button>
</body></html>`

type stubClient struct {
	calls atomic.Int32
	ids   chan string
	fn    func(ctx context.Context, id string) (domain.ToggleResponse, error)
}

func newStubClient(fn func(ctx context.Context, id string) (domain.ToggleResponse, error)) *stubClient {
	return &stubClient{fn: fn, ids: make(chan string, 16)}
}

func (c *stubClient) Toggle(ctx context.Context, id string) (domain.ToggleResponse, error) {
	c.calls.Add(1)
	c.ids <- id
	return c.fn(ctx, id)
}

func answer(liked bool) func(context.Context, string) (domain.ToggleResponse, error) {
	return func(context.Context, string) (domain.ToggleResponse, error) {
		return domain.ToggleResponse{Liked: liked}, nil
	}
}

func setup(t *testing.T, client domain.ToggleClient, opts ...toggle.Option) (*toggle.Service, *page.Document) {
	t.Helper()
	doc, err := page.Parse(strings.NewReader(timeline))
	require.NoError(t, err)

	svc := toggle.NewService(repository.NewBindingRepository(), client, repository.NewLocalLock(), opts...)
	svc.Attach(doc.Buttons(".like-button", "data-message-id")...)
	return svc, doc
}

func element(t *testing.T, doc *page.Document, idx int) *page.Element {
	t.Helper()
	return doc.Buttons(".like-button", "data-message-id")[idx].(*page.Element)
}

func TestClickLiked(t *testing.T) {
	client := newStubClient(answer(true))
	svc, doc := setup(t, client)

	outcome := svc.Click(context.Background(), "42")

	require.True(t, outcome.Succeeded())
	assert.True(t, outcome.Liked)
	assert.Equal(t, "42", <-client.ids)
	assert.EqualValues(t, 1, client.calls.Load())

	el := element(t, doc, 0)
	assert.Contains(t, el.Classes(), "btn-primary")
	assert.NotContains(t, el.Classes(), "btn-secondary")
	assert.False(t, el.Disabled())
}

func TestClickUnliked(t *testing.T) {
	client := newStubClient(answer(false))
	svc, doc := setup(t, client)

	outcome := svc.Click(context.Background(), "7")

	require.True(t, outcome.Succeeded())
	assert.False(t, outcome.Liked)
	for _, idx := range []int{1, 2} {
		el := element(t, doc, idx)
		assert.Contains(t, el.Classes(), "btn-secondary")
		assert.NotContains(t, el.Classes(), "btn-primary")
	}
	assert.EqualValues(t, 1, client.calls.Load())
}

func TestClickFailureReverts(t *testing.T) {
	var hooked []domain.ToggleOutcome
	client := newStubClient(func(context.Context, string) (domain.ToggleResponse, error) {
		return domain.ToggleResponse{}, domain.ErrTransport
	})
	svc, doc := setup(t, client, toggle.WithFailureHook(func(o domain.ToggleOutcome) {
		hooked = append(hooked, o)
	}))

	outcome := svc.Click(context.Background(), "7")

	assert.False(t, outcome.Succeeded())
	assert.ErrorIs(t, outcome.Err, domain.ErrTransport)
	assert.True(t, outcome.Liked, "outcome carries the prior state")
	require.Len(t, hooked, 1)
	assert.Equal(t, "7", hooked[0].ButtonID)

	el := element(t, doc, 1)
	assert.Contains(t, el.Classes(), "btn-primary")
	assert.NotContains(t, el.Classes(), "btn-secondary")
	assert.False(t, el.Disabled())
}

func TestClickDisablesWhileInFlight(t *testing.T) {
	var doc *page.Document
	var disabledDuringRequest bool
	client := newStubClient(func(context.Context, string) (domain.ToggleResponse, error) {
		disabledDuringRequest = element(t, doc, 0).Disabled()
		return domain.ToggleResponse{Liked: true}, nil
	})
	svc, d := setup(t, client)
	doc = d

	svc.Click(context.Background(), "42")

	assert.True(t, disabledDuringRequest)
	assert.False(t, element(t, doc, 0).Disabled())
}

func TestClickNoButtons(t *testing.T) {
	doc, err := page.Parse(strings.NewReader(`<html><body></body></html>`))
	require.NoError(t, err)
	client := newStubClient(answer(true))
	svc := toggle.NewService(repository.NewBindingRepository(), client, repository.NewLocalLock())

	assert.Equal(t, 0, svc.Attach(doc.Buttons(".like-button", "data-message-id")...))
	assert.Equal(t, 0, svc.Bindings())

	outcome := svc.Click(context.Background(), "42")
	assert.ErrorIs(t, outcome.Err, domain.ErrNotFound)
	assert.EqualValues(t, 0, client.calls.Load())
}

func TestClickBadID(t *testing.T) {
	client := newStubClient(answer(true))
	svc, _ := setup(t, client)

	outcome := svc.Click(context.Background(), "")
	assert.ErrorIs(t, outcome.Err, domain.ErrBadParamInput)
	assert.EqualValues(t, 0, client.calls.Load())
}

func TestAttachIsIdempotent(t *testing.T) {
	client := newStubClient(answer(true))
	svc, doc := setup(t, client)

	assert.Equal(t, 3, svc.Bindings())
	assert.Equal(t, 0, svc.Attach(doc.Buttons(".like-button", "data-message-id")...))
	assert.Equal(t, 3, svc.Bindings())
}

func TestDetach(t *testing.T) {
	client := newStubClient(answer(true))
	svc, _ := setup(t, client)

	assert.Equal(t, 2, svc.Detach("7"))
	assert.Equal(t, 1, svc.Bindings())

	outcome := svc.Click(context.Background(), "7")
	assert.ErrorIs(t, outcome.Err, domain.ErrNotFound)
	assert.EqualValues(t, 0, client.calls.Load())
}

func TestClickInFlightElsewhere(t *testing.T) {
	lock := repository.NewLocalLock()
	release, err := lock.Acquire(context.Background(), "42")
	require.NoError(t, err)
	defer release()

	doc, err := page.Parse(strings.NewReader(timeline))
	require.NoError(t, err)
	client := newStubClient(answer(true))
	svc := toggle.NewService(repository.NewBindingRepository(), client, lock)
	svc.Attach(doc.Buttons(".like-button", "data-message-id")...)

	outcome := svc.Click(context.Background(), "42")
	assert.ErrorIs(t, outcome.Err, domain.ErrInFlight)
	assert.EqualValues(t, 0, client.calls.Load())
	assert.Contains(t, element(t, doc, 0).Classes(), "btn-secondary")
}

func TestConcurrentClicksCoalesce(t *testing.T) {
	started := make(chan struct{})
	unblock := make(chan struct{})
	var once sync.Once
	client := newStubClient(func(context.Context, string) (domain.ToggleResponse, error) {
		once.Do(func() { close(started) })
		<-unblock
		return domain.ToggleResponse{Liked: true}, nil
	})
	svc, doc := setup(t, client)

	const clicks = 5
	outcomes := make([]domain.ToggleOutcome, clicks)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		outcomes[0] = svc.Click(context.Background(), "42")
	}()
	<-started

	for i := 1; i < clicks; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = svc.Click(context.Background(), "42")
		}(i)
	}
	// give the followers time to join the flight
	time.Sleep(100 * time.Millisecond)
	close(unblock)
	wg.Wait()

	assert.EqualValues(t, 1, client.calls.Load())
	for _, o := range outcomes {
		assert.True(t, o.Succeeded())
		assert.True(t, o.Liked)
		assert.True(t, o.Coalesced)
	}
	assert.Contains(t, element(t, doc, 0).Classes(), "btn-primary")
}

func TestSequentialClicksFlip(t *testing.T) {
	var liked atomic.Bool
	client := newStubClient(func(context.Context, string) (domain.ToggleResponse, error) {
		return domain.ToggleResponse{Liked: !liked.Load()}, nil
	})
	svc, doc := setup(t, client)

	for i := 0; i < 4; i++ {
		outcome := svc.Click(context.Background(), "42")
		require.True(t, outcome.Succeeded())
		assert.False(t, outcome.Coalesced)
		liked.Store(outcome.Liked)
	}

	assert.EqualValues(t, 4, client.calls.Load())
	assert.Contains(t, element(t, doc, 0).Classes(), "btn-secondary")
}

func TestWithClasses(t *testing.T) {
	client := newStubClient(answer(true))
	svc, doc := setup(t, client, toggle.WithClasses(domain.ClassPair{Liked: "liked", Unliked: "btn-secondary"}))

	svc.Click(context.Background(), "42")

	el := element(t, doc, 0)
	assert.Contains(t, el.Classes(), "liked")
	assert.NotContains(t, el.Classes(), "btn-secondary")
}

func TestClickCanceledStillReenables(t *testing.T) {
	unblock := make(chan struct{})
	client := newStubClient(func(ctx context.Context, _ string) (domain.ToggleResponse, error) {
		<-unblock
		return domain.ToggleResponse{}, domain.ErrTransport
	})
	svc, doc := setup(t, client)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	outcome := svc.Click(ctx, "42")
	assert.ErrorIs(t, outcome.Err, context.DeadlineExceeded)
	assert.True(t, element(t, doc, 0).Disabled(), "request is still running")

	close(unblock)
	assert.Eventually(t, func() bool {
		return !element(t, doc, 0).Disabled()
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"btn", "like-button", "btn-secondary"}, element(t, doc, 0).Classes())
}

func TestCanceledCallerDoesNotFailOthers(t *testing.T) {
	started := make(chan struct{})
	unblock := make(chan struct{})
	var once sync.Once
	client := newStubClient(func(context.Context, string) (domain.ToggleResponse, error) {
		once.Do(func() { close(started) })
		<-unblock
		return domain.ToggleResponse{Liked: true}, nil
	})
	svc, doc := setup(t, client)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan domain.ToggleOutcome, 1)
	go func() {
		first <- svc.Click(ctx, "42")
	}()
	<-started

	second := make(chan domain.ToggleOutcome, 1)
	go func() {
		second <- svc.Click(context.Background(), "42")
	}()
	// let the second click join the flight before the first one gives up
	time.Sleep(100 * time.Millisecond)
	cancel()

	assert.ErrorIs(t, (<-first).Err, context.Canceled)

	close(unblock)
	outcome := <-second
	require.NoError(t, outcome.Err)
	assert.True(t, outcome.Liked)
	assert.True(t, outcome.Coalesced)
	assert.EqualValues(t, 1, client.calls.Load())
	assert.Contains(t, element(t, doc, 0).Classes(), "btn-primary")
}

func TestFailedClickKeepsUnstyledButton(t *testing.T) {
	doc, err := page.Parse(strings.NewReader(
		`<html><body><button class="like-button" data-message-id="9">like</button></body></html>`))
	require.NoError(t, err)
	client := newStubClient(func(context.Context, string) (domain.ToggleResponse, error) {
		return domain.ToggleResponse{}, domain.ErrUnexpectedStatus
	})
	svc := toggle.NewService(repository.NewBindingRepository(), client, repository.NewLocalLock())
	svc.Attach(doc.Buttons(".like-button", "data-message-id")...)

	outcome := svc.Click(context.Background(), "9")
	assert.ErrorIs(t, outcome.Err, domain.ErrUnexpectedStatus)
	assert.False(t, outcome.Liked)

	el := element(t, doc, 0)
	assert.Equal(t, []string{"like-button"}, el.Classes())
	assert.False(t, el.Disabled())
}
