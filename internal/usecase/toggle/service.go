package toggle

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/Guyuepp/Go-Like-Toggle/domain"
)

// Option configures a Service
type Option func(*Service)

// WithClasses overrides the liked / unliked class pair
func WithClasses(classes domain.ClassPair) Option {
	return func(s *Service) {
		s.classes = classes
	}
}

// WithFailureHook registers a callback for clicks that did not get a confirmed state
func WithFailureHook(fn func(domain.ToggleOutcome)) Option {
	return func(s *Service) {
		s.onFailure = fn
	}
}

type Service struct {
	bindings  domain.BindingRepository
	client    domain.ToggleClient
	lock      domain.InFlightLock
	classes   domain.ClassPair
	onFailure func(domain.ToggleOutcome)
	group     singleflight.Group
}

var _ domain.ToggleUsecase = (*Service)(nil)

// NewService will create the like-toggle handler
func NewService(b domain.BindingRepository, c domain.ToggleClient, l domain.InFlightLock, opts ...Option) *Service {
	s := &Service{
		bindings: b,
		client:   c,
		lock:     l,
		classes:  domain.DefaultClassPair(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Attach(elements ...domain.ButtonElement) int {
	n := 0
	for _, el := range elements {
		if el == nil || el.ID() == "" {
			continue
		}
		if s.bindings.Add(el) {
			n++
		}
	}
	if n > 0 {
		logrus.Infof("attached %d like buttons (%d bound)", n, s.bindings.Len())
	}
	return n
}

func (s *Service) Detach(id string) int {
	return s.bindings.Remove(id)
}

func (s *Service) Bindings() int {
	return s.bindings.Len()
}

// Click toggles the id. Concurrent clicks on the same id share a single request.
// A caller whose ctx ends first gets ctx.Err(); the shared request still runs
// to completion and renders its result.
func (s *Service) Click(ctx context.Context, id string) domain.ToggleOutcome {
	if strings.TrimSpace(id) == "" {
		return domain.ToggleOutcome{ButtonID: id, Err: domain.ErrBadParamInput}
	}

	elements := s.bindings.Get(id)
	if len(elements) == 0 {
		return domain.ToggleOutcome{ButtonID: id, Err: domain.ErrNotFound}
	}

	// 合并进来的点击共用这次请求，不能被第一个调用方的取消带走
	flightCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(id, func() (any, error) {
		return s.toggle(flightCtx, id, elements), nil
	})

	select {
	case res := <-ch:
		outcome := res.Val.(domain.ToggleOutcome)
		outcome.Coalesced = res.Shared
		return outcome
	case <-ctx.Done():
		logrus.Warnf("stopped waiting for like toggle of %s: %v", id, ctx.Err())
		return domain.ToggleOutcome{ButtonID: id, Err: ctx.Err()}
	}
}

// look is the rendered like state of one element
type look struct {
	liked bool
	known bool // false when the element carries neither class
}

func (s *Service) toggle(ctx context.Context, id string, elements []domain.ButtonElement) domain.ToggleOutcome {
	prior := make([]look, len(elements))
	for i, el := range elements {
		prior[i] = s.look(ctx, el)
	}

	release, err := s.lock.Acquire(ctx, id)
	if err != nil {
		return s.fail(domain.ToggleOutcome{ButtonID: id, Liked: prior[0].liked, Err: err})
	}
	defer release()

	s.setDisabled(ctx, elements, true)
	defer s.setDisabled(ctx, elements, false)

	res, err := s.client.Toggle(ctx, id)
	if err != nil {
		s.revert(ctx, elements, prior)
		return s.fail(domain.ToggleOutcome{ButtonID: id, Liked: prior[0].liked, Err: err})
	}

	s.apply(ctx, elements, res.Liked)
	return domain.ToggleOutcome{ButtonID: id, Liked: res.Liked}
}

func (s *Service) fail(outcome domain.ToggleOutcome) domain.ToggleOutcome {
	logrus.Errorf("failed to toggle like of %s: %v", outcome.ButtonID, outcome.Err)
	if s.onFailure != nil {
		s.onFailure(outcome)
	}
	return outcome
}

// look reads the like state from the class list
func (s *Service) look(ctx context.Context, el domain.ButtonElement) look {
	liked, err := el.HasClass(ctx, s.classes.Liked)
	if err != nil {
		logrus.Warnf("failed to read state of %s: %v", el.ID(), err)
		return look{}
	}
	if liked {
		return look{liked: true, known: true}
	}
	unliked, err := el.HasClass(ctx, s.classes.Unliked)
	if err != nil {
		logrus.Warnf("failed to read state of %s: %v", el.ID(), err)
		return look{}
	}
	return look{known: unliked}
}

func (s *Service) apply(ctx context.Context, elements []domain.ButtonElement, liked bool) {
	remove, add := s.classes.Swap(liked)
	for _, el := range elements {
		if err := el.SwapClass(ctx, remove, add); err != nil {
			logrus.Errorf("failed to render state of %s: %v", el.ID(), err)
		}
	}
}

// revert puts every element back to the look it had before the click.
// Elements that carried neither class are left untouched.
func (s *Service) revert(ctx context.Context, elements []domain.ButtonElement, prior []look) {
	for i, el := range elements {
		if !prior[i].known {
			continue
		}
		remove, add := s.classes.Swap(prior[i].liked)
		if err := el.SwapClass(ctx, remove, add); err != nil {
			logrus.Errorf("failed to revert state of %s: %v", el.ID(), err)
		}
	}
}

func (s *Service) setDisabled(ctx context.Context, elements []domain.ButtonElement, disabled bool) {
	for _, el := range elements {
		if err := el.SetDisabled(ctx, disabled); err != nil {
			logrus.Warnf("failed to set disabled=%v on %s: %v", disabled, el.ID(), err)
		}
	}
}
