package repository

import (
	"sync"

	"github.com/Guyuepp/Go-Like-Toggle/domain"
)

// bindingRepository 保存已绑定的按钮，同一个 id 可以对应多个按钮
type bindingRepository struct {
	mu       sync.RWMutex
	order    []string
	bindings map[string][]domain.ButtonElement
	total    int
}

var _ domain.BindingRepository = (*bindingRepository)(nil)

// NewBindingRepository creates an empty binding collection
func NewBindingRepository() *bindingRepository {
	return &bindingRepository{
		bindings: make(map[string][]domain.ButtonElement),
	}
}

func (r *bindingRepository) Add(el domain.ButtonElement) bool {
	id := el.ID()

	r.mu.Lock()
	defer r.mu.Unlock()

	list, ok := r.bindings[id]
	for _, bound := range list {
		if bound == el {
			return false
		}
	}
	if !ok {
		r.order = append(r.order, id)
	}
	r.bindings[id] = append(list, el)
	r.total++
	return true
}

func (r *bindingRepository) Remove(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, ok := r.bindings[id]
	if !ok {
		return 0
	}
	delete(r.bindings, id)
	for i := range r.order {
		if r.order[i] == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.total -= len(list)
	return len(list)
}

func (r *bindingRepository) Get(id string) []domain.ButtonElement {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.bindings[id]
	if len(list) == 0 {
		return nil
	}
	res := make([]domain.ButtonElement, len(list))
	copy(res, list)
	return res
}

func (r *bindingRepository) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]string, len(r.order))
	copy(res, r.order)
	return res
}

func (r *bindingRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.total
}
