package resources

import (
	"fmt"
	"sync/atomic"
)

// refCounter destroys the owning resource when the last reference is released.
// Hooks run in registration order after the destroy function.
type refCounter struct {
	count     atomic.Int32
	destroy   func()
	onRelease []func()
}

func (r *refCounter) init(destroy func()) {
	r.count.Store(1)
	r.destroy = destroy
}

func (r *refCounter) acquire() {
	if r.count.Add(1) <= 1 {
		panic("acquired a resource that was already destroyed")
	}
}

// release returns true when this call destroyed the resource.
func (r *refCounter) release() bool {
	n := r.count.Add(-1)
	if n < 0 {
		panic(fmt.Sprintf("resource released %d times too often", -n))
	}
	if n > 0 {
		return false
	}
	if r.destroy != nil {
		r.destroy()
	}
	for _, fn := range r.onRelease {
		fn()
	}
	return true
}

// References is the number of outstanding references.
func (r *refCounter) References() int32 {
	return r.count.Load()
}

// OnDestroy registers fn to run once the last reference is gone.
func (r *refCounter) OnDestroy(fn func()) {
	r.onRelease = append(r.onRelease, fn)
}
