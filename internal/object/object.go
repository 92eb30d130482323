// Package object holds the things drawn on the play screen: the button,
// particle bursts and text.
package object

import (
	"time"

	"github.com/tomz197/omw/internal/draw"
)

// Spawner allows objects to spawn new objects during update.
type Spawner interface {
	Spawn(obj Object)
}

// UpdateContext provides all the information an object needs during update.
type UpdateContext struct {
	Delta   time.Duration
	Spawner Spawner
}

// DrawContext provides drawing resources for objects.
type DrawContext struct {
	Canvas *draw.Canvas      // High-resolution canvas (2x vertical)
	Writer *draw.ChunkWriter // Terminal text output
	View   Screen            // Logical viewport dimensions
}

// Screen represents logical view dimensions.
type Screen struct {
	Width   int
	Height  int
	CenterX int
	CenterY int
}

// NewScreen returns a Screen with its centre filled in.
func NewScreen(width, height int) Screen {
	return Screen{Width: width, Height: height, CenterX: width / 2, CenterY: height / 2}
}

// Object is a drawable and updatable scene entity.
type Object interface {
	// Update updates the object state. Returns true if the object should be removed.
	Update(ctx UpdateContext) (remove bool, err error)

	// Draw draws the object. Use ctx.Canvas for shapes, ctx.Writer for text.
	Draw(ctx DrawContext) error
}

// Releasable is implemented by pooled objects that can be returned to a pool.
type Releasable interface {
	// Release returns the object to its pool for reuse.
	Release()
}

// ReleaseObject releases an object back to its pool if it implements Releasable.
func ReleaseObject(obj Object) {
	if r, ok := obj.(Releasable); ok {
		r.Release()
	}
}

// Scene is an ordered list of objects. Objects spawned during Update are
// added once the update pass completes.
type Scene struct {
	Objects []Object
	toSpawn []Object
}

// Compile-time check that Scene is a Spawner.
var _ Spawner = (*Scene)(nil)

// Add adds an object immediately.
func (s *Scene) Add(obj Object) {
	s.Objects = append(s.Objects, obj)
}

// Spawn queues an object to be added after the current update cycle.
func (s *Scene) Spawn(obj Object) {
	s.toSpawn = append(s.toSpawn, obj)
}

// Update advances every object, dropping (and releasing) the ones that are done.
func (s *Scene) Update(delta time.Duration) error {
	ctx := UpdateContext{Delta: delta, Spawner: s}
	kept := s.Objects[:0]
	var firstErr error
	for _, obj := range s.Objects {
		remove, err := obj.Update(ctx)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if remove {
			ReleaseObject(obj)
			continue
		}
		kept = append(kept, obj)
	}
	clear(s.Objects[len(kept):])
	s.Objects = append(kept, s.toSpawn...)
	clear(s.toSpawn)
	s.toSpawn = s.toSpawn[:0]
	return firstErr
}

// Draw draws every object in order.
func (s *Scene) Draw(ctx DrawContext) error {
	for _, obj := range s.Objects {
		if err := obj.Draw(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes and releases every object.
func (s *Scene) Clear() {
	for _, obj := range s.Objects {
		ReleaseObject(obj)
	}
	clear(s.Objects)
	s.Objects = s.Objects[:0]
	for _, obj := range s.toSpawn {
		ReleaseObject(obj)
	}
	clear(s.toSpawn)
	s.toSpawn = s.toSpawn[:0]
}
