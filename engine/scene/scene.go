package scene

import (
	"github.com/spaghettifunk/vkr/engine/core"
	"github.com/spaghettifunk/vkr/engine/math"
	"github.com/spaghettifunk/vkr/engine/resources"
)

/**
 * @brief Identifies an entity slot. A handle is only valid while the slot
 * still carries the same generation, so handles of destroyed entities never
 * resolve to the entity that reused the slot.
 */
type Handle struct {
	Index      uint32
	Generation uint32
}

// Entity capabilities are optional and checked by presence.
type Entity struct {
	Handle     Handle
	Name       string
	Transform  math.Transform
	Mesh       *resources.Mesh
	Hair       *resources.Hair
	Material   *resources.Material
	Light      *Light
	Brightness float32
}

func (e *Entity) HasMesh() bool {
	return e.Mesh != nil
}

func (e *Entity) HasHair() bool {
	return e.Hair != nil
}

func (e *Entity) HasLight() bool {
	return e.Light != nil
}

// Renderable reports whether the render system draws this entity.
func (e *Entity) Renderable() bool {
	return e.HasMesh() || e.HasHair()
}

func (e *Entity) release() {
	if e.Mesh != nil {
		e.Mesh.Release()
		e.Mesh = nil
	}
	if e.Hair != nil {
		e.Hair.Release()
		e.Hair = nil
	}
	if e.Material != nil {
		e.Material.Release()
		e.Material = nil
	}
}

type slot struct {
	entity     Entity
	generation uint32
	alive      bool
}

/**
 * @brief A flat entity store. Entities are iterated in creation order, there
 * is no hierarchy.
 */
type Scene struct {
	slots []slot
	free  []uint32
	// live handles in creation order
	order []Handle

	camera          *Camera
	defaultMaterial *resources.Material
}

func New() *Scene {
	return &Scene{
		camera: NewCamera(),
	}
}

// CreateEntity returns the handle of a new entity with an identity transform
// and full brightness.
func (s *Scene) CreateEntity() Handle {
	var index uint32
	if n := len(s.free); n > 0 {
		index = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		index = uint32(len(s.slots))
		s.slots = append(s.slots, slot{})
	}
	sl := &s.slots[index]
	sl.generation++
	sl.alive = true
	h := Handle{Index: index, Generation: sl.generation}
	sl.entity = Entity{
		Handle:     h,
		Transform:  math.TransformCreate(),
		Brightness: 1,
	}
	s.order = append(s.order, h)
	return h
}

func (s *Scene) Entity(h Handle) (*Entity, bool) {
	if int(h.Index) >= len(s.slots) {
		return nil, false
	}
	sl := &s.slots[h.Index]
	if !sl.alive || sl.generation != h.Generation {
		return nil, false
	}
	return &sl.entity, true
}

// DestroyEntity releases the entity's shared resources and frees its slot.
// Stale handles are ignored.
func (s *Scene) DestroyEntity(h Handle) bool {
	e, ok := s.Entity(h)
	if !ok {
		core.LogWarn("scene: ignoring destroy of stale entity handle %d/%d", h.Index, h.Generation)
		return false
	}
	e.release()
	sl := &s.slots[h.Index]
	sl.alive = false
	sl.entity = Entity{}
	s.free = append(s.free, h.Index)
	for i, o := range s.order {
		if o == h {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Entities returns the live entities in creation order.
func (s *Scene) Entities() []*Entity {
	entities := make([]*Entity, 0, len(s.order))
	for _, h := range s.order {
		entities = append(entities, &s.slots[h.Index].entity)
	}
	return entities
}

func (s *Scene) EntityCount() int {
	return len(s.order)
}

// RenderableCount is the number of entities carrying a mesh or hair.
func (s *Scene) RenderableCount() int {
	n := 0
	for _, h := range s.order {
		if s.slots[h.Index].entity.Renderable() {
			n++
		}
	}
	return n
}

// AddLight creates a light entity placed by transform.
func (s *Scene) AddLight(light Light, transform math.Transform) Handle {
	h := s.CreateEntity()
	e, _ := s.Entity(h)
	e.Light = &light
	e.Transform = transform
	return h
}

func (s *Scene) Lights() []*Entity {
	var lights []*Entity
	for _, h := range s.order {
		if e := &s.slots[h.Index].entity; e.HasLight() {
			lights = append(lights, e)
		}
	}
	return lights
}

func (s *Scene) Camera() *Camera {
	return s.camera
}

func (s *Scene) DefaultMaterial() *resources.Material {
	return s.defaultMaterial
}

// SetDefaultMaterial takes over one reference of material and releases the
// previous default.
func (s *Scene) SetDefaultMaterial(material *resources.Material) {
	if s.defaultMaterial != nil {
		s.defaultMaterial.Release()
	}
	s.defaultMaterial = material
}

// MaterialOf returns the entity's material, falling back to the scene default.
func (s *Scene) MaterialOf(e *Entity) *resources.Material {
	if e.Material != nil {
		return e.Material
	}
	return s.defaultMaterial
}

// Destroy releases every entity, the skybox and the default material.
func (s *Scene) Destroy() {
	for _, h := range append([]Handle(nil), s.order...) {
		s.DestroyEntity(h)
	}
	s.camera.ClearSkybox()
	s.SetDefaultMaterial(nil)
	s.slots = nil
	s.free = nil
}
