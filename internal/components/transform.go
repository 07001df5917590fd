package components

import "github.com/zeusync/ecs/internal/core/models"

const (
	KindTransform models.Kind = "Transform"
	KindVelocity  models.Kind = "Velocity"
)

type vec2 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Transform is a 2D position.
type Transform struct {
	models.Base
	pos vec2
}

func NewTransform(x, y float64) *Transform {
	return models.Bind(&Transform{pos: vec2{X: x, Y: y}})
}

func (t *Transform) Kind() models.Kind            { return KindTransform }
func (t *Transform) Instantiate() models.Component { return NewTransform(0, 0) }

func (t *Transform) Position() (float64, float64) { return t.pos.X, t.pos.Y }

func (t *Transform) SetPosition(x, y float64) (float64, float64) {
	p := models.SafeSet(&t.Base, &t.pos, vec2{X: x, Y: y})
	return p.X, p.Y
}

func (t *Transform) Translate(dx, dy float64) (float64, float64) {
	return t.SetPosition(t.pos.X+dx, t.pos.Y+dy)
}

func (t *Transform) Serialize() ([]byte, error) {
	return models.MarshalState(&t.Base, t.pos)
}

func (t *Transform) Deserialize(data []byte) error {
	return models.UnmarshalState(&t.Base, data, &t.pos)
}

// Velocity is a per-tick displacement.
type Velocity struct {
	models.Base
	v vec2
}

func NewVelocity(dx, dy float64) *Velocity {
	return models.Bind(&Velocity{v: vec2{X: dx, Y: dy}})
}

func (v *Velocity) Kind() models.Kind            { return KindVelocity }
func (v *Velocity) Instantiate() models.Component { return NewVelocity(0, 0) }

func (v *Velocity) Vector() (float64, float64) { return v.v.X, v.v.Y }

func (v *Velocity) Set(dx, dy float64) (float64, float64) {
	r := models.SafeSet(&v.Base, &v.v, vec2{X: dx, Y: dy})
	return r.X, r.Y
}

func (v *Velocity) Serialize() ([]byte, error) {
	return models.MarshalState(&v.Base, v.v)
}

func (v *Velocity) Deserialize(data []byte) error {
	return models.UnmarshalState(&v.Base, data, &v.v)
}
