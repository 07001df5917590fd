package components

import "github.com/zeusync/ecs/internal/core/models"

const KindHealth models.Kind = "Health"

// Health tracks hit points clamped to [0, Max].
type Health struct {
	models.Base
	current int
	max     int
}

type healthFields struct {
	Current int `yaml:"current"`
	Max     int `yaml:"max"`
}

func NewHealth(max int) *Health {
	if max < 0 {
		max = 0
	}
	return models.Bind(&Health{current: max, max: max})
}

func (h *Health) Kind() models.Kind { return KindHealth }

func (h *Health) Instantiate() models.Component { return NewHealth(0) }

func (h *Health) Current() int { return h.current }
func (h *Health) Max() int     { return h.max }
func (h *Health) IsDead() bool { return h.current <= 0 }

func (h *Health) SetCurrent(v int) int {
	return models.SafeSet(&h.Base, &h.current, clamp(v, 0, h.max))
}

// SetMax updates max, clamping current into the new range. The change fires
// one dirty notification even when current is clamped too.
func (h *Health) SetMax(v int) int {
	if v < 0 {
		v = 0
	}
	if !h.IsActive() {
		return h.max
	}
	if h.current > v {
		h.current = v
	}
	return models.SafeSet(&h.Base, &h.max, v)
}

func (h *Health) Damage(amount int) int { return h.SetCurrent(h.current - amount) }
func (h *Health) Heal(amount int) int   { return h.SetCurrent(h.current + amount) }

func (h *Health) Serialize() ([]byte, error) {
	return models.MarshalState(&h.Base, healthFields{Current: h.current, Max: h.max})
}

func (h *Health) Deserialize(data []byte) error {
	var f healthFields
	if err := models.UnmarshalState(&h.Base, data, &f); err != nil {
		return err
	}
	h.current, h.max = f.Current, f.Max
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
