package components

import "github.com/zeusync/ecs/internal/core/models"

const KindLabel models.Kind = "Label"

// Label is a display name. Deactivating a label hides it.
type Label struct {
	models.Base
	text   string
	hidden bool
}

type labelFields struct {
	Text string `yaml:"text"`
}

func NewLabel(text string) *Label {
	return models.Bind(&Label{text: text})
}

func (l *Label) Kind() models.Kind            { return KindLabel }
func (l *Label) Instantiate() models.Component { return NewLabel("") }

func (l *Label) Text() string { return l.text }
func (l *Label) Hidden() bool { return l.hidden }
func (l *Label) SetText(s string) string {
	return models.SafeSet(&l.Base, &l.text, s)
}

func (l *Label) OnSetActive(active bool) { l.hidden = !active }

func (l *Label) Serialize() ([]byte, error) {
	return models.MarshalState(&l.Base, labelFields{Text: l.text})
}

func (l *Label) Deserialize(data []byte) error {
	var f labelFields
	if err := models.UnmarshalState(&l.Base, data, &f); err != nil {
		return err
	}
	l.text = f.Text
	l.hidden = !l.IsActive()
	return nil
}
