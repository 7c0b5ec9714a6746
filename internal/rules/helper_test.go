package rules

// field is a minimal Trigger and Target for runtime tests.
type field struct {
	id        string
	label     string
	value     any
	disabled  bool
	hidden    bool
	mandatory bool
}

func (f *field) ID() string { return f.id }
func (f *field) Label() string { return f.label }
func (f *field) Value() any { return f.value }
func (f *field) IsDisabled() bool { return f.disabled }
func (f *field) SetDisabled(d bool) { f.disabled = d }
func (f *field) IsHidden() bool { return f.hidden }
func (f *field) SetHidden(h bool) { f.hidden = h }
func (f *field) IsMandatory() bool { return f.mandatory }
func (f *field) SetMandatory(m bool) { f.mandatory = m }

func mustCompare(op Operator, trigger Trigger, value any) *Compare {
	c, err := NewCompare(op, trigger, value)
	if err != nil {
		panic(err)
	}
	return c
}
