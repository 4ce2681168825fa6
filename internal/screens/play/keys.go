package play

import "charm.land/bubbles/v2/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Switch   key.Binding
	Toggle   key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
	Check    key.Binding
	Hint     key.Binding
	Explain  key.Binding
	Reset    key.Binding
	Abandon  key.Binding
	Help     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Switch:   key.NewBinding(key.WithKeys("tab", "left", "right"), key.WithHelp("tab", "switch column")),
		Toggle:   key.NewBinding(key.WithKeys("enter", "space"), key.WithHelp("enter", "place/remove")),
		MoveUp:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "move step up")),
		MoveDown: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "move step down")),
		Check:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "check")),
		Hint:     key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "hint")),
		Explain:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "explain")),
		Reset:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Abandon:  key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "give up")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Switch, k.Toggle, k.Check, k.Hint, k.Help}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Switch, k.Toggle},
		{k.MoveUp, k.MoveDown, k.Reset},
		{k.Check, k.Hint, k.Explain, k.Abandon},
	}
}
