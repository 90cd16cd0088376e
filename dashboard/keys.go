// SPDX-License-Identifier: GPL-3.0-or-later
package dashboard

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Open key.Binding
	Back key.Binding
	Quit key.Binding
	Kill key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "abrir"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "voltar"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "sair"),
		),
		Kill: key.NewBinding(
			key.WithKeys("ctrl+c"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Back, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// forView enables the bindings that apply to v, disabled ones are neither matched nor shown.
func (k *keyMap) forView(v viewState) {
	k.Open.SetEnabled(v == viewTable)
	k.Back.SetEnabled(v == viewMessage)
}
