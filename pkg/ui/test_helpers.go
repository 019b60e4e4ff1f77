package ui

import (
	tea "charm.land/bubbletea/v2"
)

// newKeyPressMsg creates a KeyPressMsg from a key code (for special keys)
func newKeyPressMsg(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg(tea.Key{Code: code})
}

// Ctrl+X keys using modifier
func newCtrlKeyPressMsg(char rune) tea.KeyPressMsg {
	return tea.KeyPressMsg(tea.Key{
		Code: char,
		Mod:  tea.ModCtrl,
	})
}

var (
	testKeyDown  = newKeyPressMsg(tea.KeyDown)
	testKeyEnter = newKeyPressMsg(tea.KeyEnter)
	testKeyEsc   = newKeyPressMsg(tea.KeyEscape)
	testKeyCtrlC = newCtrlKeyPressMsg('c')
	testKeyCtrlL = newCtrlKeyPressMsg('l')
	testKeyCtrlP = newCtrlKeyPressMsg('p')
	testKeyCtrlR = newCtrlKeyPressMsg('r')
	testKeyCtrlY = newCtrlKeyPressMsg('y')
	testKeyCtrlO = newCtrlKeyPressMsg('o')
)
