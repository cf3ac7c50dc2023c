package layout

import (
	"strings"

	"github.com/verte-zerg/keytutor/internal/model"
)

// Built-in layout names.
const (
	NameGermanQWERTZ = "de-qwertz"
	NameUSQWERTY     = "us-qwerty"
)

// GermanQWERTZ returns the German T1 layout. Dead keys (^ ´ `) produce
// their accent directly.
func GermanQWERTZ() *Layout {
	keys := letterRows("abcdefghijklmnopqrstuvwx")
	// Y and Z trade places on QWERTZ.
	keys["KeyY"] = Row{Base: "z", Shift: "Z"}
	keys["KeyZ"] = Row{Base: "y", Shift: "Y"}
	keys["KeyQ"] = Row{Base: "q", Shift: "Q", AltGr: "@"}
	keys["KeyE"] = Row{Base: "e", Shift: "E", AltGr: "€"}
	keys["KeyM"] = Row{Base: "m", Shift: "M", AltGr: "µ"}

	for key, row := range map[model.KeyIdentity]Row{
		"Backquote":     {Base: "^", Shift: "°"},
		"Digit1":        {Base: "1", Shift: "!"},
		"Digit2":        {Base: "2", Shift: "\"", AltGr: "²"},
		"Digit3":        {Base: "3", Shift: "§", AltGr: "³"},
		"Digit4":        {Base: "4", Shift: "$"},
		"Digit5":        {Base: "5", Shift: "%"},
		"Digit6":        {Base: "6", Shift: "&"},
		"Digit7":        {Base: "7", Shift: "/", AltGr: "{"},
		"Digit8":        {Base: "8", Shift: "(", AltGr: "["},
		"Digit9":        {Base: "9", Shift: ")", AltGr: "]"},
		"Digit0":        {Base: "0", Shift: "=", AltGr: "}"},
		"Minus":         {Base: "ß", Shift: "?", AltGr: "\\", ShiftAltGr: "ẞ"},
		"Equal":         {Base: "´", Shift: "`"},
		"BracketLeft":   {Base: "ü", Shift: "Ü"},
		"BracketRight":  {Base: "+", Shift: "*", AltGr: "~"},
		"Semicolon":     {Base: "ö", Shift: "Ö"},
		"Quote":         {Base: "ä", Shift: "Ä"},
		"Backslash":     {Base: "#", Shift: "'"},
		"IntlBackslash": {Base: "<", Shift: ">", AltGr: "|"},
		"Comma":         {Base: ",", Shift: ";"},
		"Period":        {Base: ".", Shift: ":"},
		"Slash":         {Base: "-", Shift: "_"},
		model.KeySpace:  {Base: " ", Shift: " "},
	} {
		keys[key] = row
	}
	return New(NameGermanQWERTZ, model.KeyBackspace, DefaultNonTyping, keys)
}

// USQWERTY returns the US ANSI layout. It has no AltGr level.
func USQWERTY() *Layout {
	keys := letterRows("abcdefghijklmnopqrstuvwxyz")
	for key, row := range map[model.KeyIdentity]Row{
		"Backquote":    {Base: "`", Shift: "~"},
		"Digit1":       {Base: "1", Shift: "!"},
		"Digit2":       {Base: "2", Shift: "@"},
		"Digit3":       {Base: "3", Shift: "#"},
		"Digit4":       {Base: "4", Shift: "$"},
		"Digit5":       {Base: "5", Shift: "%"},
		"Digit6":       {Base: "6", Shift: "^"},
		"Digit7":       {Base: "7", Shift: "&"},
		"Digit8":       {Base: "8", Shift: "*"},
		"Digit9":       {Base: "9", Shift: "("},
		"Digit0":       {Base: "0", Shift: ")"},
		"Minus":        {Base: "-", Shift: "_"},
		"Equal":        {Base: "=", Shift: "+"},
		"BracketLeft":  {Base: "[", Shift: "{"},
		"BracketRight": {Base: "]", Shift: "}"},
		"Backslash":    {Base: "\\", Shift: "|"},
		"Semicolon":    {Base: ";", Shift: ":"},
		"Quote":        {Base: "'", Shift: "\""},
		"Comma":        {Base: ",", Shift: "<"},
		"Period":       {Base: ".", Shift: ">"},
		"Slash":        {Base: "/", Shift: "?"},
		model.KeySpace: {Base: " ", Shift: " "},
	} {
		keys[key] = row
	}
	return New(NameUSQWERTY, model.KeyBackspace, DefaultNonTyping, keys)
}

func letterRows(letters string) map[model.KeyIdentity]Row {
	keys := make(map[model.KeyIdentity]Row, 64)
	for _, r := range letters {
		lower := string(r)
		keys[model.KeyIdentity("Key"+strings.ToUpper(lower))] = Row{Base: lower, Shift: strings.ToUpper(lower)}
	}
	return keys
}
