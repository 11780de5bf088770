package core

import "strings"

var colorNames = map[string]string{
	"#10b981": "green",
	"#3b82f6": "blue",
	"#f97316": "orange",
	"#a855f7": "purple",
	"#ec4899": "pink",
	"#ef4444": "red",
	"#eab308": "yellow",
	"#14b8a6": "teal",
	"#6366f1": "indigo",
	"#06b6d4": "cyan",
	"#6b7280": "gray",
}

var colorHexes = func() map[string]string {
	m := make(map[string]string, len(colorNames))
	for hex, name := range colorNames {
		m[name] = hex
	}
	return m
}()

// ColorName maps a palette hex to its name; unknown colors are "gray".
func ColorName(hex string) string {
	if name, ok := colorNames[strings.ToLower(hex)]; ok {
		return name
	}
	return "gray"
}

// ColorHex maps a palette name to its hex; unknown names are gray.
func ColorHex(name string) string {
	if hex, ok := colorHexes[strings.ToLower(strings.TrimSpace(name))]; ok {
		return hex
	}
	return UncategorizedColor
}
