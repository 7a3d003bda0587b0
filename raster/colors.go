package raster

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var namedColors = map[string]color.RGBA{
	"black":  {0x00, 0x00, 0x00, 0xFF},
	"white":  {0xFF, 0xFF, 0xFF, 0xFF},
	"red":    {0xFF, 0x00, 0x00, 0xFF},
	"green":  {0x00, 0x80, 0x00, 0xFF},
	"blue":   {0x00, 0x00, 0xFF, 0xFF},
	"yellow": {0xFF, 0xFF, 0x00, 0xFF},
	"gray":   {0x80, 0x80, 0x80, 0xFF},
}

// ParseColor accepts a CSS-style name or #rgb / #rrggbb hex.
// Empty input means black.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return namedColors["black"], nil
	}
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) == 6 {
			v, err := strconv.ParseUint(hex, 16, 32)
			if err == nil {
				return color.RGBA{
					R: uint8(v >> 16),
					G: uint8(v >> 8),
					B: uint8(v),
					A: 0xFF,
				}, nil
			}
		}
	}
	return color.RGBA{}, fmt.Errorf("unknown color %q", s)
}
