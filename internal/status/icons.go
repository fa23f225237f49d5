package status

import (
	"codeberg.org/mutker/hoststatus/internal/netclass"
	"codeberg.org/mutker/hoststatus/internal/sample"
)

// Icons are private-use-area glyphs from a Nerd Font patched icon font.
type Icons struct {
	Disk         string
	Memory       string
	CPU          string
	GPU          string
	Ethernet     string
	WiFi         string
	Disconnected string
	Volume       string
	Clock        string
}

var DefaultIcons = Icons{
	Disk:         "\uf0a0",
	Memory:       "\uf538",
	CPU:          "\uf2db",
	GPU:          "\uf26c",
	Ethernet:     "\uf796",
	WiFi:         "\uf1eb",
	Disconnected: "\uf127",
	Volume:       "\uf028",
	Clock:        "\uf017",
}

// ForKind returns the glyph for a sample kind. Network has no fixed glyph: its
// icon depends on the link and resolves through ForLink.
func (i Icons) ForKind(kind sample.Kind) string {
	switch kind {
	case sample.Disk:
		return i.Disk
	case sample.Memory:
		return i.Memory
	case sample.CPU:
		return i.CPU
	case sample.GPU:
		return i.GPU
	case sample.Volume:
		return i.Volume
	case sample.Clock:
		return i.Clock
	default:
		return "?"
	}
}

func (i Icons) ForLink(link netclass.Link) string {
	switch link {
	case netclass.Ethernet:
		return i.Ethernet
	case netclass.WiFi:
		return i.WiFi
	default:
		return i.Disconnected
	}
}
