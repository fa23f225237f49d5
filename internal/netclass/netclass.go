// Package netclass picks the link-type icon from the interfaces the OS reports as up.
package netclass

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

const (
	ethernetPrefix = "e"
	wifiPrefix     = "w"
	operStateUp    = "up"

	// NoActive is the diagnostic for an empty active set.
	NoActive = "No active interfaces"
)

// Interface is one network interface as seen in the current snapshot.
// Byte counters are cumulative and informational only.
type Interface struct {
	Name             string
	ReceivedBytes    uint64
	TransmittedBytes uint64
	Up               bool
}

// Link is the classified link type.
type Link int

const (
	Disconnected Link = iota
	WiFi
	Ethernet
)

func (l Link) String() string {
	switch l {
	case Ethernet:
		return "ethernet"
	case WiFi:
		return "wifi"
	default:
		return "disconnected"
	}
}

type Result struct {
	Link       Link
	Active     []Interface
	Diagnostic string
}

// IsUp reports whether an operstate string means the link is up.
func IsUp(operState string) bool {
	return strings.EqualFold(strings.TrimSpace(operState), operStateUp)
}

// Active returns the up interfaces sorted by name.
func Active(ifaces []Interface) []Interface {
	active := make([]Interface, 0, len(ifaces))
	for _, iface := range ifaces {
		if iface.Up {
			active = append(active, iface)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].Name < active[j].Name })

	return active
}

// Classify applies ethernet > wifi > disconnected precedence over the active set.
func Classify(ifaces []Interface) Result {
	active := Active(ifaces)

	link := Disconnected
	for _, iface := range active {
		switch {
		case strings.HasPrefix(iface.Name, ethernetPrefix):
			link = Ethernet
		case strings.HasPrefix(iface.Name, wifiPrefix) && link == Disconnected:
			link = WiFi
		}
	}

	return Result{
		Link:       link,
		Active:     active,
		Diagnostic: Diagnostic(active),
	}
}

// Diagnostic lists each interface with its counters, or NoActive.
func Diagnostic(active []Interface) string {
	if len(active) == 0 {
		return NoActive
	}

	parts := make([]string, 0, len(active))
	for _, iface := range active {
		parts = append(parts, fmt.Sprintf("%s rx %s tx %s",
			iface.Name,
			humanize.Bytes(iface.ReceivedBytes),
			humanize.Bytes(iface.TransmittedBytes)))
	}

	return strings.Join(parts, ", ")
}
