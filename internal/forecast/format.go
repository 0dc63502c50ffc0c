package forecast

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/catouberos/transit-forecast/internal/messages"
	"github.com/catouberos/transit-forecast/internal/models"
)

type routeGroup struct {
	routeID   models.ID
	transport models.TransportType
	title     string
	minutes   []int
}

// destinations maps next stop name -> route id -> arrivals.
type destinations map[string]map[models.ID]*routeGroup

func (d destinations) route(next string, routeID models.ID) *routeGroup {
	routes, ok := d[next]
	if !ok {
		routes = map[models.ID]*routeGroup{}
		d[next] = routes
	}

	g, ok := routes[routeID]
	if !ok {
		g = &routeGroup{routeID: routeID}
		routes[routeID] = g
	}
	return g
}

func formatDestinations(platformID models.ID, groups destinations, maxTimes int) string {
	var b strings.Builder

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		fmt.Fprintf(&b, " → %s (#%s):\n", name, platformID)

		routes := make([]*routeGroup, 0, len(groups[name]))
		for _, g := range groups[name] {
			routes = append(routes, g)
		}
		slices.SortFunc(routes, compareRoutes)

		for _, r := range routes {
			fmt.Fprintf(&b, "   %s %s: %s\n", r.transport.Glyph(), r.title, FormatTimes(r.minutes, maxTimes))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// compareRoutes orders by soonest arrival; title and id keep the order stable.
func compareRoutes(a, b *routeGroup) int {
	return cmp.Or(
		cmp.Compare(soonest(a.minutes), soonest(b.minutes)),
		cmp.Compare(a.title, b.title),
		cmp.Compare(a.routeID, b.routeID),
	)
}

func soonest(minutes []int) int {
	if len(minutes) == 0 {
		return int(^uint(0) >> 1)
	}
	return slices.Min(minutes)
}

// FormatTime renders a single arrival.
func FormatTime(minutes int) string {
	if minutes == 0 {
		return messages.Now
	}
	return strconv.Itoa(minutes) + " " + messages.MinutesUnit
}

// FormatTimes renders the distinct arrival minutes of one route, soonest
// first, showing at most maxTimes of them. Lists that fit are written out
// ("1, 2 мин"); longer ones collapse to the range of the shown values and
// their count ("1-4 мин (4)"). Zero is written as "сейчас" and never gets a
// unit of its own.
func FormatTimes(minutes []int, maxTimes int) string {
	distinct := slices.Clone(minutes)
	slices.Sort(distinct)
	distinct = slices.Compact(distinct)

	if len(distinct) == 0 {
		return ""
	}

	shown := distinct
	truncated := maxTimes > 0 && len(distinct) > maxTimes
	if truncated {
		shown = distinct[:maxTimes]
	}

	var parts []string
	rest := shown
	if rest[0] == 0 {
		parts = append(parts, messages.Now)
		rest = rest[1:]
	}

	switch {
	case len(rest) == 0:
	case truncated && len(rest) > 1:
		parts = append(parts, fmt.Sprintf("%d-%d %s (%d)", rest[0], rest[len(rest)-1], messages.MinutesUnit, len(shown)))
	default:
		nums := make([]string, len(rest))
		for i, m := range rest {
			nums[i] = strconv.Itoa(m)
		}
		parts = append(parts, strings.Join(nums, ", ")+" "+messages.MinutesUnit)
	}

	return strings.Join(parts, ", ")
}
