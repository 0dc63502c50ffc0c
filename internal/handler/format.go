package handler

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/catouberos/transit-forecast/internal/messages"
	"github.com/catouberos/transit-forecast/internal/models"
)

const maxStopsDisplay = 5

func formatStopsList(stops []models.Stop, showPlatforms bool) string {
	if len(stops) == 0 {
		return messages.NoStopsFound
	}

	var b strings.Builder
	fmt.Fprintf(&b, messages.StopsFound, len(stops))

	for i, stop := range stops[:min(len(stops), maxStopsDisplay)] {
		fmt.Fprintf(&b, messages.StopLine, i+1, stop.Title, stop.ID)
		if showPlatforms {
			for j, platform := range stop.Platforms {
				fmt.Fprintf(&b, messages.PlatformLine, 'a'+rune(j), platform.ID)
			}
		}
		b.WriteString("\n")
	}

	if len(stops) > maxStopsDisplay {
		fmt.Fprintf(&b, messages.MoreStops, len(stops)-maxStopsDisplay)
	}

	return b.String()
}

func formatRouteInfo(route models.Route) string {
	fare := strconv.FormatFloat(route.Fare, 'f', -1, 64)
	return fmt.Sprintf(messages.RouteInfo, route.TransportType.FullName(), route.Title, route.NameBegin, route.NameEnd, fare)
}

func formatRoutesSummary(routes []models.Route) string {
	var b strings.Builder
	b.WriteString(messages.RoutesSummary)

	found := false
	for _, t := range models.TransportTypes {
		var titles []string
		for _, route := range routes {
			if route.TransportType == t {
				titles = append(titles, route.Title)
			}
		}
		if len(titles) == 0 {
			continue
		}

		found = true
		slices.SortStableFunc(titles, compareRouteNumbers)
		fmt.Fprintf(&b, messages.RoutesByType, t.FullName(), len(titles), strings.Join(titles, ", "))
	}

	if !found {
		return messages.NoRoutesData
	}

	b.WriteString(messages.RoutesFooter)
	return b.String()
}

// compareRouteNumbers orders route titles by their leading number, so "2"
// sorts before "13" and "13т" right after "13".
func compareRouteNumbers(a, b string) int {
	na, okA := leadingNumber(a)
	nb, okB := leadingNumber(b)

	switch {
	case okA && okB:
		return cmp.Or(cmp.Compare(na, nb), cmp.Compare(a, b))
	case okA:
		return -1
	case okB:
		return 1
	default:
		return cmp.Compare(a, b)
	}
}

func leadingNumber(s string) (int, bool) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
