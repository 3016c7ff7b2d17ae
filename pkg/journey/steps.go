package journey

import (
	"github.com/matzehuels/indoorroute/pkg/connector"
)

// Endpoint names a place on a floor. Place may be a place id, a place name
// or an entrance id. Label is an optional display name.
type Endpoint struct {
	Floor string `json:"floor"`
	Place string `json:"place"`
	Label string `json:"label,omitempty"`
}

func (e Endpoint) display() string {
	if e.Label != "" {
		return e.Label
	}
	return e.Place
}

// RouteStep is one walking leg on a single floor. From and To are display
// labels; FromID and ToID are the identifiers handed to the router.
type RouteStep struct {
	Floor                string         `json:"floor"`
	From                 string         `json:"from"`
	FromID               string         `json:"fromId"`
	To                   string         `json:"to"`
	ToID                 string         `json:"toId"`
	Via                  connector.Type `json:"via,omitempty"`
	IsVerticalTransition bool           `json:"isVerticalTransition"`
}

// Key returns the pre-calculation key "floor:from:to" for the step.
func (s RouteStep) Key() string {
	return Key(s.Floor, s.FromID, s.ToID)
}

// Key builds a pre-calculation key.
func Key(floor, from, to string) string {
	return floor + ":" + from + ":" + to
}

// BuildSteps emits len(path)+1 walking steps for a trip from origin to
// destination over the oriented connector path:
//
//	step 0:   origin          -> path[0].From     on the origin floor
//	step i:   path[i-1].To    -> path[i].From     on path[i-1].ToFloor
//	step n:   path[n-1].To    -> destination      on the destination floor
//
// An empty path yields a single origin -> destination step.
func BuildSteps(from, to Endpoint, via connector.Type, path []connector.Connector) []RouteStep {
	if len(path) == 0 {
		return []RouteStep{{
			Floor:  from.Floor,
			From:   from.display(),
			FromID: from.Place,
			To:     to.display(),
			ToID:   to.Place,
		}}
	}

	steps := make([]RouteStep, 0, len(path)+1)
	steps = append(steps, RouteStep{
		Floor:  from.Floor,
		From:   from.display(),
		FromID: from.Place,
		To:     path[0].LabelFrom,
		ToID:   path[0].From,
		Via:    via,
	})
	for i := 1; i < len(path); i++ {
		prev, next := path[i-1], path[i]
		steps = append(steps, RouteStep{
			Floor:  prev.ToFloor,
			From:   prev.LabelTo,
			FromID: prev.To,
			To:     next.LabelFrom,
			ToID:   next.From,
			Via:    via,
		})
	}
	last := path[len(path)-1]
	steps = append(steps, RouteStep{
		Floor:  last.ToFloor,
		From:   last.LabelTo,
		FromID: last.To,
		To:     to.display(),
		ToID:   to.Place,
		Via:    via,
	})
	return steps
}
