package connector

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	errs "github.com/matzehuels/indoorroute/pkg/errors"
)

// Type is a connector category, also called the via-type of a journey.
type Type string

const (
	Stairs    Type = "Stairs"
	Elevator  Type = "Elevator"
	Escalator Type = "Escalator"
)

// Types lists every connector category.
var Types = []Type{Stairs, Elevator, Escalator}

// ParseType parses a connector type case-insensitively.
func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", errs.New(errs.ErrCodeInvalidVia, "unknown connector type %q (want stairs, elevator or escalator)", s)
}

// UnmarshalJSON accepts any letter case.
func (t *Type) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Connector joins a node on one floor with a node on another.
type Connector struct {
	ID        string `json:"id" bson:"id"`
	Type      Type   `json:"type" bson:"type"`
	From      string `json:"from" bson:"from"`
	To        string `json:"to" bson:"to"`
	LabelFrom string `json:"labelFrom,omitempty" bson:"labelFrom,omitempty"`
	LabelTo   string `json:"labelTo,omitempty" bson:"labelTo,omitempty"`
	FromFloor string `json:"fromFloor,omitempty" bson:"fromFloor,omitempty"`
	ToFloor   string `json:"toFloor,omitempty" bson:"toFloor,omitempty"`
}

// Reversed returns the connector as seen when travelling To -> From.
func (c Connector) Reversed() Connector {
	c.From, c.To = c.To, c.From
	c.LabelFrom, c.LabelTo = c.LabelTo, c.LabelFrom
	c.FromFloor, c.ToFloor = c.ToFloor, c.FromFloor
	return c
}

// Normalize fills in missing floor keys from the node-id prefix and
// canonicalizes the type. It runs once at load time.
func (c *Connector) Normalize() {
	if c.FromFloor == "" {
		c.FromFloor = FloorOf(c.From)
	}
	if c.ToFloor == "" {
		c.ToFloor = FloorOf(c.To)
	}
	if t, err := ParseType(string(c.Type)); err == nil {
		c.Type = t
	}
	if c.LabelFrom == "" {
		c.LabelFrom = c.From
	}
	if c.LabelTo == "" {
		c.LabelTo = c.To
	}
}

// FloorOf derives a floor key from a node id authored as
// "<floor>_<rest>" or "<floor>-<rest>". Ids without a delimiter return "".
func FloorOf(nodeID string) string {
	if i := strings.IndexAny(nodeID, "_-"); i > 0 {
		return nodeID[:i]
	}
	return ""
}

// Table is the building-wide connector document.
type Table struct {
	Verticals []Connector `json:"verticals"`
}

// DecodeTable reads a connector table and normalizes every entry.
func DecodeTable(r io.Reader) ([]Connector, error) {
	var t Table
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode connector table")
	}
	for i := range t.Verticals {
		t.Verticals[i].Normalize()
		if t.Verticals[i].FromFloor == "" || t.Verticals[i].ToFloor == "" {
			return nil, errs.New(errs.ErrCodeInvalidInput, "connector %q: cannot determine floors", t.Verticals[i].ID)
		}
	}
	return t.Verticals, nil
}

// String returns a compact description for logs.
func (c Connector) String() string {
	return fmt.Sprintf("%s %s:%s -> %s:%s", c.Type, c.FromFloor, c.From, c.ToFloor, c.To)
}
