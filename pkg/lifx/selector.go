package lifx

import (
	"fmt"
	"strconv"
	"strings"
)

/*
 *  Selectors name one or more lights on an account.  All selector resolutions
 *  are treated as sets by the API, even ones that name a single device.
 *
 *    selector   := "all" | label ":" value
 *    zoned      := selector ("|" zone)+
 *    randomized := (selector | zoned) ":random"
 */

type SelectorKind int

const (
	SelectorAll SelectorKind = iota
	SelectorLabel
	SelectorID
	SelectorGroupID
	SelectorGroup
	SelectorLocationID
	SelectorLocation
	SelectorSceneID
)

var selectorLabels = []string{
	"all",
	"label",
	"id",
	"group_id",
	"group",
	"location_id",
	"location",
	"scene_id",
}

// return the selector label prefix, eg. "group_id"
func (k SelectorKind) Label() string {
	if int(k) < 0 || int(k) >= len(selectorLabels) {
		return fmt.Sprintf("unknown (kind: %d)", k)
	}

	return selectorLabels[k]
}

// Select is implemented by everything that can be used to target lights:
// Selector, Zoned and Random.
type Select interface {
	String() string
	isSelect()
}

// PureSelect is a selector that has not been randomized yet.
type PureSelect interface {
	Select
	Random() Random
}

// Selector identifies lights by one label/value pair.  The zero value
// selects all lights.  Every kind but SelectorAll needs a non-empty value;
// the constructors do not check this, use Validate before sending.
type Selector struct {
	Kind  SelectorKind
	Value string
}

func All() Selector                 { return Selector{Kind: SelectorAll} }
func Label(name string) Selector    { return Selector{Kind: SelectorLabel, Value: name} }
func ID(serial string) Selector     { return Selector{Kind: SelectorID, Value: serial} }
func GroupID(id string) Selector    { return Selector{Kind: SelectorGroupID, Value: id} }
func Group(name string) Selector    { return Selector{Kind: SelectorGroup, Value: name} }
func LocationID(id string) Selector { return Selector{Kind: SelectorLocationID, Value: id} }
func Location(name string) Selector { return Selector{Kind: SelectorLocation, Value: name} }
func SceneID(id string) Selector    { return Selector{Kind: SelectorSceneID, Value: id} }

func (s Selector) isSelect() {}

func (s Selector) String() string {
	if s.Kind == SelectorAll {
		return "all"
	}

	return s.Kind.Label() + ":" + s.Value
}

// Validate reports a selector whose string form ParseSelector would reject
func (s Selector) Validate() error {
	if s.Kind != SelectorAll && s.Value == "" {
		return &SelectorParseError{Kind: SelectorNoValue, Input: s.String()}
	}

	return nil
}

// Zoned constrains the selector to the given zones of multi-zone devices
func (s Selector) Zoned(zones Zones) Zoned {
	return Zoned{Selector: s, Zones: zones}
}

// Random picks one light at random from those matched by the selector
func (s Selector) Random() Random {
	return Random{inner: s}
}

func (s Selector) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Selector) UnmarshalText(text []byte) error {
	sel, err := ParseSelector(string(text))
	if err != nil {
		return err
	}

	*s = sel
	return nil
}

type SelectorParseErrorKind int

const (
	// no colon, and not "all"
	SelectorNoLabel SelectorParseErrorKind = iota
	// a label with nothing after the colon
	SelectorNoValue
	// a label that is not one of the recognised selector labels
	SelectorUnknownLabel
)

type SelectorParseError struct {
	Kind  SelectorParseErrorKind
	Input string
}

func (e *SelectorParseError) Error() string {
	switch e.Kind {
	case SelectorNoLabel:
		return fmt.Sprintf("selector %q has no label", e.Input)
	case SelectorNoValue:
		return fmt.Sprintf("selector %q has no value after the label", e.Input)
	default:
		return fmt.Sprintf("selector %q has an unknown label", e.Input)
	}
}

// ParseSelector is the inverse of Selector.String.  Zoned and random
// decorations are output only and are not recognised here.
func ParseSelector(s string) (Selector, error) {
	if s == "all" {
		return All(), nil
	}

	i := strings.IndexByte(s, ':')
	if i < 0 {
		return Selector{}, &SelectorParseError{Kind: SelectorNoLabel, Input: s}
	}

	label, value := s[:i], s[i+1:]
	if value == "" {
		return Selector{}, &SelectorParseError{Kind: SelectorNoValue, Input: s}
	}

	// "all" never takes a value
	for k := SelectorLabel; int(k) < len(selectorLabels); k++ {
		if selectorLabels[k] == label {
			return Selector{Kind: k, Value: value}, nil
		}
	}

	return Selector{}, &SelectorParseError{Kind: SelectorUnknownLabel, Input: s}
}

// Zones is an ordered list of zone indices
type Zones []uint8

func Zone(z uint8) Zones {
	return Zones{z}
}

func ZoneList(zones ...uint8) Zones {
	return append(Zones{}, zones...)
}

// ZoneRange returns start..end (end excluded)
func ZoneRange(start, end uint8) Zones {
	return zoneSpan(int(start), int(end)-1)
}

// ZoneRangeInclusive returns start..=end
func ZoneRangeInclusive(start, end uint8) Zones {
	return zoneSpan(int(start), int(end))
}

// ZonesFrom returns start..=255
func ZonesFrom(start uint8) Zones {
	return zoneSpan(int(start), 255)
}

// ZonesTo returns 0..end (end excluded)
func ZonesTo(end uint8) Zones {
	return zoneSpan(0, int(end)-1)
}

// ZonesThrough returns 0..=end
func ZonesThrough(end uint8) Zones {
	return zoneSpan(0, int(end))
}

func zoneSpan(first, last int) Zones {
	if first < 0 {
		first = 0
	}
	if last > 255 {
		last = 255
	}

	zones := Zones{}
	for z := first; z <= last; z++ {
		zones = append(zones, uint8(z))
	}

	return zones
}

// Zoned is a selector constrained to specific zones
type Zoned struct {
	Selector Selector
	Zones    Zones
}

func (z Zoned) isSelect() {}

func (z Zoned) String() string {
	var b strings.Builder
	b.WriteString(z.Selector.String())
	for _, zone := range z.Zones {
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(int(zone)))
	}

	return b.String()
}

func (z Zoned) Random() Random {
	return Random{inner: z}
}

// Random chooses a single device from the lights matched by a selector.
// A Random cannot be randomized again.
type Random struct {
	inner PureSelect
}

func (r Random) isSelect() {}

func (r Random) String() string {
	if r.inner == nil {
		return All().String() + ":random"
	}

	return r.inner.String() + ":random"
}

// Unwrap returns the selector that was randomized
func (r Random) Unwrap() PureSelect {
	return r.inner
}
