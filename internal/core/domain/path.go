package domain

import "strings"

// Reserved segment tokens that switch resolution into a node's action or
// event namespace. They are only meaningful after an EntitySet or Entity.
const (
	ActionsMarker = "$actions"
	EventsMarker  = "$events"
)

// SegmentKind distinguishes names from namespace markers.
type SegmentKind int

const (
	// SegmentName addresses a member, property, action or event by name.
	SegmentName SegmentKind = iota
	// SegmentActions is the $actions namespace marker.
	SegmentActions
	// SegmentEvents is the $events namespace marker.
	SegmentEvents
)

// Segment is one element of a Path.
type Segment struct {
	Kind SegmentKind
	Name string
}

// NameSegment returns a name segment.
func NameSegment(name string) Segment {
	return Segment{Kind: SegmentName, Name: name}
}

// Namespace marker segments.
var (
	ActionsSegment = Segment{Kind: SegmentActions}
	EventsSegment  = Segment{Kind: SegmentEvents}
)

// IsMarker reports whether the segment is $actions or $events.
func (s Segment) IsMarker() bool {
	return s.Kind == SegmentActions || s.Kind == SegmentEvents
}

// String returns the textual form of the segment.
func (s Segment) String() string {
	switch s.Kind {
	case SegmentActions:
		return ActionsMarker
	case SegmentEvents:
		return EventsMarker
	default:
		return s.Name
	}
}

// Path is an immutable sequence of segments addressing a node relative to a
// connector's root. The zero value is the empty path, which addresses the root.
type Path struct {
	segments []Segment
}

// ParsePath parses a slash-separated path. Surrounding slashes are trimmed and
// empty segments are ignored, so "a//b/" equals "a/b". Periods and other
// characters are ordinary name characters. ParsePath never fails; unresolvable
// paths are reported during resolution.
func ParsePath(raw string) Path {
	raw = strings.Trim(raw, "/")
	if raw == "" {
		return Path{}
	}

	parts := strings.Split(raw, "/")
	segments := make([]Segment, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "":
			continue
		case ActionsMarker:
			segments = append(segments, ActionsSegment)
		case EventsMarker:
			segments = append(segments, EventsSegment)
		default:
			segments = append(segments, NameSegment(part))
		}
	}
	return Path{segments: segments}
}

// PathOf builds a path from segments.
func PathOf(segments ...Segment) Path {
	return Path{}.Child(segments...)
}

// Len returns the number of segments.
func (p Path) Len() int {
	return len(p.segments)
}

// IsRoot reports whether the path is empty.
func (p Path) IsRoot() bool {
	return len(p.segments) == 0
}

// Segment returns the i-th segment.
func (p Path) Segment(i int) Segment {
	return p.segments[i]
}

// Segments returns a copy of the path's segments.
func (p Path) Segments() []Segment {
	out := make([]Segment, len(p.segments))
	copy(out, p.segments)
	return out
}

// Child returns a new path with the given segments appended.
// The receiver is never modified.
func (p Path) Child(segments ...Segment) Path {
	out := make([]Segment, 0, len(p.segments)+len(segments))
	out = append(out, p.segments...)
	out = append(out, segments...)
	return Path{segments: out}
}

// Name returns a new path with a name segment appended.
func (p Path) Name(name string) Path {
	return p.Child(NameSegment(name))
}

// Action returns the path of the named action under p.
func (p Path) Action(name string) Path {
	return p.Child(ActionsSegment, NameSegment(name))
}

// Event returns the path of the named event under p.
func (p Path) Event(name string) Path {
	return p.Child(EventsSegment, NameSegment(name))
}

// Equal reports whether two paths have the same segments.
func (p Path) Equal(other Path) bool {
	if len(p.segments) != len(other.segments) {
		return false
	}
	for i := range p.segments {
		if p.segments[i] != other.segments[i] {
			return false
		}
	}
	return true
}

// String joins the segments with "/". The root path renders as "".
func (p Path) String() string {
	parts := make([]string, len(p.segments))
	for i, s := range p.segments {
		parts[i] = s.String()
	}
	return strings.Join(parts, "/")
}
