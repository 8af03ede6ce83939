package cbor

import "math"

// EventKind distinguishes the three kinds of event the streaming decoder
// emits to a Visitor.
type EventKind int

const (
	EventItemBegin EventKind = iota
	EventItemEnd
	EventError
)

// Event is emitted by DecodeStream for every item the decoder encounters,
// in the order encountered: a Begin, optionally nested Begin/End pairs for
// an array/map/tag's children, then the matching End. Exactly one
// EventError terminates the stream early if decoding fails.
//
// Compound items (array, map, tag) carry their structural header
// information (Count, Indefinite) on Begin; they carry nothing new on End,
// since their contents already arrived as nested events. Leaf items
// (unsigned/negative integers, byte/text strings, bool, null) carry their
// value on End.
type Event struct {
	Kind  EventKind
	Major Major

	// Begin, for MajorArray/MajorMap: declared element/pair count
	// (meaningless if Indefinite). For MajorTag: the tag number.
	Count      uint64
	Indefinite bool

	// End, for leaf items only.
	Uint      uint64
	Int       int64
	Bytes     []byte
	Text      string
	Bool      bool
	IsNull    bool

	Err error
}

// Visitor receives decode events. Implementations that want to stop
// decoding early may do so only by returning from Visit and checking state
// on subsequent calls; the decoder itself does not support visitor-driven
// abort, matching a tree-walking parser with no cancellation points.
type Visitor interface {
	Visit(Event)
}

// Decode parses data as a single CBOR item, enforcing the decoder's safety
// contracts (depth limit, no lying lengths, no unsupported simple values,
// no indefinite-length items outside arrays/maps). It is built on top of
// DecodeStream via a parent-stack tree builder.
func Decode(data []byte) (*Item, error) {
	tb := &treeBuilder{}
	if err := DecodeStream(data, tb); err != nil {
		return nil, err
	}
	return tb.root, nil
}

// DecodeStream walks data as a single CBOR item, emitting one Event per
// item (nested items included) to v. It returns the first decode error
// encountered (also delivered as an EventError to v).
func DecodeStream(data []byte, v Visitor) error {
	d := &decodeState{buf: data}
	if err := d.walk(1, v); err != nil {
		return err
	}
	// Trailing bytes after one complete item are silently ignored.
	return nil
}

type decodeState struct {
	buf []byte
	pos int
}

func (d *decodeState) emitErr(v Visitor, err error) error {
	v.Visit(Event{Kind: EventError, Err: err})
	return err
}

// walk decodes exactly one item (of any major type) at the current
// position, emitting Begin/End events to v, and advances d.pos past it.
func (d *decodeState) walk(depth int, v Visitor) error {
	if depth > MaxDepth {
		return d.emitErr(v, &DepthError{Limit: MaxDepth})
	}

	major, addInfo, value, indefinite, err := d.readHeader()
	if err != nil {
		return d.emitErr(v, err)
	}

	switch major {
	case MajorUnsigned:
		v.Visit(Event{Kind: EventItemBegin, Major: major})
		v.Visit(Event{Kind: EventItemEnd, Major: major, Uint: value})
		return nil

	case MajorNegative:
		if value > math.MaxInt64 {
			return d.emitErr(v, &NegativeIntegerRangeError{})
		}
		n := int64(-1) - int64(value)
		v.Visit(Event{Kind: EventItemBegin, Major: major})
		v.Visit(Event{Kind: EventItemEnd, Major: major, Int: n})
		return nil

	case MajorBytes:
		if indefinite {
			return d.emitErr(v, &IndefiniteLengthError{Major: major})
		}
		b, err := d.readRaw(value, "byte string")
		if err != nil {
			return d.emitErr(v, err)
		}
		v.Visit(Event{Kind: EventItemBegin, Major: major})
		v.Visit(Event{Kind: EventItemEnd, Major: major, Bytes: b})
		return nil

	case MajorText:
		if indefinite {
			return d.emitErr(v, &IndefiniteLengthError{Major: major})
		}
		b, err := d.readRaw(value, "text string")
		if err != nil {
			return d.emitErr(v, err)
		}
		v.Visit(Event{Kind: EventItemBegin, Major: major})
		v.Visit(Event{Kind: EventItemEnd, Major: major, Text: string(b)})
		return nil

	case MajorArray:
		v.Visit(Event{Kind: EventItemBegin, Major: major, Count: value, Indefinite: indefinite})
		if indefinite {
			if err := d.walkIndefiniteChildren(depth, v); err != nil {
				return err
			}
		} else {
			for n := uint64(0); n < value; n++ {
				if err := d.walk(depth+1, v); err != nil {
					return err
				}
			}
		}
		v.Visit(Event{Kind: EventItemEnd, Major: major})
		return nil

	case MajorMap:
		v.Visit(Event{Kind: EventItemBegin, Major: major, Count: value, Indefinite: indefinite})
		if indefinite {
			if err := d.walkIndefiniteChildren(depth, v); err != nil {
				return err
			}
		} else {
			for n := uint64(0); n < value*2; n++ {
				if err := d.walk(depth+1, v); err != nil {
					return err
				}
			}
		}
		v.Visit(Event{Kind: EventItemEnd, Major: major})
		return nil

	case MajorTag:
		if indefinite {
			return d.emitErr(v, &IndefiniteLengthError{Major: major})
		}
		v.Visit(Event{Kind: EventItemBegin, Major: major, Count: value})
		if err := d.walk(depth+1, v); err != nil {
			return err
		}
		v.Visit(Event{Kind: EventItemEnd, Major: major})
		return nil

	case MajorSimple:
		switch addInfo {
		case 20:
			v.Visit(Event{Kind: EventItemBegin, Major: major})
			v.Visit(Event{Kind: EventItemEnd, Major: major, Bool: false})
			return nil
		case 21:
			v.Visit(Event{Kind: EventItemBegin, Major: major})
			v.Visit(Event{Kind: EventItemEnd, Major: major, Bool: true})
			return nil
		case 22:
			v.Visit(Event{Kind: EventItemBegin, Major: major})
			v.Visit(Event{Kind: EventItemEnd, Major: major, IsNull: true})
			return nil
		default:
			return d.emitErr(v, &UnsupportedSimpleError{AdditionalInfo: addInfo})
		}

	default:
		return d.emitErr(v, &UnsupportedSimpleError{AdditionalInfo: addInfo})
	}
}

// walkIndefiniteChildren decodes items until the 0xFF break marker is
// encountered, which is the only place this decoder accepts it.
func (d *decodeState) walkIndefiniteChildren(depth int, v Visitor) error {
	for {
		if d.pos >= len(d.buf) {
			return d.emitErr(v, &LengthError{Field: "indefinite-length item"})
		}
		if d.buf[d.pos] == 0xFF {
			d.pos++
			return nil
		}
		if err := d.walk(depth+1, v); err != nil {
			return err
		}
	}
}

// readHeader parses the initial byte and any following length/value bytes
// of one CBOR item, without consuming the item's payload.
func (d *decodeState) readHeader() (major Major, addInfo byte, value uint64, indefinite bool, err error) {
	if d.pos >= len(d.buf) {
		return 0, 0, 0, false, &LengthError{Field: "header"}
	}
	first := d.buf[d.pos]
	d.pos++
	major = Major(first >> 5)
	addInfo = first & 0x1F

	switch {
	case addInfo <= 23:
		return major, addInfo, uint64(addInfo), false, nil
	case addInfo == 24:
		v, err := d.readUint(1)
		return major, addInfo, v, false, err
	case addInfo == 25:
		v, err := d.readUint(2)
		return major, addInfo, v, false, err
	case addInfo == 26:
		v, err := d.readUint(4)
		return major, addInfo, v, false, err
	case addInfo == 27:
		v, err := d.readUint(8)
		return major, addInfo, v, false, err
	case addInfo >= 28 && addInfo <= 30:
		return major, addInfo, 0, false, &ReservedAdditionalInfoError{Major: major, AdditionalInfo: addInfo}
	default: // addInfo == 31
		switch major {
		case MajorArray, MajorMap:
			return major, addInfo, 0, true, nil
		case MajorSimple:
			// The lone 0xFF byte reached as a fresh item header
			// outside of an indefinite array/map's child loop.
			return major, addInfo, 0, false, &UnexpectedBreakError{}
		default:
			return major, addInfo, 0, false, &IndefiniteLengthError{Major: major}
		}
	}
}

func (d *decodeState) readUint(n int) (uint64, error) {
	if d.pos+n > len(d.buf) {
		return 0, &LengthError{Field: "header length"}
	}
	var v uint64
	for i := 0; i < n; i++ {
		v = v<<8 | uint64(d.buf[d.pos+i])
	}
	d.pos += n
	return v, nil
}

func (d *decodeState) readRaw(length uint64, field string) ([]byte, error) {
	if length > uint64(math.MaxInt) {
		return nil, &SizeOverflowError{Field: field}
	}
	n := int(length)
	if d.pos+n > len(d.buf) || d.pos+n < d.pos {
		return nil, &LengthError{Field: field}
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// treeBuilder is the parent-stack Visitor that assembles an Item tree out
// of the flat event stream DecodeStream produces.
type treeBuilder struct {
	stack []*buildFrame
	root  *Item
}

type buildFrame struct {
	major Major

	arrayItems []*Item

	mapPending []*Item // alternating key, value, key, value...
	tagNum     uint64
}

func (tb *treeBuilder) Visit(ev Event) {
	switch ev.Kind {
	case EventItemBegin:
		switch ev.Major {
		case MajorArray, MajorMap:
			tb.stack = append(tb.stack, &buildFrame{major: ev.Major})
		case MajorTag:
			tb.stack = append(tb.stack, &buildFrame{major: ev.Major, tagNum: ev.Count})
		}
	case EventItemEnd:
		var item *Item
		switch ev.Major {
		case MajorUnsigned:
			item = newUint(ev.Uint)
		case MajorNegative:
			item = newNegInt(ev.Int)
		case MajorBytes:
			item = newBytes(ev.Bytes)
		case MajorText:
			item = newText(ev.Text)
		case MajorArray:
			frame := tb.pop()
			item = newArray(frame.arrayItems)
		case MajorMap:
			frame := tb.pop()
			entries := make([]MapEntry, 0, len(frame.mapPending)/2)
			for i := 0; i+1 < len(frame.mapPending); i += 2 {
				entries = append(entries, MapEntry{Key: frame.mapPending[i], Value: frame.mapPending[i+1]})
			}
			item = newMap(newMapFromEntries(entries))
		case MajorTag:
			frame := tb.pop()
			var wrapped *Item
			if len(frame.arrayItems) == 1 {
				wrapped = frame.arrayItems[0]
			}
			item = newTag(frame.tagNum, wrapped)
		case MajorSimple:
			if ev.IsNull {
				item = newNull()
			} else {
				item = newBool(ev.Bool)
			}
		}
		tb.attach(item)
	}
}

func (tb *treeBuilder) pop() *buildFrame {
	n := len(tb.stack)
	frame := tb.stack[n-1]
	tb.stack = tb.stack[:n-1]
	return frame
}

func (tb *treeBuilder) attach(item *Item) {
	if len(tb.stack) == 0 {
		tb.root = item
		return
	}
	top := tb.stack[len(tb.stack)-1]
	switch top.major {
	case MajorArray, MajorTag:
		top.arrayItems = append(top.arrayItems, item)
	case MajorMap:
		top.mapPending = append(top.mapPending, item)
	}
}
