package stream

import (
	"encoding/binary"
	"errors"
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

// Item flags in the binary encoding.
const (
	FlagVisible = 1 << iota
)

const (
	headerSize = 2 + 4 + 4
	itemSize   = 4 + 4 + 1 + 3
)

// ErrTooManyItems is returned when a Frame does not fit the binary encoding.
var ErrTooManyItems = errors.New("stream: too many items for a frame")

// Item is the state of one parallax layer in a Frame.
type Item struct {
	ID      string         `json:"id"`
	X       float64        `json:"x"`
	Y       float64        `json:"y"`
	Speed   float64        `json:"speed"`
	Visible bool           `json:"visible"`
	Colour  colorful.Color `json:"-"`
	Hex     string         `json:"colour"`
}

// Frame is a snapshot of the page taken after a loop step.
type Frame struct {
	Time      time.Duration `json:"time"`
	ScrollX   float64       `json:"scrollX"`
	ScrollY   float64       `json:"scrollY"`
	Target    float64       `json:"target"`
	Animating bool          `json:"animating"`
	Items     []Item        `json:"items"`
}

// MarshalBinary converts a Frame into the little endian wire layout: item
// count, scroll offsets, then per item its transform, flags and colour.
func (f *Frame) MarshalBinary() (data []byte, err error) {
	if len(f.Items) > math.MaxUint16 {
		return nil, ErrTooManyItems
	}
	data = make([]byte, headerSize, headerSize+len(f.Items)*itemSize)
	binary.LittleEndian.PutUint16(data, uint16(len(f.Items)))
	binary.LittleEndian.PutUint32(data[2:], math.Float32bits(float32(f.ScrollX)))
	binary.LittleEndian.PutUint32(data[6:], math.Float32bits(float32(f.ScrollY)))

	var word [4]byte
	for _, it := range f.Items {
		binary.LittleEndian.PutUint32(word[:], math.Float32bits(float32(it.X)))
		data = append(data, word[:]...)
		binary.LittleEndian.PutUint32(word[:], math.Float32bits(float32(it.Y)))
		data = append(data, word[:]...)

		var flags byte
		if it.Visible {
			flags |= FlagVisible
		}
		r, g, b := it.Colour.Clamped().RGB255()
		data = append(data, flags, r, g, b)
	}
	return data, nil
}

// UnmarshalBinary decodes the layout written by MarshalBinary. Item ids and
// speeds are not part of the encoding.
func (f *Frame) UnmarshalBinary(data []byte) error {
	if len(data) < headerSize {
		return errors.New("stream: short frame header")
	}
	n := int(binary.LittleEndian.Uint16(data))
	if len(data) != headerSize+n*itemSize {
		return errors.New("stream: frame length does not match item count")
	}
	f.ScrollX = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[2:])))
	f.ScrollY = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[6:])))
	f.Items = make([]Item, n)
	for i := range f.Items {
		p := data[headerSize+i*itemSize:]
		it := &f.Items[i]
		it.X = float64(math.Float32frombits(binary.LittleEndian.Uint32(p)))
		it.Y = float64(math.Float32frombits(binary.LittleEndian.Uint32(p[4:])))
		it.Visible = p[8]&FlagVisible != 0
		it.Colour = colorful.Color{R: float64(p[9]) / 255, G: float64(p[10]) / 255, B: float64(p[11]) / 255}
		it.Hex = it.Colour.Hex()
	}
	return nil
}

// InterpolateFrame blends two frames of the same page, for smoothing a
// display between published frames.
func (f *Frame) InterpolateFrame(f2 *Frame, t float64) *Frame {
	out := &Frame{
		Time:      f.Time + time.Duration(float64(f2.Time-f.Time)*t),
		ScrollX:   lerp(f.ScrollX, f2.ScrollX, t),
		ScrollY:   lerp(f.ScrollY, f2.ScrollY, t),
		Target:    f2.Target,
		Animating: f2.Animating,
		Items:     make([]Item, len(f.Items)),
	}
	copy(out.Items, f.Items)
	for i := range out.Items {
		if i >= len(f2.Items) || f2.Items[i].ID != f.Items[i].ID {
			continue
		}
		a, b := f.Items[i], f2.Items[i]
		out.Items[i].X = lerp(a.X, b.X, t)
		out.Items[i].Y = lerp(a.Y, b.Y, t)
		out.Items[i].Visible = b.Visible
		out.Items[i].Colour = a.Colour.BlendHcl(b.Colour, t).Clamped()
		out.Items[i].Hex = out.Items[i].Colour.Hex()
	}
	return out
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
