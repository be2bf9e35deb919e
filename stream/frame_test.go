package stream

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

func TestFrameMarshalBinary(t *testing.T) {
	f := &Frame{
		ScrollX: 0,
		ScrollY: 120.5,
		Items: []Item{
			{ID: "a", X: 0, Y: -42, Visible: true, Colour: colorful.Color{R: 1, G: 0, B: 0}},
			{ID: "b", X: 3, Y: 7, Colour: colorful.Color{R: 0, G: 0, B: 1}},
		},
	}
	data, err := f.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != headerSize+2*itemSize {
		t.Fatalf("Expected %d bytes, got %d", headerSize+2*itemSize, len(data))
	}
	if n := binary.LittleEndian.Uint16(data); n != 2 {
		t.Errorf("Expected count 2, got %d", n)
	}
	if y := math.Float32frombits(binary.LittleEndian.Uint32(data[6:])); y != 120.5 {
		t.Errorf("Expected scrollY 120.5, got %v", y)
	}

	first := data[headerSize : headerSize+itemSize]
	if y := math.Float32frombits(binary.LittleEndian.Uint32(first[4:])); y != -42 {
		t.Errorf("Expected item Y -42, got %v", y)
	}
	if !bytes.Equal(first[8:], []byte{FlagVisible, 255, 0, 0}) {
		t.Errorf("Expected visible red item, got %v", first[8:])
	}
	second := data[headerSize+itemSize:]
	if !bytes.Equal(second[8:], []byte{0, 0, 0, 255}) {
		t.Errorf("Expected hidden blue item, got %v", second[8:])
	}

	var back Frame
	if err := back.UnmarshalBinary(data); err != nil {
		t.Fatal(err)
	}
	if back.ScrollY != 120.5 || len(back.Items) != 2 || back.Items[1].X != 3 || back.Items[1].Hex != "#0000ff" {
		t.Errorf("Decoded frame does not match: %+v", back)
	}
	if err := back.UnmarshalBinary(data[:len(data)-1]); err == nil {
		t.Error("Expected an error for truncated data")
	}
}

func TestInterpolateFrame(t *testing.T) {
	f1 := &Frame{ScrollY: 0, Items: []Item{{ID: "a", Y: 0, Colour: colorful.Color{R: 1}}}}
	f2 := &Frame{ScrollY: 100, Items: []Item{{ID: "a", Y: 50, Visible: true, Colour: colorful.Color{R: 1}}}}

	mid := f1.InterpolateFrame(f2, 0.5)
	if mid.ScrollY != 50 || mid.Items[0].Y != 25 || !mid.Items[0].Visible {
		t.Errorf("Expected halfway frame, got %+v", mid)
	}
	if f1.Items[0].Y != 0 {
		t.Error("Expected the source frame to be untouched")
	}
}

func TestSpeedColour(t *testing.T) {
	slow := SpeedGradient.SpeedColour(-2)
	fast := SpeedGradient.SpeedColour(2)
	if slow.B <= slow.R {
		t.Errorf("Expected the slowest layers to be blue, got %v", slow.Hex())
	}
	if fast.R <= fast.B {
		t.Errorf("Expected the fastest layers to be red, got %v", fast.Hex())
	}
	if SpeedGradient.SpeedColour(10) != fast {
		t.Error("Expected speeds past the limit to clamp")
	}
}
