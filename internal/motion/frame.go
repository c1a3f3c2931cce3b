package motion

// Frame is one RGBA snapshot pulled off the video source. Pix holds 4 bytes
// per pixel in R, G, B, A order, rows top to bottom.
type Frame struct {
	Width  int
	Height int
	Pix    []uint8
}

func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}
}

func (f *Frame) PixelCount() int {
	return len(f.Pix) / 4
}

// SetGray paints pixel i with a flat gray level. Test and fixture helper.
func (f *Frame) SetGray(i int, level uint8) {
	o := i * 4
	f.Pix[o] = level
	f.Pix[o+1] = level
	f.Pix[o+2] = level
	f.Pix[o+3] = 255
}

func (f *Frame) Clone() *Frame {
	c := &Frame{Width: f.Width, Height: f.Height, Pix: make([]uint8, len(f.Pix))}
	copy(c.Pix, f.Pix)
	return c
}
