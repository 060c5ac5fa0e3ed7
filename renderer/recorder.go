package renderer

// OpKind identifies a recorded draw call.
type OpKind uint8

const (
	OpFade OpKind = iota
	OpCircle
	OpLine
)

// Op is one recorded draw call.
type Op struct {
	Kind   OpKind
	X1, Y1 float32
	X2, Y2 float32 // line end, unused for circles
	Radius float32
	Blur   float32
	Width  float32
	Paint  Paint
}

// Recorder is an in-memory Surface. It keeps the draw calls of the most
// recent frame and running totals across frames. The headless host renders
// into it.
type Recorder struct {
	w, h   int
	frame  []Op
	Frames int
	Totals [3]int
	// KeepOps controls whether individual draw calls are retained.
	KeepOps bool
}

// NewRecorder creates a recorder with the given dimensions.
func NewRecorder(w, h int, keepOps bool) *Recorder {
	return &Recorder{w: w, h: h, KeepOps: keepOps}
}

func (r *Recorder) Resize(w, h int) {
	r.w, r.h = w, h
}

func (r *Recorder) Size() (int, int) {
	return r.w, r.h
}

func (r *Recorder) BeginFrame() {
	r.frame = r.frame[:0]
}

func (r *Recorder) EndFrame() {
	r.Frames++
}

func (r *Recorder) Fade(p Paint) {
	r.record(Op{Kind: OpFade, X2: float32(r.w), Y2: float32(r.h), Paint: p})
}

func (r *Recorder) GlowCircle(x, y, radius, blur float32, fill, glow Paint) {
	r.record(Op{Kind: OpCircle, X1: x, Y1: y, Radius: radius, Blur: blur, Paint: fill})
}

func (r *Recorder) Line(x1, y1, x2, y2, width float32, p Paint) {
	r.record(Op{Kind: OpLine, X1: x1, Y1: y1, X2: x2, Y2: y2, Width: width, Paint: p})
}

func (r *Recorder) record(op Op) {
	r.Totals[op.Kind]++
	if r.KeepOps {
		r.frame = append(r.frame, op)
	}
}

// Ops returns the draw calls of the current or last completed frame.
func (r *Recorder) Ops() []Op {
	return r.frame
}

// Count returns how many ops of kind were recorded in the last frame.
func (r *Recorder) Count(kind OpKind) int {
	n := 0
	for _, op := range r.frame {
		if op.Kind == kind {
			n++
		}
	}
	return n
}
