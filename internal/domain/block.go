package domain

type BlockType string

const (
	BlockTypeText  BlockType = "text"
	BlockTypeImage BlockType = "image"
)

// Unit is the measurement unit stored on block geometry.
type Unit string

const (
	UnitInch  Unit = "in"
	UnitPixel Unit = "px"
)

type HorizontalAlign string

const (
	AlignLeft   HorizontalAlign = "left"
	AlignCenter HorizontalAlign = "center"
	AlignRight  HorizontalAlign = "right"
)

type VerticalAlign string

const (
	AlignTop    VerticalAlign = "top"
	AlignMiddle VerticalAlign = "center"
	AlignBottom VerticalAlign = "bottom"
)

type CornerShape string

const (
	ShapeRound  CornerShape = "round"
	ShapeSquare CornerShape = "square"
)

// Corner selects one of the four independently shaped block corners.
type Corner string

const (
	CornerTopLeft     Corner = "shapeTopLeft"
	CornerTopRight    Corner = "shapeTopRight"
	CornerBottomLeft  Corner = "shapeBottomLeft"
	CornerBottomRight Corner = "shapeBottomRight"
)

// PaddingSide selects one of the four padding values.
type PaddingSide string

const (
	PaddingTop    PaddingSide = "paddingTop"
	PaddingRight  PaddingSide = "paddingRight"
	PaddingBottom PaddingSide = "paddingBottom"
	PaddingLeft   PaddingSide = "paddingLeft"
)

// Valid reports whether s names one of the four sides.
func (s PaddingSide) Valid() bool {
	switch s {
	case PaddingTop, PaddingRight, PaddingBottom, PaddingLeft:
		return true
	}
	return false
}

// Block is one positioned, styled content unit on an artboard.
// Geometry is expressed in the artboard's Unit; Rotate is in degrees.
// Optional numerics are nil when unset.
type Block struct {
	Reference string    `json:"reference" yaml:"reference"`
	Type      BlockType `json:"type" yaml:"type"`

	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
	Top    float64 `json:"top" yaml:"top"`
	Left   float64 `json:"left" yaml:"left"`
	Rotate float64 `json:"rotate" yaml:"rotate"`

	HorizontalAlign HorizontalAlign `json:"horizontalAlign,omitempty" yaml:"horizontalAlign,omitempty"`
	VerticalAlign   VerticalAlign   `json:"verticalAlign,omitempty" yaml:"verticalAlign,omitempty"`
	BorderColor     string          `json:"borderColor,omitempty" yaml:"borderColor,omitempty"`
	FontColor       string          `json:"fontColor,omitempty" yaml:"fontColor,omitempty"`
	BackgroundColor string          `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty"`
	FontSize        *float64        `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
	LineHeight      *float64        `json:"lineHeight,omitempty" yaml:"lineHeight,omitempty"`
	Bold            bool            `json:"bold,omitempty" yaml:"bold,omitempty"`
	Italic          bool            `json:"italic,omitempty" yaml:"italic,omitempty"`
	Underline       bool            `json:"underline,omitempty" yaml:"underline,omitempty"`

	ShapeTopLeft     CornerShape `json:"shapeTopLeft,omitempty" yaml:"shapeTopLeft,omitempty"`
	ShapeTopRight    CornerShape `json:"shapeTopRight,omitempty" yaml:"shapeTopRight,omitempty"`
	ShapeBottomLeft  CornerShape `json:"shapeBottomLeft,omitempty" yaml:"shapeBottomLeft,omitempty"`
	ShapeBottomRight CornerShape `json:"shapeBottomRight,omitempty" yaml:"shapeBottomRight,omitempty"`
	ShapeRadius      float64     `json:"shapeRadius,omitempty" yaml:"shapeRadius,omitempty"`

	PaddingTop    *float64 `json:"paddingTop,omitempty" yaml:"paddingTop,omitempty"`
	PaddingRight  *float64 `json:"paddingRight,omitempty" yaml:"paddingRight,omitempty"`
	PaddingBottom *float64 `json:"paddingBottom,omitempty" yaml:"paddingBottom,omitempty"`
	PaddingLeft   *float64 `json:"paddingLeft,omitempty" yaml:"paddingLeft,omitempty"`

	ImageURL string `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	ClipPath string `json:"clipPath,omitempty" yaml:"clipPath,omitempty"`
	Content  string `json:"content,omitempty" yaml:"content,omitempty"` // rich text (HTML)

	// Index is the layer order. Nil until the block joins an ordered collection.
	Index *int `json:"index,omitempty" yaml:"index,omitempty"`

	// Extra holds caller-defined fields carried along with the block.
	Extra map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// ApplyDefaults fills the style fields a freshly mounted block starts with.
func (b *Block) ApplyDefaults() {
	for _, c := range []Corner{CornerTopLeft, CornerTopRight, CornerBottomLeft, CornerBottomRight} {
		if b.Shape(c) == "" {
			b.SetShape(c, ShapeRound)
		}
	}
	if b.VerticalAlign == "" {
		b.VerticalAlign = AlignTop
	}
	if b.HorizontalAlign == "" {
		b.HorizontalAlign = AlignLeft
	}
}

// Shape returns the shape of the given corner.
func (b *Block) Shape(c Corner) CornerShape {
	switch c {
	case CornerTopLeft:
		return b.ShapeTopLeft
	case CornerTopRight:
		return b.ShapeTopRight
	case CornerBottomLeft:
		return b.ShapeBottomLeft
	case CornerBottomRight:
		return b.ShapeBottomRight
	}
	return ""
}

// SetShape sets the shape of the given corner. Unknown corners are ignored.
func (b *Block) SetShape(c Corner, s CornerShape) {
	switch c {
	case CornerTopLeft:
		b.ShapeTopLeft = s
	case CornerTopRight:
		b.ShapeTopRight = s
	case CornerBottomLeft:
		b.ShapeBottomLeft = s
	case CornerBottomRight:
		b.ShapeBottomRight = s
	}
}

// PaddingOf returns the padding value of side.
func (b *Block) PaddingOf(side PaddingSide) *float64 {
	if f := b.padding(side); f != nil {
		return *f
	}
	return nil
}

// SetPadding sets the padding value of side. Unknown sides are ignored.
func (b *Block) SetPadding(side PaddingSide, v *float64) {
	if f := b.padding(side); f != nil {
		*f = v
	}
}

func (b *Block) padding(side PaddingSide) **float64 {
	switch side {
	case PaddingTop:
		return &b.PaddingTop
	case PaddingRight:
		return &b.PaddingRight
	case PaddingBottom:
		return &b.PaddingBottom
	case PaddingLeft:
		return &b.PaddingLeft
	}
	return nil
}

// Layer returns the block's index, or -1 when it has none.
func (b *Block) Layer() int {
	if b.Index == nil {
		return -1
	}
	return *b.Index
}

// SetLayer assigns the block's index.
func (b *Block) SetLayer(i int) {
	b.Index = &i
}

// Clone returns a deep copy of the block.
func (b *Block) Clone() *Block {
	c := *b
	c.FontSize = cloneFloat(b.FontSize)
	c.LineHeight = cloneFloat(b.LineHeight)
	c.PaddingTop = cloneFloat(b.PaddingTop)
	c.PaddingRight = cloneFloat(b.PaddingRight)
	c.PaddingBottom = cloneFloat(b.PaddingBottom)
	c.PaddingLeft = cloneFloat(b.PaddingLeft)
	if b.Index != nil {
		c.SetLayer(*b.Index)
	}
	if b.Extra != nil {
		c.Extra = make(map[string]any, len(b.Extra))
		for k, v := range b.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	f := *v
	return &f
}

// BlockStore persists the blocks of artboards.
type BlockStore interface {
	CreateBlock(artboardID string, b *Block) error
	GetBlock(artboardID, reference string) (*Block, error)
	ListBlocks(artboardID string) ([]*Block, error)
	UpdateBlock(artboardID string, b *Block) error
	DeleteBlock(artboardID, reference string) error
	DeleteBlocksByArtboard(artboardID string) error
	ReplaceBlocks(artboardID string, blocks []*Block) error
}
