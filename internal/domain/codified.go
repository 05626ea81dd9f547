package domain

// Codified holds a value decoded from an external code. Codes the client does not
// know yet are kept verbatim as Unknown so newer server values round-trip.
type Codified[T comparable] struct {
	value T
	raw   string
	known bool
}

func Known[T comparable](value T, raw string) Codified[T] {
	return Codified[T]{value: value, raw: raw, known: true}
}

func Unknown[T comparable](raw string) Codified[T] {
	return Codified[T]{raw: raw}
}

func (c Codified[T]) Value() (T, bool) {
	return c.value, c.known
}

func (c Codified[T]) IsKnown() bool {
	return c.known
}

func (c Codified[T]) Raw() string {
	return c.raw
}

func (c Codified[T]) String() string {
	return c.raw
}

// Codec maps values to their wire codes and back.
type Codec[T comparable] struct {
	byCode  map[string]T
	byValue map[T]string
}

func NewCodec[T comparable](codes map[T]string) Codec[T] {
	codec := Codec[T]{
		byCode:  make(map[string]T, len(codes)),
		byValue: make(map[T]string, len(codes)),
	}
	for value, code := range codes {
		codec.byCode[code] = value
		codec.byValue[value] = code
	}
	return codec
}

func (c Codec[T]) Decode(raw string) Codified[T] {
	if value, ok := c.byCode[raw]; ok {
		return Known(value, raw)
	}
	return Unknown[T](raw)
}

// Encode reports false for a value missing from the codec table.
func (c Codec[T]) Encode(value T) (Codified[T], bool) {
	code, ok := c.byValue[value]
	if !ok {
		return Codified[T]{}, false
	}
	return Known(value, code), true
}
