package stamp

import "fmt"

// StampingType selects how patch elevations compete with the base terrain.
type StampingType int

// Stamping types.
const (
	Cut  StampingType = iota // keep the lower of base and patch
	Fill                     // keep the higher of base and patch
	Both                     // patch always wins
)

var stampingTypeNames = []string{"cut", "fill", "both"}

// String returns the canonical token.
func (t StampingType) String() string {
	if t < 0 || int(t) >= len(stampingTypeNames) {
		return fmt.Sprintf("StampingType(%d)", int(t))
	}
	return stampingTypeNames[t]
}

// ParseStampingType converts a token to a StampingType.
func ParseStampingType(s string) (StampingType, error) {
	i, err := parseToken("stamping_type", s, stampingTypeNames)
	return StampingType(i), err
}

// MarshalText implements encoding.TextMarshaler.
func (t StampingType) MarshalText() ([]byte, error) {
	if t < 0 || int(t) >= len(stampingTypeNames) {
		return nil, &ConfigurationError{Field: "stamping_type", Value: t.String(), Valid: stampingTypeNames}
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *StampingType) UnmarshalText(b []byte) error {
	v, err := ParseStampingType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Side selects the left or right side of the centerline.
type Side int

// Sides, looking along the centerline.
const (
	Left Side = iota
	Right
)

var sideNames = []string{"left", "right"}

// String returns the canonical token.
func (s Side) String() string {
	if s < 0 || int(s) >= len(sideNames) {
		return fmt.Sprintf("Side(%d)", int(s))
	}
	return sideNames[s]
}

// Sign returns +1 for left and -1 for right.
func (s Side) Sign() float64 {
	if s == Right {
		return -1
	}
	return 1
}

// ParseSide converts a token to a Side.
func ParseSide(s string) (Side, error) {
	i, err := parseToken("side", s, sideNames)
	return Side(i), err
}

// MarshalText implements encoding.TextMarshaler.
func (s Side) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(sideNames) {
		return nil, &ConfigurationError{Field: "side", Value: s.String(), Valid: sideNames}
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Side) UnmarshalText(b []byte) error {
	v, err := ParseSide(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// CapKind identifies an end cap variant.
type CapKind int

// End cap variants.
const (
	KindGuidebank CapKind = iota
	KindSlopedAbutment
	KindWingWall
)

var capKindNames = []string{"guidebank", "sloped_abutment", "wingwall"}

// String returns the canonical token.
func (k CapKind) String() string {
	if k < 0 || int(k) >= len(capKindNames) {
		return fmt.Sprintf("CapKind(%d)", int(k))
	}
	return capKindNames[k]
}

// ParseCapKind converts a token to a CapKind.
func ParseCapKind(s string) (CapKind, error) {
	i, err := parseToken("endcap", s, capKindNames)
	return CapKind(i), err
}

// MarshalText implements encoding.TextMarshaler.
func (k CapKind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(capKindNames) {
		return nil, &ConfigurationError{Field: "endcap", Value: k.String(), Valid: capKindNames}
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *CapKind) UnmarshalText(b []byte) error {
	v, err := ParseCapKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// RasterFormat selects a grid export format.
type RasterFormat int

// Raster formats.
const (
	ArcInfoASCII RasterFormat = iota
)

var rasterFormatNames = []string{"ascii"}

// String returns the canonical token.
func (f RasterFormat) String() string {
	if f < 0 || int(f) >= len(rasterFormatNames) {
		return fmt.Sprintf("RasterFormat(%d)", int(f))
	}
	return rasterFormatNames[f]
}

// ParseRasterFormat converts a token to a RasterFormat.
func ParseRasterFormat(s string) (RasterFormat, error) {
	i, err := parseToken("raster_format", s, rasterFormatNames)
	return RasterFormat(i), err
}

// MarshalText implements encoding.TextMarshaler.
func (f RasterFormat) MarshalText() ([]byte, error) {
	if f < 0 || int(f) >= len(rasterFormatNames) {
		return nil, &ConfigurationError{Field: "raster_format", Value: f.String(), Valid: rasterFormatNames}
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *RasterFormat) UnmarshalText(b []byte) error {
	v, err := ParseRasterFormat(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func parseToken(field, s string, names []string) (int, error) {
	for i, n := range names {
		if n == s {
			return i, nil
		}
	}
	return 0, &ConfigurationError{Field: field, Value: s, Valid: append([]string(nil), names...)}
}
