package lifx

import (
	"fmt"
	"strconv"
	"strings"
)

type ColorKind int

const (
	ColorRed ColorKind = iota
	ColorOrange
	ColorYellow
	ColorGreen
	ColorBlue
	ColorPurple
	ColorPink
	ColorWhite
	ColorHue
	ColorSaturation
	ColorBrightness
	ColorKelvin
	ColorRGB
	ColorRGBString
	ColorCustom
)

var colorNames = []string{
	"red",
	"orange",
	"yellow",
	"green",
	"blue",
	"purple",
	"pink",
	"white",
}

// Color describes the desired color setting of a light.  HSBK settings
// (Hue, Saturation, Brightness, Kelvin) describe light color better than RGB;
// RGB values are converted by the API.
//
// Values are not range checked when constructed, call Validate before use.
type Color struct {
	Kind ColorKind

	// Hue for ColorHue, temperature for ColorKelvin
	Hue    uint16
	Kelvin uint16

	// Level for ColorSaturation and ColorBrightness
	Level float64

	RGB [3]uint8

	// Text for ColorRGBString and ColorCustom
	Text string
}

// The named colors set hue and saturation, leaving brightness alone
var (
	Red    = Color{Kind: ColorRed}
	Orange = Color{Kind: ColorOrange}
	Yellow = Color{Kind: ColorYellow}
	Green  = Color{Kind: ColorGreen}
	Blue   = Color{Kind: ColorBlue}
	Purple = Color{Kind: ColorPurple}
	Pink   = Color{Kind: ColorPink}
	White  = Color{Kind: ColorWhite}
)

// Hue sets the hue (0-360), leaving all else untouched
func Hue(hue uint16) Color {
	return Color{Kind: ColorHue, Hue: hue}
}

// Saturation sets the saturation (0-1), leaving all else untouched
func Saturation(s float64) Color {
	return Color{Kind: ColorSaturation, Level: s}
}

// Brightness sets the brightness (0-1), leaving all else untouched
func Brightness(b float64) Color {
	return Color{Kind: ColorBrightness, Level: b}
}

// Kelvin sets the temperature (1500-9000) and saturation to 0
func Kelvin(k uint16) Color {
	return Color{Kind: ColorKelvin, Kelvin: k}
}

func RGB(r, g, b uint8) Color {
	return Color{Kind: ColorRGB, RGB: [3]uint8{r, g, b}}
}

// RGBString takes "ff0000" or "#ff0000"; output is normalized to the latter
func RGBString(s string) Color {
	return Color{Kind: ColorRGBString, Text: s}
}

// Custom passes the given string to the API as is.  It is never parsed or
// validated locally and exists for color keywords the API accepts but does
// not document (eg. "cyan").
func Custom(s string) Color {
	return Color{Kind: ColorCustom, Text: s}
}

func formatLevel(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (c Color) String() string {
	switch c.Kind {
	case ColorHue:
		return "hue:" + strconv.Itoa(int(c.Hue))
	case ColorSaturation:
		return "saturation:" + formatLevel(c.Level)
	case ColorBrightness:
		return "brightness:" + formatLevel(c.Level)
	case ColorKelvin:
		return "kelvin:" + strconv.Itoa(int(c.Kelvin))
	case ColorRGB:
		return fmt.Sprintf("rgb:%d,%d,%d", c.RGB[0], c.RGB[1], c.RGB[2])
	case ColorRGBString:
		if strings.HasPrefix(c.Text, "#") {
			return c.Text
		}
		return "#" + c.Text
	case ColorCustom:
		return c.Text
	}

	if int(c.Kind) >= 0 && int(c.Kind) < len(colorNames) {
		return colorNames[c.Kind]
	}

	return fmt.Sprintf("unknown (kind: %d)", c.Kind)
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses the color; custom colors come back as whatever they
// parse as
func (c *Color) UnmarshalText(text []byte) error {
	color, err := ParseColor(string(text))
	if err != nil {
		return err
	}

	*c = color
	return nil
}

type ColorParseErrorKind int

const (
	NoHue ColorParseErrorKind = iota
	NonNumericHue
	NoSaturation
	NonNumericSaturation
	NoBrightness
	NonNumericBrightness
	NoKelvin
	NonNumericKelvin
	NoRed
	NonNumericRed
	NoGreen
	NonNumericGreen
	NoBlue
	NonNumericBlue
	// not a keyword and too short to be an RGB string
	ShortString
	// not a keyword and too long to be an RGB string
	LongString
)

var colorParseMessages = map[ColorParseErrorKind]string{
	NoHue:                "expected hue after hue: label",
	NonNumericHue:        "failed to parse hue as integer",
	NoSaturation:         "expected saturation after saturation: label",
	NonNumericSaturation: "failed to parse saturation as float",
	NoBrightness:         "expected brightness after brightness: label",
	NonNumericBrightness: "failed to parse brightness as float",
	NoKelvin:             "expected color temperature after kelvin: label",
	NonNumericKelvin:     "failed to parse color temperature as integer",
	NoRed:                "expected red component after rgb: label",
	NonNumericRed:        "failed to parse red component as integer",
	NoGreen:              "expected green component after comma",
	NonNumericGreen:      "failed to parse green component as integer",
	NoBlue:               "expected blue component after comma",
	NonNumericBlue:       "failed to parse blue component as integer",
	ShortString:          "string is too short to be an RGB string and was not recognized as a keyword",
	LongString:           "string is too long to be an RGB string and was not recognized as a keyword",
}

// ColorParseError is a syntax error in a color string
type ColorParseError struct {
	Kind ColorParseErrorKind
	// the strconv failure, for the NonNumeric kinds
	Err error
}

func (e *ColorParseError) Error() string {
	msg := colorParseMessages[e.Kind]
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}

	return msg
}

func (e *ColorParseError) Unwrap() error {
	return e.Err
}

type colorPrefix struct {
	prefix     string
	missing    ColorParseErrorKind
	nonNumeric ColorParseErrorKind
	parse      func(string) (Color, error)
}

var colorPrefixes = []colorPrefix{
	{"hue:", NoHue, NonNumericHue, func(s string) (Color, error) {
		v, err := strconv.ParseUint(s, 10, 16)
		return Hue(uint16(v)), err
	}},
	{"saturation:", NoSaturation, NonNumericSaturation, func(s string) (Color, error) {
		v, err := strconv.ParseFloat(s, 64)
		return Saturation(v), err
	}},
	{"brightness:", NoBrightness, NonNumericBrightness, func(s string) (Color, error) {
		v, err := strconv.ParseFloat(s, 64)
		return Brightness(v), err
	}},
	{"kelvin:", NoKelvin, NonNumericKelvin, func(s string) (Color, error) {
		v, err := strconv.ParseUint(s, 10, 16)
		return Kelvin(uint16(v)), err
	}},
}

// ParseColor decodes the textual color grammar.  It checks syntax only;
// numeric ranges are checked by Validate.  Custom colors cannot be produced
// here, use Custom.
func ParseColor(s string) (Color, error) {
	for i, name := range colorNames {
		if s == name {
			return Color{Kind: ColorKind(i)}, nil
		}
	}

	for _, p := range colorPrefixes {
		if !strings.HasPrefix(s, p.prefix) {
			continue
		}

		spec := s[len(p.prefix):]
		if spec == "" {
			return Color{}, &ColorParseError{Kind: p.missing}
		}

		c, err := p.parse(spec)
		if err != nil {
			return Color{}, &ColorParseError{Kind: p.nonNumeric, Err: err}
		}

		return c, nil
	}

	if strings.HasPrefix(s, "rgb:") {
		return parseRGBComponents(s[len("rgb:"):])
	}

	want := 6
	if strings.HasPrefix(s, "#") {
		want = 7
	}

	switch {
	case len(s) < want:
		return Color{}, &ColorParseError{Kind: ShortString}
	case len(s) > want:
		return Color{}, &ColorParseError{Kind: LongString}
	}

	return RGBString(s), nil
}

// red, green and blue are checked for presence in order, then parsed in order
func parseRGBComponents(spec string) (Color, error) {
	parts := strings.SplitN(spec, ",", 3)

	missing := []ColorParseErrorKind{NoRed, NoGreen, NoBlue}
	for i, kind := range missing {
		if i >= len(parts) || parts[i] == "" {
			return Color{}, &ColorParseError{Kind: kind}
		}
	}

	nonNumeric := []ColorParseErrorKind{NonNumericRed, NonNumericGreen, NonNumericBlue}
	var rgb [3]uint8
	for i, kind := range nonNumeric {
		v, err := strconv.ParseUint(parts[i], 10, 8)
		if err != nil {
			return Color{}, &ColorParseError{Kind: kind, Err: err}
		}
		rgb[i] = uint8(v)
	}

	return RGB(rgb[0], rgb[1], rgb[2]), nil
}

type ColorValidationErrorKind int

const (
	HueTooLarge ColorValidationErrorKind = iota
	SaturationHigh
	SaturationLow
	BrightnessHigh
	BrightnessLow
	KelvinHigh
	KelvinLow
	RGBStringShort
	RGBStringLong
)

// ColorValidationError is a color whose value the API will not accept
type ColorValidationError struct {
	Kind  ColorValidationErrorKind
	Color Color
	// for the RGB string kinds, whether the string had a leading #
	HasHash bool
}

func (e *ColorValidationError) Error() string {
	c := e.Color
	switch e.Kind {
	case HueTooLarge:
		return fmt.Sprintf("hue %d is too large (max: 360)", c.Hue)
	case SaturationHigh:
		return fmt.Sprintf("saturation %s is too large (max: 1.0)", formatLevel(c.Level))
	case SaturationLow:
		return fmt.Sprintf("saturation %s is negative", formatLevel(c.Level))
	case BrightnessHigh:
		return fmt.Sprintf("brightness %s is too large (max: 1.0)", formatLevel(c.Level))
	case BrightnessLow:
		return fmt.Sprintf("brightness %s is negative", formatLevel(c.Level))
	case KelvinHigh:
		return fmt.Sprintf("temperature %d K is too large (max: %d K)", c.Kelvin, MaxKelvin)
	case KelvinLow:
		return fmt.Sprintf("temperature %d K is too small (min: %d K)", c.Kelvin, MinKelvin)
	case RGBStringShort:
		return fmt.Sprintf("RGB string %s is too short (%d chars; expected %d)", c.Text, len(c.Text), e.expectedLen())
	default:
		return fmt.Sprintf("RGB string %s is too long (%d chars; expected %d)", c.Text, len(c.Text), e.expectedLen())
	}
}

func (e *ColorValidationError) expectedLen() int {
	if e.HasHash {
		return 7
	}
	return 6
}

const (
	MaxHue    = 360
	MinKelvin = 1500
	MaxKelvin = 9000
)

// Validate checks the color against the ranges the API accepts.  Named
// colors, RGB triples and custom strings always pass.
func (c Color) Validate() error {
	fail := func(kind ColorValidationErrorKind) error {
		return &ColorValidationError{Kind: kind, Color: c}
	}

	switch c.Kind {
	case ColorHue:
		if c.Hue > MaxHue {
			return fail(HueTooLarge)
		}
	case ColorSaturation:
		// NaN fails the lower bound
		if c.Level > 1 {
			return fail(SaturationHigh)
		} else if !(c.Level >= 0) {
			return fail(SaturationLow)
		}
	case ColorBrightness:
		if c.Level > 1 {
			return fail(BrightnessHigh)
		} else if !(c.Level >= 0) {
			return fail(BrightnessLow)
		}
	case ColorKelvin:
		if c.Kelvin < MinKelvin {
			return fail(KelvinLow)
		} else if c.Kelvin > MaxKelvin {
			return fail(KelvinHigh)
		}
	case ColorRGBString:
		hash := strings.HasPrefix(c.Text, "#")
		want := 6
		if hash {
			want = 7
		}

		if len(c.Text) > want {
			return &ColorValidationError{Kind: RGBStringLong, Color: c, HasHash: hash}
		} else if len(c.Text) < want {
			return &ColorValidationError{Kind: RGBStringShort, Color: c, HasHash: hash}
		}
	}

	return nil
}
