package crc

// Common checksums by their catalog parameters.
var (
	CCITTFalse = Params{Polynomial: 0x1021, Width: Width16, Init: 0xFFFF}
	XModem     = Params{Polynomial: 0x1021, Width: Width16}
	Kermit     = Params{Polynomial: 0x1021, Width: Width16, ReflectInput: true, ReflectOutput: true}
	ARC        = Params{Polynomial: 0x8005, Width: Width16, ReflectInput: true, ReflectOutput: true}
	MCRF4XX    = Params{Polynomial: 0x1021, Width: Width16, Init: 0xFFFF, ReflectInput: true, ReflectOutput: true}

	IEEE  = Params{Polynomial: 0x04C11DB7, Width: Width32, Init: 0xFFFFFFFF, ReflectInput: true, ReflectOutput: true, XorOutput: 0xFFFFFFFF}
	BZip2 = Params{Polynomial: 0x04C11DB7, Width: Width32, Init: 0xFFFFFFFF, XorOutput: 0xFFFFFFFF}
	MPEG2 = Params{Polynomial: 0x04C11DB7, Width: Width32, Init: 0xFFFFFFFF}
	Posix = Params{Polynomial: 0x04C11DB7, Width: Width32, XorOutput: 0xFFFFFFFF}
)

// Presets maps catalog names to parameters for lookup by flag or field value.
var Presets = map[string]Params{
	"ccitt-false": CCITTFalse,
	"xmodem":      XModem,
	"kermit":      Kermit,
	"arc":         ARC,
	"mcrf4xx":     MCRF4XX,
	"crc32":       IEEE,
	"bzip2":       BZip2,
	"mpeg2":       MPEG2,
	"posix":       Posix,
}
