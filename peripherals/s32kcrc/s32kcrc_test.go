package s32kcrc_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/suite"

	"github.com/auxoncorp/renode-infrastructure/peripherals"
	"github.com/auxoncorp/renode-infrastructure/peripherals/s32kcrc"
)

var _ peripherals.BytePeripheral = (*s32kcrc.CRC)(nil)
var _ peripherals.WordPeripheral = (*s32kcrc.CRC)(nil)
var _ peripherals.DoubleWordPeripheral = (*s32kcrc.CRC)(nil)
var _ peripherals.Resettable = (*s32kcrc.CRC)(nil)

const (
	dataOffset  = 0x0
	gpolyOffset = 0x4
	ctrlOffset  = 0x8
)

// ctrl assembles a CTRL register value. tot and totr are the two-bit
// transpose modes for input and output.
func ctrl(width16, was, xor bool, totr, tot uint32) (v uint32) {
	if width16 {
		v |= 1 << 24
	}
	if was {
		v |= 1 << 25
	}
	if xor {
		v |= 1 << 26
	}
	v |= totr << 28
	v |= tot << 30
	return v
}

type CRCSuite struct {
	suite.Suite

	crc  *s32kcrc.CRC
	hook *test.Hook
}

func (s *CRCSuite) SetupTest() {
	logger, hook := test.NewNullLogger()
	s.crc = s32kcrc.New(logger)
	s.hook = hook
}

func (s *CRCSuite) feed(data []byte) {
	for _, b := range data {
		s.crc.WriteByte(dataOffset, b)
	}
}

func (s *CRCSuite) read() uint32 {
	return s.crc.ReadDoubleWord(dataOffset)
}

// seed runs the write-as-seed sequence: raise WAS, write the seed through
// DATA, then commit by restoring CTRL with WAS clear.
func (s *CRCSuite) seed(ctrlValue, seed uint32) {
	s.crc.WriteDoubleWord(ctrlOffset, ctrlValue|1<<25)
	s.crc.WriteDoubleWord(dataOffset, seed)
	s.crc.WriteDoubleWord(ctrlOffset, ctrlValue)
}

func (s *CRCSuite) TestDefaults() {
	require := s.Require()
	require.Equal(uint32(0x00001021), s.crc.ReadDoubleWord(gpolyOffset))
	require.Equal(uint32(0), s.crc.ReadDoubleWord(ctrlOffset))
	require.Equal(uint32(0xFFFFFFFF), s.read())
}

func (s *CRCSuite) TestCRC32CheckValue() {
	require := s.Require()

	s.crc.WriteDoubleWord(gpolyOffset, 0x04C11DB7)
	s.seed(ctrl(false, false, true, 2, 2), 0xFFFFFFFF)
	s.feed([]byte("123456789"))

	require.Equal(uint32(0xCBF43926), s.read())
}

func (s *CRCSuite) TestCCITTFalseCheckValue() {
	require := s.Require()

	s.seed(ctrl(true, false, false, 0, 0), 0xFFFF)
	s.feed([]byte("123456789"))

	require.Equal(uint32(0x29B1), s.read())
}

// Transpose modes on both TOT and TOTR: bit-only transposition behaves as
// none, while both byte-involving modes transpose.
func (s *CRCSuite) TestTransposeModes() {
	require := s.Require()

	expected := map[uint32]uint32{
		0: 0x31C3, // none
		1: 0x31C3, // bits only
		2: 0x2189, // bits and bytes
		3: 0x2189, // bytes only
	}

	for mode, check := range expected {
		s.SetupTest()
		s.seed(ctrl(true, false, false, mode, mode), 0)
		s.feed([]byte("123456789"))
		require.Equal(check, s.read(), "transpose mode %d", mode)
	}
}

func (s *CRCSuite) TestReadIdempotent() {
	require := s.Require()

	s.crc.WriteDoubleWord(gpolyOffset, 0x04C11DB7)
	s.seed(ctrl(false, false, true, 2, 2), 0xFFFFFFFF)

	s.feed([]byte("1234"))
	first := s.read()
	require.Equal(first, s.read())

	s.feed([]byte("56789"))
	require.Equal(uint32(0xCBF43926), s.read())
	require.Equal(uint32(0xCBF43926), s.read())
}

func (s *CRCSuite) TestSeedRoundTrip() {
	require := s.Require()

	s.crc.WriteDoubleWord(ctrlOffset, ctrl(false, true, false, 0, 0))
	s.crc.WriteDoubleWord(dataOffset, 0xDEADBEEF)
	require.Equal(uint32(0), s.read())

	s.crc.WriteDoubleWord(ctrlOffset, 0)
	require.Equal(uint32(0xDEADBEEF), s.read())
}

// Seed writes accept every access width, zero-extending the written value.
func (s *CRCSuite) TestSeedNarrowWrites() {
	require := s.Require()

	s.crc.WriteDoubleWord(ctrlOffset, ctrl(false, true, false, 0, 0))
	s.crc.WriteByte(dataOffset, 0xAB)
	s.crc.WriteDoubleWord(ctrlOffset, 0)
	require.Equal(uint32(0x000000AB), s.read())

	s.crc.WriteDoubleWord(ctrlOffset, ctrl(false, true, false, 0, 0))
	s.crc.WriteWord(dataOffset, 0xBEEF)
	s.crc.WriteDoubleWord(ctrlOffset, 0)
	require.Equal(uint32(0x0000BEEF), s.read())
}

// Committing with no staged seed write restarts the checksum from the
// retained seed.
func (s *CRCSuite) TestBareCommitRestarts() {
	require := s.Require()

	s.feed([]byte("123"))
	accumulated := s.read()
	require.NotEqual(uint32(0xFFFFFFFF), accumulated)

	s.crc.WriteDoubleWord(ctrlOffset, ctrl(false, true, false, 0, 0))
	require.Equal(uint32(0), s.read())

	s.crc.WriteDoubleWord(ctrlOffset, 0)
	require.Equal(uint32(0xFFFFFFFF), s.read())
}

// Rewriting a configuration register, even with an identical value,
// restarts the checksum at the next access.
func (s *CRCSuite) TestConfigRewriteRestarts() {
	require := s.Require()

	s.feed([]byte("123"))
	require.NotEqual(uint32(0xFFFFFFFF), s.read())

	s.crc.WriteDoubleWord(gpolyOffset, 0x00001021)
	require.Equal(uint32(0xFFFFFFFF), s.read())
}

// GPOLY reads back raw and unmasked; the engine sees it masked to the
// selected width.
func (s *CRCSuite) TestWidthMasksPolynomialAndSeed() {
	require := s.Require()

	s.crc.WriteDoubleWord(gpolyOffset, 0xFFFF1021)
	s.seed(ctrl(true, false, false, 0, 0), 0xFFFFFFFF)

	require.Equal(uint32(0xFFFF1021), s.crc.ReadDoubleWord(gpolyOffset))
	require.Equal(uint32(0x0000FFFF), s.read())

	s.feed([]byte("123456789"))
	require.Equal(uint32(0x29B1), s.read())
}

// Switching width re-derives masked values from the raw registers, so
// returning to 32 bits restores the full seed.
func (s *CRCSuite) TestWidthToggleRederives() {
	require := s.Require()

	s.crc.WriteDoubleWord(ctrlOffset, ctrl(true, false, false, 0, 0))
	require.Equal(uint32(0x0000FFFF), s.read())

	s.crc.WriteDoubleWord(ctrlOffset, 0)
	require.Equal(uint32(0xFFFFFFFF), s.read())
}

// Wide data writes in accumulate mode are rejected whole: no decomposition,
// no reset, no effect on the running checksum.
func (s *CRCSuite) TestWideAccumulationRejected() {
	require := s.Require()

	s.crc.WriteDoubleWord(gpolyOffset, 0x04C11DB7)
	s.seed(ctrl(false, false, true, 2, 2), 0xFFFFFFFF)
	s.hook.Reset()

	s.feed([]byte("12345678"))
	s.crc.WriteWord(dataOffset, 0xABCD)
	s.crc.WriteDoubleWord(dataOffset, 0x12345678)
	s.feed([]byte("9"))

	require.Equal(uint32(0xCBF43926), s.read())

	require.Len(s.hook.Entries, 2)
	for _, entry := range s.hook.Entries {
		require.Equal(logrus.WarnLevel, entry.Level)
		require.Equal(s32kcrc.ErrUnsupportedAccessWidth, entry.Data[logrus.ErrorKey])
	}
}

// Accesses outside the register file log and fall through: reads as zero,
// writes discarded.
func (s *CRCSuite) TestUnhandledAccesses() {
	require := s.Require()

	s.feed([]byte("123"))
	before := s.read()
	s.hook.Reset()

	require.Equal(uint32(0), s.crc.ReadDoubleWord(0xC))
	s.crc.WriteDoubleWord(0xC, 0xFFFFFFFF)
	require.Equal(uint16(0), s.crc.ReadWord(gpolyOffset))
	require.Equal(byte(0), s.crc.ReadByte(ctrlOffset))
	s.crc.WriteByte(gpolyOffset, 0xFF)
	s.crc.WriteWord(ctrlOffset, 0xFFFF)

	require.Len(s.hook.Entries, 6)
	for _, entry := range s.hook.Entries {
		require.Equal(logrus.WarnLevel, entry.Level)
	}

	require.Equal(before, s.read())
	require.Equal(uint32(0x00001021), s.crc.ReadDoubleWord(gpolyOffset))
}

// DATA supports narrow reads of the checksum.
func (s *CRCSuite) TestNarrowDataReads() {
	require := s.Require()

	s.feed([]byte("123456789"))
	whole := s.read()

	require.Equal(uint16(whole), s.crc.ReadWord(dataOffset))
	require.Equal(byte(whole), s.crc.ReadByte(dataOffset))
}

func (s *CRCSuite) TestResetRestoresDefaults() {
	require := s.Require()

	s.crc.WriteDoubleWord(gpolyOffset, 0x04C11DB7)
	s.seed(ctrl(true, false, true, 2, 2), 0x1234)
	s.feed([]byte("12345"))

	s.crc.Reset()

	require.Equal(uint32(0x00001021), s.crc.ReadDoubleWord(gpolyOffset))
	require.Equal(uint32(0), s.crc.ReadDoubleWord(ctrlOffset))
	require.Equal(uint32(0xFFFFFFFF), s.read())
}

func (s *CRCSuite) TestSize() {
	s.Require().Equal(uint64(0x10), s.crc.Size())
}

func TestCRCSuite(t *testing.T) {
	suite.Run(t, new(CRCSuite))
}
