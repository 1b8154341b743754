package smart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOutput = `smartctl 7.2 2020-12-30 r5155 [x86_64-linux-5.10.0] (local build)
Copyright (C) 2002-20, Bruce Allen, Christian Franke, www.smartmontools.org

=== START OF READ SMART DATA SECTION ===
SMART Attributes Data Structure revision number: 16
Vendor Specific SMART Attributes with Thresholds:
ID# ATTRIBUTE_NAME          FLAG     VALUE WORST THRESH TYPE      UPDATED  WHEN_FAILED RAW_VALUE
  1 Raw_Read_Error_Rate     0x002f   200   200   051    Pre-fail  Always       -       0
  5 Reallocated_Sector_Ct   0x0033   199   199   140    Pre-fail  Always       -       3
  9 Power_On_Hours          0x0032   100   100   000    Old_age   Always       -       1234
194 Temperature_Celsius     0x0022   112   103   000    Old_age   Always       -       38
197 Current_Pending_Sector  0x0032   200   200   000    Old_age   Always       -       0
`

func TestParseSampleOutput(t *testing.T) {
	attrs := Parse(sampleOutput)
	require.Len(t, attrs, 5)

	poh, ok := attrs["Power_On_Hours"]
	require.True(t, ok)
	assert.Equal(t, 9, poh.ID)
	assert.Equal(t, 100, poh.Value)
	assert.Equal(t, 100, poh.Worst)
	assert.Equal(t, 0, poh.Threshold)
	assert.Equal(t, 1234, poh.RawValue)

	realloc, ok := attrs["Reallocated_Sector_Ct"]
	require.True(t, ok)
	assert.Equal(t, 3, realloc.RawValue)
	assert.Equal(t, 140, realloc.Threshold)
}

func TestParseIsIdempotent(t *testing.T) {
	first := Parse(sampleOutput)
	second := Parse(sampleOutput)
	assert.Equal(t, first, second)
}

func TestParseEmptyInput(t *testing.T) {
	attrs := Parse("")
	require.NotNil(t, attrs)
	assert.Empty(t, attrs)
}

func TestParseSkipsNonAttributeLines(t *testing.T) {
	attrs := Parse("smartctl 7.2 banner\nnot an attribute line\n=== SECTION ===\n")
	assert.Empty(t, attrs)
}

func TestParseDropsMalformedNumericFields(t *testing.T) {
	// Numeric column replaced with text; the row must not match.
	input := "  9 Power_On_Hours  0x0032  abc  100  000  Old_age  Always  -  1234\n" +
		"  5 Reallocated_Sector_Ct  0x0033  199  199  140  Pre-fail  Always  -  3\n"
	attrs := Parse(input)
	require.Len(t, attrs, 1)
	assert.Contains(t, attrs, "Reallocated_Sector_Ct")
}

func TestParseDropsOverflowingNumericFields(t *testing.T) {
	// All digits, so the row matches, but the raw value overflows int.
	input := "  9 Power_On_Hours  0x0032  100  100  000  Old_age  Always  -  99999999999999999999999\n"
	attrs := Parse(input)
	assert.Empty(t, attrs)
}

func TestParseDuplicateNameLastWins(t *testing.T) {
	input := "  9 Power_On_Hours  0x0032  100  100  000  Old_age  Always  -  1234\n" +
		"  9 Power_On_Hours  0x0032  99  99  000  Old_age  Always  -  5678\n"
	attrs := Parse(input)
	require.Len(t, attrs, 1)
	assert.Equal(t, 5678, attrs["Power_On_Hours"].RawValue)
	assert.Equal(t, 99, attrs["Power_On_Hours"].Value)
}
