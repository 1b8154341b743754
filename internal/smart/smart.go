package smart

import (
	"regexp"
	"strconv"
	"strings"
)

// Attribute is one row of the SMART attribute table reported by smartctl.
type Attribute struct {
	ID        int `json:"id"`
	Value     int `json:"value"`
	Worst     int `json:"worst"`
	Threshold int `json:"threshold"`
	RawValue  int `json:"raw_value"`
}

// attrLine matches the fixed column layout of the smartctl -A attribute table:
// ID# ATTRIBUTE_NAME FLAG VALUE WORST THRESH TYPE UPDATED WHEN_FAILED RAW_VALUE
var attrLine = regexp.MustCompile(`^\s*(\d+)\s+([\w-]+)\s+0x[0-9A-Fa-f]+\s+(\d+)\s+(\d+)\s+(\d+)\s+[\w-]+\s+[\w-]+\s+-\s+(\d+)`)

// Parse extracts SMART attributes from raw smartctl output, keyed by attribute
// name. Banner and header lines are skipped. A line whose numeric fields do not
// parse is dropped rather than failing the whole parse. If the tool reports the
// same attribute name twice, the last occurrence wins.
func Parse(raw string) map[string]Attribute {
	attrs := make(map[string]Attribute)

	for _, line := range strings.Split(raw, "\n") {
		m := attrLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		value, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		worst, err := strconv.Atoi(m[4])
		if err != nil {
			continue
		}
		threshold, err := strconv.Atoi(m[5])
		if err != nil {
			continue
		}
		rawValue, err := strconv.Atoi(m[6])
		if err != nil {
			continue
		}

		attrs[m[2]] = Attribute{
			ID:        id,
			Value:     value,
			Worst:     worst,
			Threshold: threshold,
			RawValue:  rawValue,
		}
	}

	return attrs
}
