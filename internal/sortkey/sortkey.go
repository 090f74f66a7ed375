// Package sortkey extracts chronological ordering keys from log lines.
//
// The watched applications log through spdlog, whose default pattern prefixes
// every line with a bracketed timestamp such as
// "[2026-08-29 13:45:02.123] [info] message". Parse collapses that prefix
// into a single orderable integer so lines from different rotation files can
// be merged chronologically without parsing full time values.
package sortkey

// timestampLayout documents the prefix Parse expects:
//
//	[YYYY-MM-DD HH:MM:SS.mmm]
//
// positions of digits and separators are fixed.
const prefixLen = 25

// Parse returns an orderable key for line, built from the digits of the
// leading bracketed timestamp (YYYYMMDDHHMMSSmmm as a uint64). The second
// return value is false when the line does not carry a well-formed prefix.
func Parse(line string) (uint64, bool) {
	if len(line) < prefixLen || line[0] != '[' || line[prefixLen-1] != ']' {
		return 0, false
	}
	var key uint64
	for i := 1; i < prefixLen-1; i++ {
		c := line[i]
		switch i {
		case 5, 8: // date separators
			if c != '-' {
				return 0, false
			}
		case 11: // date/time separator
			if c != ' ' {
				return 0, false
			}
		case 14, 17: // time separators
			if c != ':' {
				return 0, false
			}
		case 20: // fractional separator
			if c != '.' {
				return 0, false
			}
		default:
			if c < '0' || c > '9' {
				return 0, false
			}
			key = key*10 + uint64(c-'0')
		}
	}
	return key, true
}
