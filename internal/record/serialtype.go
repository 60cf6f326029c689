package record

import "github.com/gostudent/sqlitereader/internal/pager"

// PayloadLen returns the number of payload bytes a serial type occupies,
// per the table in the file-format data model: fixed widths for 0..9,
// reserved codes 10/11 treated as opaque zero-length, and the even/odd
// split for blob/text at 12+.
func PayloadLen(serialType uint64) int {
	switch {
	case serialType == 0, serialType == 8, serialType == 9, serialType == 10, serialType == 11:
		return 0
	case serialType == 1:
		return 1
	case serialType == 2:
		return 2
	case serialType == 3:
		return 3
	case serialType == 4:
		return 4
	case serialType == 5:
		return 6
	case serialType == 6, serialType == 7:
		return 8
	case serialType >= 12 && serialType%2 == 0:
		return int((serialType - 12) / 2)
	case serialType >= 13 && serialType%2 == 1:
		return int((serialType - 13) / 2)
	default:
		return 0
	}
}

// Decode interprets body (exactly PayloadLen(serialType) bytes) as the
// Value its serial type describes.
func Decode(serialType uint64, body []byte) Value {
	switch serialType {
	case 0:
		return Null()
	case 1, 2, 3, 4, 5, 6:
		return Int64(pager.SignedFromBigEndian(body))
	case 7:
		return Float64(pager.F64BE(body))
	case 8:
		return Int64(0)
	case 9:
		return Int64(1)
	case 10, 11:
		return Null()
	default:
		if serialType%2 == 0 {
			return Blob(body)
		}
		return Text(body)
	}
}
