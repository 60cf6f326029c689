package record

import "github.com/gostudent/sqlitereader/internal/pager"

// Record is a fully decoded row payload: one Value per column, in
// declaration order.
type Record struct {
	SerialTypes []uint64
	Values      []Value
}

// Parse splits payload into its header of serial types and body of
// values, per the record format: varint header_size, N varint serial
// types, N payload bodies whose offsets are prefix sums of their lengths.
func Parse(payload []byte) (*Record, error) {
	headerSize, n := pager.ReadVarint(payload, 0)
	if n == 0 {
		return nil, pager.NewDatabaseError("parse_record", pager.ErrInvalidVarint, map[string]interface{}{
			"reason": "header size varint",
		})
	}
	if int(headerSize) > len(payload) {
		return nil, pager.NewDatabaseError("parse_record", pager.ErrInsufficientData, map[string]interface{}{
			"header_size": headerSize, "payload_len": len(payload),
		})
	}

	var serialTypes []uint64
	offset := n
	for offset < int(headerSize) {
		st, consumed := pager.ReadVarint(payload, offset)
		if consumed == 0 {
			return nil, pager.NewDatabaseError("parse_record", pager.ErrInvalidVarint, map[string]interface{}{
				"reason": "serial type varint",
			})
		}
		serialTypes = append(serialTypes, st)
		offset += consumed
	}

	bodyStart := int(headerSize)
	values := make([]Value, len(serialTypes))
	pos := bodyStart
	for i, st := range serialTypes {
		length := PayloadLen(st)
		if pos+length > len(payload) {
			return nil, pager.NewDatabaseError("parse_record", pager.ErrInsufficientData, map[string]interface{}{
				"column": i, "need": pos + length, "have": len(payload),
			})
		}
		values[i] = Decode(st, payload[pos:pos+length])
		pos += length
	}

	return &Record{SerialTypes: serialTypes, Values: values}, nil
}
