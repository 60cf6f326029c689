package record

import "testing"

func TestParseRecordTwoColumns(t *testing.T) {
	// header_size=3, serial types [1 (int8), 17 (text len 2)], body: 0x05, "hi"
	payload := []byte{0x03, 0x01, 0x11, 0x05, 'h', 'i'}
	rec, err := Parse(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.Values) != 2 {
		t.Fatalf("got %d values, want 2", len(rec.Values))
	}
	if rec.Values[0].Kind != KindInt || rec.Values[0].Int != 5 {
		t.Errorf("column 0 = %+v, want Int(5)", rec.Values[0])
	}
	if rec.Values[1].Kind != KindText || rec.Values[1].String() != "hi" {
		t.Errorf("column 1 = %+v, want Text(hi)", rec.Values[1])
	}
}

func TestParseRecordWithNullColumn(t *testing.T) {
	// header_size=3, serial types [0 (null), 0 (null)], no body bytes
	payload := []byte{0x03, 0x00, 0x00}
	rec, err := Parse(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.Values) != 2 || rec.Values[0].Kind != KindNull || rec.Values[1].Kind != KindNull {
		t.Errorf("got %+v, want two NULL values", rec.Values)
	}
}

func TestParseRecordRejectsShortBuffer(t *testing.T) {
	payload := []byte{0x03, 0x01} // claims header size 3 but not enough bytes for the body
	if _, err := Parse(payload); err == nil {
		t.Fatal("expected error for truncated record")
	}
}
