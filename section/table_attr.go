package section

// TableAttr is the per-table attribute word at the start of every table body.
// The low bits record which optional structures follow the fixed settings
// fields and how the value bytes are encoded.
type TableAttr int32

// HasRowMap returns true when the table body carries a row index map.
func (a TableAttr) HasRowMap() bool {
	return a&AttrRowMap != 0
}

// HasColumnMap returns true when the table body carries a column index map.
func (a TableAttr) HasColumnMap() bool {
	return a&AttrColumnMap != 0
}

// IsRawFloats returns true when the value bytes are uncompressed little-endian
// float32 words instead of a packed quantized bitstream.
func (a TableAttr) IsRawFloats() bool {
	return a&AttrRawFloats != 0
}

// SetRowMap sets or clears the row map presence bit.
func (a *TableAttr) SetRowMap(present bool) {
	if present {
		*a |= AttrRowMap
	} else {
		*a &^= AttrRowMap
	}
}

// SetColumnMap sets or clears the column map presence bit.
func (a *TableAttr) SetColumnMap(present bool) {
	if present {
		*a |= AttrColumnMap
	} else {
		*a &^= AttrColumnMap
	}
}

// SetRawFloats sets or clears the raw float32 value encoding bit.
func (a *TableAttr) SetRawFloats(raw bool) {
	if raw {
		*a |= AttrRawFloats
	} else {
		*a &^= AttrRawFloats
	}
}
