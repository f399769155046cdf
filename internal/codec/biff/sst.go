package biff

// sst.go builds the shared string table.
//
// The SST body routinely exceeds one record, so it is split into an SST
// record followed by CONTINUE records. A string's 3-byte header is never
// split. When a string's characters cross a record boundary, the CONTINUE
// record starts with the option flag byte again, and UTF-16 text is only
// split between characters.

// sstTable interns strings in first-seen order.
type sstTable struct {
	index   map[string]int
	strings []xlString
	refs    int
}

func newSSTTable() *sstTable {
	return &sstTable{index: make(map[string]int)}
}

// add returns the table index of s, adding it on first use.
func (t *sstTable) add(s string) int {
	t.refs++
	if i, ok := t.index[s]; ok {
		return i
	}
	i := len(t.strings)
	t.index[s] = i
	t.strings = append(t.strings, encodeString(s))
	return i
}

// bodies returns the SST body followed by any CONTINUE bodies.
func (t *sstTable) bodies() [][]byte {
	w := &sstWriter{}
	w.cur = le.AppendUint32(w.cur, uint32(t.refs))
	w.cur = le.AppendUint32(w.cur, uint32(len(t.strings)))
	for _, s := range t.strings {
		w.add(s)
	}
	w.flush()
	return w.done
}

type sstWriter struct {
	done [][]byte
	cur  []byte
}

func (w *sstWriter) flush() {
	w.done = append(w.done, w.cur)
	w.cur = nil
}

func (w *sstWriter) room() int {
	return maxRecordData - len(w.cur)
}

func (w *sstWriter) add(s xlString) {
	unit := s.unit()

	// Header plus the first character must share a record.
	need := 3
	if s.chars > 0 {
		need += unit
	}
	if w.room() < need {
		w.flush()
	}

	w.cur = le.AppendUint16(w.cur, uint16(s.chars))
	w.cur = append(w.cur, s.flag)

	data := s.data
	for len(data) > 0 {
		n := w.room() / unit * unit
		if n == 0 {
			w.flush()
			w.cur = append(w.cur, s.flag)
			continue
		}
		n = min(n, len(data))
		w.cur = append(w.cur, data[:n]...)
		data = data[n:]
	}
}
