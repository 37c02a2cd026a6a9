package reader

import "bytes"

// delimited assembles start/end delimited frames from a byte stream that
// arrives in arbitrary pieces. Bytes before a start marker are dropped.
type delimited struct {
	start, end byte
	max        int // longest body accepted before resyncing
	buf        []byte
}

// feed appends p and returns the bodies of all frames completed by it.
func (d *delimited) feed(p []byte) [][]byte {
	d.buf = append(d.buf, p...)

	var frames [][]byte
	for {
		i := bytes.IndexByte(d.buf, d.start)
		if i < 0 {
			d.buf = d.buf[:0]
			return frames
		}
		d.buf = d.buf[i:]

		j := bytes.IndexByte(d.buf[1:], d.end)
		if j < 0 {
			if len(d.buf)-1 > d.max {
				// Runaway frame: restart at the next start marker.
				d.buf = d.buf[1:]
				continue
			}
			return frames
		}
		body := d.buf[1 : 1+j]
		if len(body) <= d.max {
			frames = append(frames, append([]byte(nil), body...))
		}
		d.buf = d.buf[1+j+1:]
	}
}

func (d *delimited) reset() {
	d.buf = d.buf[:0]
}

// fixed assembles fixed-length frames identified by a header, validated by
// a caller-supplied check.
type fixed struct {
	header []byte
	size   int
	check  func(frame []byte) ([]byte, bool)
	buf    []byte
}

// feed appends p and returns the payloads of all valid frames found.
func (f *fixed) feed(p []byte) [][]byte {
	f.buf = append(f.buf, p...)

	var out [][]byte
	for {
		i := bytes.Index(f.buf, f.header)
		if i < 0 {
			// Keep a possible partial header at the tail.
			keep := min(len(f.buf), len(f.header)-1)
			f.buf = append(f.buf[:0], f.buf[len(f.buf)-keep:]...)
			return out
		}
		f.buf = f.buf[i:]
		if len(f.buf) < f.size {
			return out
		}
		if payload, ok := f.check(f.buf[:f.size]); ok {
			out = append(out, payload)
			f.buf = f.buf[f.size:]
		} else {
			f.buf = f.buf[1:]
		}
	}
}
