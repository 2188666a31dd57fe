package mst

import "github.com/scieloorg/ioisis-go/internal/errs"

// control is the decoded MST control record: a fixed-length, mfn=0
// record at the start of the file holding the append cursor and the
// MSTXL shift that the rest of the file's modulus derives from.
type control struct {
	NextMFN    int32
	NextBlock  int32
	NextOffset int32
	MFType     byte
	MSTXL      byte
	RecCnt     int32
	MFCXX1     int32
	DelockCnt  int32
	EWLock     int32
}

const controlBodyLen = 4 + 4 + 4 + 4 + 2 + 4 + 4 + 4 + 4 // 34

func (o Options) encodeControl(c control) ([]byte, error) {
	if o.ControlLen < controlBodyLen {
		return nil, errs.NewConfigurationError("mst: control_len %d is too small for a %d-byte control record", o.ControlLen, controlBodyLen)
	}
	buf := make([]byte, o.ControlLen)
	for i := range buf {
		buf[i] = o.ControlFiller
	}
	off := 0
	o.ByteOrder.PutUint32(buf[off:], 0) // mfn=0 marker
	off += 4
	o.ByteOrder.PutUint32(buf[off:], uint32(c.NextMFN))
	off += 4
	o.ByteOrder.PutUint32(buf[off:], uint32(c.NextBlock))
	off += 4
	o.ByteOrder.PutUint32(buf[off:], uint32(c.NextOffset))
	off += 4
	if isLittleEndian(o.ByteOrder) {
		buf[off] = c.MSTXL
		buf[off+1] = c.MFType
	} else {
		buf[off] = c.MFType
		buf[off+1] = c.MSTXL
	}
	off += 2
	o.ByteOrder.PutUint32(buf[off:], uint32(c.RecCnt))
	off += 4
	o.ByteOrder.PutUint32(buf[off:], uint32(c.MFCXX1))
	off += 4
	o.ByteOrder.PutUint32(buf[off:], uint32(c.DelockCnt))
	off += 4
	o.ByteOrder.PutUint32(buf[off:], uint32(c.EWLock))
	return buf, nil
}

func (o Options) decodeControl(buf []byte) (control, error) {
	if len(buf) < controlBodyLen {
		return control{}, &errs.UnexpectedEOF{Context: "MST control record"}
	}
	var c control
	off := 4 // skip mfn=0 marker
	c.NextMFN = int32(o.ByteOrder.Uint32(buf[off:]))
	off += 4
	c.NextBlock = int32(o.ByteOrder.Uint32(buf[off:]))
	off += 4
	c.NextOffset = int32(o.ByteOrder.Uint32(buf[off:]))
	off += 4
	if isLittleEndian(o.ByteOrder) {
		c.MSTXL = buf[off]
		c.MFType = buf[off+1]
	} else {
		c.MFType = buf[off]
		c.MSTXL = buf[off+1]
	}
	off += 2
	c.RecCnt = int32(o.ByteOrder.Uint32(buf[off:]))
	off += 4
	c.MFCXX1 = int32(o.ByteOrder.Uint32(buf[off:]))
	off += 4
	c.DelockCnt = int32(o.ByteOrder.Uint32(buf[off:]))
	off += 4
	c.EWLock = int32(o.ByteOrder.Uint32(buf[off:]))
	return c, nil
}

// isLittleEndian distinguishes the two stdlib byte orders by probing a
// known value, since binary.ByteOrder exposes no endianness query.
func isLittleEndian(order interface {
	Uint16([]byte) uint16
}) bool {
	buf := []byte{0x01, 0x00}
	return order.Uint16(buf) == 1
}
