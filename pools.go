package fdict

import "sync"

var valueBytesPool = &sync.Pool{
	New: func() any {
		return make([]byte, 0, 4096)
	},
}

func acquireValueBytes() []byte {
	return valueBytesPool.Get().([]byte)[:0]
}

func releaseValueBytes(b []byte) {
	if cap(b) > 1024*1024 {
		return // don't pin huge buffers
	}
	valueBytesPool.Put(b[:0])
}
