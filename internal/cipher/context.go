package cipher

import (
	"crypto/cipher"
	"crypto/subtle"
	"fmt"
)

// Context is an incremental encryption or decryption in progress. Update
// may buffer input; Final flushes whatever is left and must be called
// exactly once.
type Context interface {
	Update(p []byte) ([]byte, error)
	Final() ([]byte, error)
}

// streamContext wraps a keystream cipher; it never buffers.
type streamContext struct {
	s cipher.Stream
}

func (c *streamContext) Update(p []byte) ([]byte, error) {
	out := make([]byte, len(p))
	c.s.XORKeyStream(out, p)
	return out, nil
}

func (c *streamContext) Final() ([]byte, error) { return nil, nil }

// blockContext runs a block mode with PKCS#7 padding. When decrypting the
// last complete block is held back until Final so the padding can be
// checked and stripped.
type blockContext struct {
	mode    cipher.BlockMode
	decrypt bool
	buf     []byte
}

func (c *blockContext) Update(p []byte) ([]byte, error) {
	c.buf = append(c.buf, p...)
	bs := c.mode.BlockSize()
	n := len(c.buf) / bs * bs
	if c.decrypt && n == len(c.buf) {
		n -= bs
	}
	if n <= 0 {
		return nil, nil
	}
	out := make([]byte, n)
	c.mode.CryptBlocks(out, c.buf[:n])
	c.buf = append([]byte(nil), c.buf[n:]...)
	return out, nil
}

func (c *blockContext) Final() ([]byte, error) {
	bs := c.mode.BlockSize()
	defer func() { c.buf = nil }()
	if !c.decrypt {
		padLen := bs - len(c.buf)%bs
		block := append(c.buf, make([]byte, padLen)...)
		for i := len(block) - padLen; i < len(block); i++ {
			block[i] = byte(padLen)
		}
		out := make([]byte, len(block))
		c.mode.CryptBlocks(out, block)
		return out, nil
	}
	if len(c.buf) != bs {
		return nil, fmt.Errorf("%w: wrong final block length %d", ErrBadPadding, len(c.buf))
	}
	out := make([]byte, bs)
	c.mode.CryptBlocks(out, c.buf)
	padLen := int(out[bs-1])
	if padLen == 0 || padLen > bs {
		return nil, ErrBadPadding
	}
	want := make([]byte, padLen)
	for i := range want {
		want[i] = byte(padLen)
	}
	if subtle.ConstantTimeCompare(out[bs-padLen:], want) != 1 {
		return nil, ErrBadPadding
	}
	return out[:bs-padLen], nil
}

// ecb is the electronic codebook mode, which crypto/cipher leaves out.
type ecb struct {
	b       cipher.Block
	decrypt bool
}

func (e ecb) BlockSize() int { return e.b.BlockSize() }

func (e ecb) CryptBlocks(dst, src []byte) {
	bs := e.b.BlockSize()
	for i := 0; i+bs <= len(src); i += bs {
		if e.decrypt {
			e.b.Decrypt(dst[i:i+bs], src[i:i+bs])
		} else {
			e.b.Encrypt(dst[i:i+bs], src[i:i+bs])
		}
	}
}

var (
	_ Context          = (*streamContext)(nil)
	_ Context          = (*blockContext)(nil)
	_ cipher.BlockMode = ecb{}
)
