package cipher

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"crypto/rc4"
	"sort"
	"strings"

	"golang.org/x/crypto/blowfish"
	"golang.org/x/crypto/cast5"
	"golang.org/x/crypto/chacha20"
)

// suite is one named algorithm the cipher kind can run.
type suite struct {
	keySize int
	ivSize  int
	context func(key, iv []byte, decrypt bool) (Context, error)
}

type blockAlgorithm struct {
	name      string
	keySize   int
	blockSize int
	block     func(key []byte) (cipher.Block, error)
}

var blockAlgorithms = []blockAlgorithm{
	{"AES-128", 16, aes.BlockSize, aes.NewCipher},
	{"AES-192", 24, aes.BlockSize, aes.NewCipher},
	{"AES-256", 32, aes.BlockSize, aes.NewCipher},
	{"DES", 8, des.BlockSize, des.NewCipher},
	{"DES-EDE3", 24, des.BlockSize, des.NewTripleDESCipher},
	{"BF", 16, blowfish.BlockSize, func(key []byte) (cipher.Block, error) { return blowfish.NewCipher(key) }},
	{"CAST5", 16, cast5.BlockSize, func(key []byte) (cipher.Block, error) { return cast5.NewCipher(key) }},
}

type blockMode struct {
	name string
	// padded modes buffer to whole blocks and apply PKCS#7 padding.
	padded bool
	mode   func(b cipher.Block, iv []byte, decrypt bool) any
}

var blockModes = []blockMode{
	{"CBC", true, func(b cipher.Block, iv []byte, decrypt bool) any {
		if decrypt {
			return cipher.NewCBCDecrypter(b, iv)
		}
		return cipher.NewCBCEncrypter(b, iv)
	}},
	{"ECB", true, func(b cipher.Block, _ []byte, decrypt bool) any {
		return ecb{b: b, decrypt: decrypt}
	}},
	{"CFB", false, func(b cipher.Block, iv []byte, decrypt bool) any {
		if decrypt {
			return cipher.NewCFBDecrypter(b, iv)
		}
		return cipher.NewCFBEncrypter(b, iv)
	}},
	{"OFB", false, func(b cipher.Block, iv []byte, _ bool) any {
		return cipher.NewOFB(b, iv)
	}},
	{"CTR", false, func(b cipher.Block, iv []byte, _ bool) any {
		return cipher.NewCTR(b, iv)
	}},
}

// suites is keyed by lower-case algorithm name.
var suites = buildSuites()

// shortNames are the bare aliases that select the CBC mode of an algorithm.
var shortNames = map[string]string{
	"AES128": "aes-128-cbc",
	"AES192": "aes-192-cbc",
	"AES256": "aes-256-cbc",
	"BF":     "bf-cbc",
	"CAST5":  "cast5-cbc",
	"DES":    "des-cbc",
	"DES3":   "des-ede3-cbc",
}

func buildSuites() map[string]suite {
	m := make(map[string]suite)
	for _, a := range blockAlgorithms {
		for _, md := range blockModes {
			m[strings.ToLower(a.name+"-"+md.name)] = blockSuite(a, md)
		}
	}
	m["rc4"] = suite{
		keySize: 16,
		context: func(key, _ []byte, _ bool) (Context, error) {
			c, err := rc4.NewCipher(key)
			if err != nil {
				return nil, err
			}
			return &streamContext{s: c}, nil
		},
	}
	m["chacha20"] = suite{
		keySize: chacha20.KeySize,
		ivSize:  chacha20.NonceSize,
		context: func(key, iv []byte, _ bool) (Context, error) {
			c, err := chacha20.NewUnauthenticatedCipher(key, iv)
			if err != nil {
				return nil, err
			}
			return &streamContext{s: c}, nil
		},
	}
	for short, full := range shortNames {
		m[strings.ToLower(short)] = m[full]
	}
	return m
}

func blockSuite(a blockAlgorithm, md blockMode) suite {
	return suite{
		keySize: a.keySize,
		ivSize:  a.blockSize,
		context: func(key, iv []byte, decrypt bool) (Context, error) {
			b, err := a.block(key)
			if err != nil {
				return nil, err
			}
			mode := md.mode(b, iv, decrypt)
			if md.padded {
				return &blockContext{mode: mode.(cipher.BlockMode), decrypt: decrypt}, nil
			}
			return &streamContext{s: mode.(cipher.Stream)}, nil
		},
	}
}

// Available enumerates the algorithm names this build supports, in the
// upper-case spelling used by OpenSSL's listing. Short aliases are included.
func Available() []string {
	names := make([]string, 0, len(blockAlgorithms)*len(blockModes)+len(shortNames)+2)
	for _, a := range blockAlgorithms {
		for _, md := range blockModes {
			names = append(names, a.name+"-"+md.name)
		}
	}
	for short := range shortNames {
		names = append(names, short)
	}
	names = append(names, "RC4", "CHACHA20")
	sort.Strings(names)
	return names
}
