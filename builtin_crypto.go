// builtin_crypto.go — the __Crypto bridge library.
//
// Bridge entries surfaced:
//
//	__Crypto#md5     -> String   // hex digest of `data`
//	__Crypto#sha256  -> String   // hex digest of `data`
//	__Crypto#sha512  -> String   // hex digest of `data`
//
// Digests are returned hex-encoded; `data` must be bound to a String in the
// calling scope.
package asp

import (
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
)

func registerCryptoBridge(ip *Interpreter) {
	digest := func(name string, sum func([]byte) []byte) NativeImpl {
		return func(_ *Interpreter, ctx CallCtx) Value {
			v := ctx.MustArg("data")
			if v.Tag != VTStr {
				fail(name + ": data must be a string")
			}
			return Str(hex.EncodeToString(sum([]byte(v.Data.(string)))))
		}
	}

	ip.RegisterNative("__Crypto#md5", digest("md5", func(b []byte) []byte {
		s := md5.Sum(b)
		return s[:]
	}))
	ip.RegisterNative("__Crypto#sha256", digest("sha256", func(b []byte) []byte {
		s := sha256.Sum256(b)
		return s[:]
	}))
	ip.RegisterNative("__Crypto#sha512", digest("sha512", func(b []byte) []byte {
		s := sha512.Sum512(b)
		return s[:]
	}))
}
