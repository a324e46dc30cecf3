// builtin_utils.go — the __Utils bridge library.
//
// Bridge entries surfaced:
//
//	__Utils#random   -> Number          // uniform in [0.0, 1.0)
//	__Utils#randInt  -> Number          // uniform integer in [0, max); reads `max`
//	__Utils#seed     -> Nil             // reseed the PRNG; reads `seed`
//	__Utils#uuid     -> String          // random RFC 4122 v4 UUID
//
// Conventions:
//   - Inputs are read from the calling scope by name (the library wrapper
//     binds them before the @mixin statement).
//   - Contract violations -> fail(...), surfaced as a bridge error.
package asp

import (
	"crypto/rand"
	"fmt"
	"math"
	mrand "math/rand"
	"sync"
	"time"
)

func registerUtilsBridge(ip *Interpreter) {
	// Instance-local RNG and mutex; closures capture these.
	var (
		rng   = mrand.New(mrand.NewSource(time.Now().UnixNano()))
		rngMu sync.Mutex
	)

	ip.RegisterNative("__Utils#random", func(_ *Interpreter, _ CallCtx) Value {
		rngMu.Lock()
		f := rng.Float64()
		rngMu.Unlock()
		return Num(f)
	})

	// randInt reads `max` from the calling scope; max must be a positive
	// integral number.
	ip.RegisterNative("__Utils#randInt", func(_ *Interpreter, ctx CallCtx) Value {
		v := ctx.MustArg("max")
		if v.Tag != VTNum {
			fail("randInt: max must be a number")
		}
		f := v.Data.(float64)
		if math.Trunc(f) != f || f <= 0 || f > float64(math.MaxInt32) {
			fail("randInt: max must be a positive integer")
		}
		rngMu.Lock()
		n := rng.Intn(int(f))
		rngMu.Unlock()
		return Num(float64(n))
	})

	// seed reads `seed` from the calling scope. A fixed seed gives a
	// reproducible sequence.
	ip.RegisterNative("__Utils#seed", func(_ *Interpreter, ctx CallCtx) Value {
		v := ctx.MustArg("seed")
		if v.Tag != VTNum {
			fail("seed: seed must be a number")
		}
		rngMu.Lock()
		rng.Seed(int64(v.Data.(float64)))
		rngMu.Unlock()
		return Nil
	})

	ip.RegisterNative("__Utils#uuid", func(_ *Interpreter, _ CallCtx) Value {
		var buf [16]byte
		if _, err := rand.Read(buf[:]); err != nil {
			fail("uuid: " + err.Error())
		}
		buf[6] = (buf[6] & 0x0f) | 0x40 // version 4
		buf[8] = (buf[8] & 0x3f) | 0x80 // RFC 4122 variant
		return Str(fmt.Sprintf("%x-%x-%x-%x-%x", buf[0:4], buf[4:6], buf[6:8], buf[8:10], buf[10:16]))
	})
}
