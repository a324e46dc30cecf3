// runtime.go — standard runtime assembly.
//
// The engine itself (interpreter.go and friends) knows nothing about
// random numbers, hashing or serialization; library scripts delegate those
// operations to host natives through the @mixin bridge. NewRuntime wires
// the standard host libraries into a fresh interpreter:
//
//	__Utils  — random, randInt, seed, uuid        (builtin_utils.go)
//	__Crypto — md5, sha256, sha512                (builtin_crypto.go)
//	__Object — serialize, deserialize             (builtin_object.go)
//
// Hosts that embed the engine can start from NewInterpreter instead and
// register their own bridge set.
package asp

// NewRuntime returns a fully-initialized interpreter with the standard
// bridge libraries registered.
func NewRuntime() *Interpreter {
	ip := NewInterpreter()
	registerUtilsBridge(ip)
	registerCryptoBridge(ip)
	registerObjectBridge(ip)
	return ip
}
