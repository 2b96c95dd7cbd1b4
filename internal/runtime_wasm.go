//go:build wasm

package internal

// wasm executes every goroutine on one thread, a single runtime serves them all
var wasmRuntime = NewRuntime()

func GetRuntime() *Runtime {
	return wasmRuntime
}

func ReleaseRuntime() {}
