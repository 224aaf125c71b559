package scripting

import (
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// MaxAgentsPerWave caps the count a script may request for one wave.
const MaxAgentsPerWave = 1000

// Engine wraps a single gopher-lua VM holding the wave hooks.
// Single-goroutine access only (simulation loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and runs the given script file.
func NewEngine(scriptPath string, log *zap.Logger) (*Engine, error) {
	e := newEngine(log)
	if err := e.vm.DoFile(scriptPath); err != nil {
		e.vm.Close()
		return nil, fmt.Errorf("load %s: %w", scriptPath, err)
	}
	e.log.Debug("loaded lua script", zap.String("file", scriptPath))
	return e, nil
}

// NewEngineFromString creates a Lua engine from inline source.
func NewEngineFromString(source string, log *zap.Logger) (*Engine, error) {
	e := newEngine(log)
	if err := e.vm.DoString(source); err != nil {
		e.vm.Close()
		return nil, fmt.Errorf("load inline script: %w", err)
	}
	return e, nil
}

func newEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	return &Engine{vm: vm, log: log.Named("Scripting")}
}

// AgentsForWave calls the Lua agents_for_wave function.
// Falls back to base when the function is missing, fails or returns a
// non-finite number. Results are clamped to [0, MaxAgentsPerWave].
func (e *Engine) AgentsForWave(wave, base int) int {
	fn := e.vm.GetGlobal("agents_for_wave")
	if fn == lua.LNil {
		e.log.Error("lua function agents_for_wave not found")
		return base
	}

	ctx := e.vm.NewTable()
	ctx.RawSetString("wave", lua.LNumber(wave))
	ctx.RawSetString("base", lua.LNumber(base))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, ctx); err != nil {
		e.log.Error("lua agents_for_wave error", zap.Int("wave", wave), zap.Error(err))
		return base
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	n, ok := result.(lua.LNumber)
	if !ok {
		e.log.Error("lua agents_for_wave returned non-number",
			zap.Int("wave", wave),
			zap.String("type", result.Type().String()))
		return base
	}

	f := float64(n)
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		e.log.Error("lua agents_for_wave returned non-finite number",
			zap.Int("wave", wave),
			zap.Float64("value", f))
		return base
	case f < 0:
		return 0
	case f > MaxAgentsPerWave:
		e.log.Warn("lua agents_for_wave result capped",
			zap.Int("wave", wave),
			zap.Float64("value", f),
			zap.Int("max", MaxAgentsPerWave))
		return MaxAgentsPerWave
	}
	return int(f)
}

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
}
