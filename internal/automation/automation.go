// Package automation drives parameters from Lua scripts.
//
// A script defines a global function automate(block) that is called once
// before every audio block. Inside it the script may call:
//
//	set(id, value)  -- change a parameter, value in host units
//	log(message)    -- write an info log line
//
// The globals SAMPLE_RATE and BLOCK_SIZE describe the stream. Scripts run on
// the control side of the processor and never touch audio buffers.
package automation

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	lua "github.com/yuin/gopher-lua"

	"github.com/cwbudde/algo-drive/dsp/core"
	"github.com/cwbudde/algo-drive/dsp/param"
)

const entryPoint = "automate"

// ErrNoEntryPoint is returned when a script does not define automate(block).
var ErrNoEntryPoint = errors.New("automation script does not define automate(block)")

// Sink receives parameter changes issued by a script.
type Sink interface {
	ParameterChanged(id param.ID, value float64)
}

// SinkFunc adapts a function, such as (*param.Store).OnParameterChanged, to Sink.
type SinkFunc func(id param.ID, value float64)

// ParameterChanged calls f.
func (f SinkFunc) ParameterChanged(id param.ID, value float64) { f(id, value) }

// Script is a loaded automation script. It is not safe for concurrent use.
type Script struct {
	name   string
	state  *lua.LState
	fn     *lua.LFunction
	logger *logrus.Logger
	defs   param.Definitions

	sink Sink
	sets int
}

// Load compiles src and checks that it defines automate(block). A nil logger
// selects the standard logger.
func Load(name, src string, logger *logrus.Logger) (*Script, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	s := &Script{
		name:   name,
		logger: logger,
		defs:   param.Declare(),
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	if err := openLibs(L); err != nil {
		L.Close()
		return nil, err
	}

	L.SetGlobal("set", L.NewFunction(s.luaSet))
	L.SetGlobal("log", L.NewFunction(s.luaLog))
	s.state = L
	s.SetTiming(core.DefaultProcessorConfig())

	if err := L.DoString(src); err != nil {
		L.Close()

		logger.WithFields(logrus.Fields{
			"function": "automation.Load",
			"script":   name,
			"error":    err.Error(),
		}).Error("Automation script failed to load")

		return nil, fmt.Errorf("load automation script %s: %w", name, err)
	}

	fn, ok := L.GetGlobal(entryPoint).(*lua.LFunction)
	if !ok {
		L.Close()
		return nil, fmt.Errorf("%w: %s", ErrNoEntryPoint, name)
	}

	s.fn = fn

	logger.WithFields(logrus.Fields{
		"function": "automation.Load",
		"script":   name,
	}).Debug("Automation script loaded")

	return s, nil
}

// LoadFile reads and loads the script at path.
func LoadFile(path string, logger *logrus.Logger) (*Script, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read automation script: %w", err)
	}

	return Load(path, string(src), logger)
}

// SetTiming publishes the stream configuration to the script.
func (s *Script) SetTiming(cfg core.ProcessorConfig) {
	s.state.SetGlobal("SAMPLE_RATE", lua.LNumber(cfg.SampleRate))
	s.state.SetGlobal("BLOCK_SIZE", lua.LNumber(cfg.BlockSize))
}

// Step runs automate(block), forwarding every set call to sink.
func (s *Script) Step(block int, sink Sink) error {
	s.sink = sink
	defer func() { s.sink = nil }()

	err := s.state.CallByParam(lua.P{Fn: s.fn, NRet: 0, Protect: true}, lua.LNumber(block))
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"function": "Script.Step",
			"script":   s.name,
			"block":    block,
			"error":    err.Error(),
		}).Warn("Automation step failed")

		return fmt.Errorf("automation %s block %d: %w", s.name, block, err)
	}

	return nil
}

// Sets returns the number of parameter changes issued so far.
func (s *Script) Sets() int { return s.sets }

// Close releases the Lua state.
func (s *Script) Close() {
	if s.state != nil {
		s.state.Close()
		s.state = nil
	}
}

func (s *Script) luaSet(L *lua.LState) int {
	id := param.ID(L.CheckString(1))
	value := float64(L.CheckNumber(2))

	if _, ok := s.defs.Lookup(id); !ok {
		L.ArgError(1, fmt.Sprintf("unknown parameter %q", id))
		return 0
	}

	if s.sink != nil {
		s.sink.ParameterChanged(id, value)
		s.sets++
	}

	return 0
}

func (s *Script) luaLog(L *lua.LState) int {
	s.logger.WithFields(logrus.Fields{
		"function": "automation.log",
		"script":   s.name,
	}).Info(L.CheckString(1))

	return 0
}

func openLibs(L *lua.LState) error {
	libs := []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	}

	for _, lib := range libs {
		err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.open), NRet: 0, Protect: true}, lua.LString(lib.name))
		if err != nil {
			return fmt.Errorf("open lua library %s: %w", lib.name, err)
		}
	}

	return nil
}
