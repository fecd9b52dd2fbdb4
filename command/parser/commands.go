/*
 * cheriot - Debug shell control/register/breakpoint command handlers.
 *
 * Copyright 2026, CHERIoT Simulator Authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cheriot-sim/cheriot/engine"
)

// registerNames lists the names reg/WriteRegister accept, for "reg" tab
// completion. Kept local rather than exported from engine, so parser stays
// a pure consumer of the DebugInterface-shaped register read/write calls.
var registerNames = func() []string {
	names := []string{
		"pcc", "pc",
		"zero", "ra", "sp", "gp", "tp",
		"t0", "t1", "t2", "fp", "s0", "s1",
		"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7",
		"s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9", "s10", "s11",
		"t3", "t4", "t5", "t6",
	}
	for i := 0; i < 32; i++ {
		names = append(names, fmt.Sprintf("x%d", i), fmt.Sprintf("c%d", i))
	}
	return names
}()

var runStateNames = map[engine.RunState]string{
	engine.StateHalted:     "halted",
	engine.StateRunning:    "running",
	engine.StateSingleStep: "single-step",
}

var haltReasonNames = map[engine.HaltReason]string{
	engine.HaltNone:               "none",
	engine.HaltUserRequest:        "user-request",
	engine.HaltSoftwareBreakpoint: "software-breakpoint",
	engine.HaltHardwareBreakpoint: "hardware-breakpoint",
	engine.HaltDataWatchPoint:     "data-watchpoint",
	engine.HaltProgramDone:        "program-done",
	engine.HaltActionPoint:        "action-point",
	engine.HaltSemihost:           "semihost",
	engine.HaltSimulatorError:     "simulator-error",
}

func runStateName(s engine.RunState) string {
	if name, ok := runStateNames[s]; ok {
		return name
	}
	return "unknown"
}

func haltReasonName(r engine.HaltReason) string {
	if name, ok := haltReasonNames[r]; ok {
		return name
	}
	return fmt.Sprintf("custom(%d)", r)
}

func parseUint(tok string) (uint64, error) {
	v, err := strconv.ParseUint(tok, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", tok)
	}
	return v, nil
}

func parseAddr(tok string) (uint32, error) {
	v, err := parseUint(tok)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func matchPrefix(candidates []string, prefix string) []string {
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// cont starts free-run execution (spec 6 "run"/"continue").
func cont(_ *cmdLine, eng *engine.Engine) (bool, error) {
	eng.Run()
	return false, nil
}

// stop halts free-run execution and waits for the worker to exit
// (spec 6 "halt"/"stop").
func stop(_ *cmdLine, eng *engine.Engine) (bool, error) {
	eng.Halt()
	eng.Wait()
	return false, nil
}

// stepi single-steps n instructions, default 1 (spec 6 "stepi").
func stepi(line *cmdLine, eng *engine.Engine) (bool, error) {
	n := 1
	if tok := line.getWord(); tok != "" {
		v, err := parseUint(tok)
		if err != nil {
			return false, err
		}
		n = int(v)
	}
	eng.StepN(n)
	return false, nil
}

// waitCmd blocks until a free-run worker exits (spec 6 "wait").
func waitCmd(_ *cmdLine, eng *engine.Engine) (bool, error) {
	eng.Wait()
	return false, nil
}

// info reports run status and last halt reason (spec 6 get_run_status /
// get_last_halt_reason).
func info(_ *cmdLine, eng *engine.Engine) (bool, error) {
	fmt.Printf("status: %s\nlast halt: %s\n", runStateName(eng.RunStatus()), haltReasonName(eng.LastHaltReason()))
	return false, nil
}

// quit exits the shell (spec 6 "quit").
func quit(_ *cmdLine, _ *engine.Engine) (bool, error) {
	return true, nil
}

// reg reads or writes a register: "reg <name>" or "reg <name> <value>"
// (spec 6 read/write register).
func reg(line *cmdLine, eng *engine.Engine) (bool, error) {
	name := line.getWord()
	if name == "" {
		return false, errors.New("reg requires a register name")
	}
	valTok := line.getWord()
	if valTok == "" {
		v, err := eng.ReadRegister(name)
		if err != nil {
			return false, err
		}
		fmt.Printf("%s = %#x\n", name, v)
		return false, nil
	}
	v, err := parseUint(valTok)
	if err != nil {
		return false, err
	}
	return false, eng.WriteRegister(name, v)
}

func regComplete(line *cmdLine) []string {
	return matchPrefix(registerNames, line.getWord())
}

// breakCmd sets or clears software breakpoints: "break <addr>" or
// "break clear <addr|all>" (spec 6 set/clear(-all) sw breakpoint).
func breakCmd(line *cmdLine, eng *engine.Engine) (bool, error) {
	sub := line.getWord()
	switch sub {
	case "":
		return false, errors.New("break requires an address or 'clear'")
	case "clear":
		tok := line.getWord()
		if tok == "" || tok == "all" {
			eng.ClearAllSWBreakpoints()
			return false, nil
		}
		addr, err := parseAddr(tok)
		if err != nil {
			return false, err
		}
		return false, eng.ClearSWBreakpoint(addr)
	default:
		addr, err := parseAddr(sub)
		if err != nil {
			return false, err
		}
		if err := eng.SetSWBreakpoint(addr); err != nil {
			return false, err
		}
		fmt.Printf("breakpoint set at %#x\n", addr)
		return false, nil
	}
}

// action manages action points: "action set <addr> <lua-script>",
// "action clear|enable|disable <addr> <id>" (spec 6 action-point family).
func action(line *cmdLine, eng *engine.Engine) (bool, error) {
	sub := line.getWord()
	switch sub {
	case "set":
		addr, err := parseAddr(line.getWord())
		if err != nil {
			return false, err
		}
		script := line.rest()
		if script == "" {
			return false, errors.New("action set requires a lua script body")
		}
		id, err := eng.SetActionPointScript(addr, script)
		if err != nil {
			return false, err
		}
		fmt.Printf("action point %d set at %#x\n", id, addr)
		return false, nil
	case "clear", "enable", "disable":
		addr, err := parseAddr(line.getWord())
		if err != nil {
			return false, err
		}
		id, err := line.getNumber()
		if err != nil {
			return false, fmt.Errorf("action %s requires an id", sub)
		}
		switch sub {
		case "clear":
			eng.ClearActionPoint(addr, int(id))
		case "enable":
			eng.EnableAction(addr, int(id))
		case "disable":
			eng.DisableAction(addr, int(id))
		}
		return false, nil
	default:
		return false, errors.New("action requires set, clear, enable, or disable")
	}
}
