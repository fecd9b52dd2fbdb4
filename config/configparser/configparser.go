/*
 * CHERIoT simulator - Configuration file parser
 *
 * Copyright 2024, Richard Cornwell
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

// Package configparser reads the CHERIoT simulator's configuration surface
// (spec 6): a line-oriented directive file, one "<name> <value>" pair per
// line, '#' starting a comment. This keeps the teacher's bufio.Reader/
// line-number-tracked scanning shape but replaces its device-model grammar
// (addresses, attach options, dash/slash suffixes) with the flat key/value
// directives CHERIoT actually needs: memoryBase, memorySize,
// revocationMemoryBase, clintMMRBase, clintPeriod, cliPort, waitForCLI,
// instProfile, memProfile, plus an extensible RegisterFile hook for
// file-valued directives (debug log target, ELF image).
package configparser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Config is the configuration surface of spec 6.
type Config struct {
	MemoryBase            uint32
	MemorySize            uint32
	RevocationMemoryBase  uint32
	ClintMMRBase          uint32
	ClintPeriod           uint64
	CLIPort               int
	WaitForCLI            bool
	InstProfile           bool
	MemProfile            bool
}

// Default returns the configuration surface's defaults, used for any
// directive not present in the file.
func Default() Config {
	return Config{
		MemoryBase:           0x8000_0000,
		MemorySize:           0x0010_0000,
		RevocationMemoryBase: 0x8010_0000,
		ClintMMRBase:         0x9000_0000,
		ClintPeriod:          100,
		CLIPort:              0,
		WaitForCLI:           false,
	}
}

// fileHandler is registered against a directive name so that a directive
// value naming a file (e.g. "debugfile path/to/log") can be dispatched to
// the package that owns that file, without configparser importing it.
type fileHandler func(fileName string) error

var fileHandlers = map[string]fileHandler{}

// RegisterFile registers fn to run whenever directive name appears with a
// file-path argument. Callers (util/debug's DEBUGFILE directive) register
// from an init function, mirroring the teacher's RegisterModel hook.
func RegisterFile(name string, fn func(fileName string) error) {
	fileHandlers[strings.ToUpper(name)] = fn
}

var lineNumber int

type directiveLine struct {
	line string
	pos  int
}

// LoadConfigFile parses name into cfg, applying directives over cfg's
// existing values (so callers can seed cfg with Default() first).
func LoadConfigFile(name string, cfg *Config) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()

	lineNumber = 0
	reader := bufio.NewReader(file)
	for {
		line := directiveLine{}
		var readErr error
		line.line, readErr = reader.ReadString('\n')
		lineNumber++
		if len(line.line) == 0 && readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return readErr
		}
		if err := line.apply(cfg); err != nil {
			return err
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return readErr
		}
	}
	return nil
}

func (line *directiveLine) apply(cfg *Config) error {
	name := line.getWord()
	if name == "" {
		return nil
	}
	line.skipSpace()
	value := line.rest()

	switch strings.ToUpper(name) {
	case "MEMORYBASE":
		return setUint32(&cfg.MemoryBase, name, value)
	case "MEMORYSIZE":
		return setUint32(&cfg.MemorySize, name, value)
	case "REVOCATIONMEMORYBASE":
		return setUint32(&cfg.RevocationMemoryBase, name, value)
	case "CLINTMMRBASE":
		return setUint32(&cfg.ClintMMRBase, name, value)
	case "CLINTPERIOD":
		v, err := parseNumber(value)
		if err != nil {
			return directiveErr(name, value)
		}
		cfg.ClintPeriod = v
		return nil
	case "CLIPORT":
		v, err := parseNumber(value)
		if err != nil {
			return directiveErr(name, value)
		}
		cfg.CLIPort = int(v)
		return nil
	case "WAITFORCLI":
		cfg.WaitForCLI = parseBool(value)
		return nil
	case "INSTPROFILE":
		cfg.InstProfile = parseBool(value)
		return nil
	case "MEMPROFILE":
		cfg.MemProfile = parseBool(value)
		return nil
	default:
		if fn, ok := fileHandlers[strings.ToUpper(name)]; ok {
			if value == "" {
				return fmt.Errorf("directive %s requires a file name, line %d", name, lineNumber)
			}
			return fn(value)
		}
		return fmt.Errorf("unknown configuration directive %q, line %d", name, lineNumber)
	}
}

func directiveErr(name, value string) error {
	return fmt.Errorf("directive %s: invalid numeric value %q, line %d", name, value, lineNumber)
}

func setUint32(field *uint32, name, value string) error {
	v, err := parseNumber(value)
	if err != nil {
		return directiveErr(name, value)
	}
	*field = uint32(v)
	return nil
}

// parseNumber accepts decimal, 0x-hex, and 0-octal literals (spec 6).
func parseNumber(s string) (uint64, error) {
	return strconv.ParseUint(s, 0, 64)
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func (line *directiveLine) skipSpace() {
	for line.pos < len(line.line) && (line.line[line.pos] == ' ' || line.line[line.pos] == '\t') {
		line.pos++
	}
}

func (line *directiveLine) isEOL() bool {
	if line.pos >= len(line.line) {
		return true
	}
	return line.line[line.pos] == '#' || line.line[line.pos] == '\n'
}

func (line *directiveLine) getWord() string {
	line.skipSpace()
	if line.isEOL() {
		return ""
	}
	start := line.pos
	for line.pos < len(line.line) && line.line[line.pos] != ' ' && line.line[line.pos] != '\t' &&
		line.line[line.pos] != '\n' && line.line[line.pos] != '#' {
		line.pos++
	}
	return line.line[start:line.pos]
}

// rest returns the remainder of the line up to a comment or newline, with
// surrounding whitespace trimmed.
func (line *directiveLine) rest() string {
	if line.isEOL() {
		return ""
	}
	start := line.pos
	end := len(line.line)
	if idx := strings.IndexByte(line.line[start:], '#'); idx >= 0 {
		end = start + idx
	}
	return strings.TrimSpace(line.line[start:end])
}
