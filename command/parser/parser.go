/*
 * cheriot - Debug shell command parser.
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

// Package parser implements the debug command shell's verb table (spec 6,
// supplemented per SPEC_FULL 13 with the original's debug_command_shell.cc
// verb list: reg, mem, break, watch, action, stepi, continue, info,
// disassemble, quit). It keeps the teacher's cmdLine tokenizer and
// {name, min, process, complete} cmd table shape (command/parser/parser.go)
// but replaces the device-attach grammar with CHERIoT debug-shell verbs
// operating on an *engine.Engine.
package parser

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"github.com/cheriot-sim/cheriot/engine"
)

type cmd struct {
	Name     string
	Min      int
	Process  func(*cmdLine, *engine.Engine) (bool, error)
	Complete func(*cmdLine) []string
}

type cmdLine struct {
	line string
	pos  int
}

var cmdList = []cmd{
	{Name: "continue", Min: 1, Process: cont},
	{Name: "run", Min: 1, Process: cont},
	{Name: "stop", Min: 2, Process: stop},
	{Name: "halt", Min: 2, Process: stop},
	{Name: "stepi", Min: 2, Process: stepi},
	{Name: "wait", Min: 2, Process: waitCmd},
	{Name: "info", Min: 2, Process: info},
	{Name: "reg", Min: 2, Process: reg, Complete: regComplete},
	{Name: "break", Min: 3, Process: breakCmd},
	{Name: "watch", Min: 3, Process: watchCmd, Complete: watchComplete},
	{Name: "action", Min: 3, Process: action},
	{Name: "mem", Min: 2, Process: mem},
	{Name: "disassemble", Min: 4, Process: disassemble},
	{Name: "quit", Min: 4, Process: quit},
}

// ProcessCommand executes commandLine against eng. The returned bool is
// true iff the shell should exit (spec 6's "quit").
func ProcessCommand(commandLine string, eng *engine.Engine) (bool, error) {
	line := cmdLine{line: commandLine}
	name := line.getWord()
	if name == "" {
		return false, nil
	}

	match := matchList(name)
	if len(match) == 0 {
		return false, errors.New("command not found: " + name)
	}
	if len(match) > 1 {
		return false, errors.New("ambiguous command: " + name)
	}

	return match[0].Process(&line, eng)
}

// CompleteCmd implements tab completion for the line-editing reader.
func CompleteCmd(commandLine string) []string {
	line := cmdLine{line: commandLine}
	name := line.getWord()

	if !line.isEOL() && unicode.IsSpace(rune(line.line[line.pos])) {
		match := matchList(name)
		if len(match) != 1 || match[0].Complete == nil {
			return nil
		}
		return match[0].Complete(&line)
	}

	var matches []string
	for _, m := range cmdList {
		if strings.HasPrefix(m.Name, name) {
			matches = append(matches, m.Name)
		}
	}
	return matches
}

func matchCommand(m cmd, name string) bool {
	if len(name) == 0 || len(name) > len(m.Name) {
		return false
	}
	if !strings.HasPrefix(m.Name, name) {
		return false
	}
	return len(name) >= m.Min
}

func matchList(name string) []cmd {
	if name == "" {
		return nil
	}
	var match []cmd
	for _, m := range cmdList {
		if matchCommand(m, name) {
			match = append(match, m)
		}
	}
	return match
}

func (line *cmdLine) skipSpace() {
	for line.pos < len(line.line) && unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
}

func (line *cmdLine) isEOL() bool {
	if line.pos >= len(line.line) {
		return true
	}
	return line.line[line.pos] == '#'
}

// getWord returns the next whitespace-delimited token, lower-cased.
func (line *cmdLine) getWord() string {
	line.skipSpace()
	if line.isEOL() {
		return ""
	}
	start := line.pos
	for !line.isEOL() && !unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
	return strings.ToLower(line.line[start:line.pos])
}

// rest returns everything remaining on the line, trimmed, stopping at a
// '#' comment.
func (line *cmdLine) rest() string {
	line.skipSpace()
	if line.isEOL() {
		return ""
	}
	text := line.line[line.pos:]
	if idx := strings.IndexByte(text, '#'); idx >= 0 {
		text = text[:idx]
	}
	line.pos = len(line.line)
	return strings.TrimSpace(text)
}

// getNumber parses the next token as decimal/0x-hex/0-octal.
func (line *cmdLine) getNumber() (uint64, error) {
	tok := line.getWord()
	if tok == "" {
		return 0, errors.New("expected a number")
	}
	v, err := strconv.ParseUint(tok, 0, 64)
	if err != nil {
		return 0, errors.New("invalid number: " + tok)
	}
	return v, nil
}
