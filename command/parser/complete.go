/*
 * cheriot - Disassembly command handler.
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
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/cheriot-sim/cheriot/engine"
)

// disassemble prints a best-effort mnemonic for the instruction at addr
// (spec 6 get_disassembly). When stdout is an interactive terminal, a line
// longer than its width is truncated to fit rather than left unbounded.
func disassemble(line *cmdLine, eng *engine.Engine) (bool, error) {
	addr, err := parseAddr(line.getWord())
	if err != nil {
		return false, err
	}
	text, err := eng.GetDisassembly(addr)
	if err != nil {
		return false, err
	}
	fmt.Println(formatDisassembly(addr, text))
	return false, nil
}

// formatDisassembly truncates text to the terminal width (minus the
// address/colon prefix) when stdout is a tty, so a long decoded operand
// list does not wrap mid-column in an interactive shell. Piped output gets
// the full, untruncated line.
func formatDisassembly(addr uint32, text string) string {
	line := fmt.Sprintf("%#010x: %s", addr, text)
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 || len(line) <= width {
		return line
	}
	return line[:width-1] + "…"
}
