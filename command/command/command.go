/*
 * cheriot - Debug shell argument vocabulary.
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

// Package command holds the small vocabulary shared between the debug
// shell's parser and reader: the option/argument-kind enumeration the
// teacher's command/command package defined for attach/set/show device
// options, narrowed here to what a register/memory/breakpoint debug shell
// actually takes (spec 6) instead of device attach options.
package command

import (
	"fmt"
	"strings"
)

// WatchKindNames lists the accepted spellings for "watch <addr> <len> <kind>".
var WatchKindNames = []string{"load", "store", "rw", "loadstore", "load_store"}

// ParseWatchKind maps a watch-kind token to the load/store flags
// spec 6's set_data_watchpoint(addr, len, Load|Store|LoadStore) expects.
// Kept dependency-free of package engine so the reader's tab-completer can
// also use it.
func ParseWatchKind(s string) (load, store bool, err error) {
	switch strings.ToLower(s) {
	case "load":
		return true, false, nil
	case "store":
		return false, true, nil
	case "rw", "loadstore", "load_store":
		return true, true, nil
	default:
		return false, false, fmt.Errorf("command: unknown watch kind %q (want load, store, or rw)", s)
	}
}
