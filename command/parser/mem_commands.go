/*
 * cheriot - Debug shell memory/watchpoint command handlers.
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
	"strings"

	cmdpkg "github.com/cheriot-sim/cheriot/command/command"
	"github.com/cheriot-sim/cheriot/engine"
	"github.com/cheriot-sim/cheriot/util/hex"
)

const memDumpWidth = 16

// mem reads or writes memory: "mem <addr> <len>" dumps len bytes as hex plus
// an ASCII gutter and tag bits (spec 6 read_memory/read_tag_memory); "mem
// <addr> write <byte> [<byte>...]" deposits bytes (spec 6 write_memory).
func mem(line *cmdLine, eng *engine.Engine) (bool, error) {
	addr, err := parseAddr(line.getWord())
	if err != nil {
		return false, err
	}

	sub := line.getWord()
	if sub == "write" {
		var data []byte
		for {
			tok := line.getWord()
			if tok == "" {
				break
			}
			v, err := parseUint(tok)
			if err != nil {
				return false, err
			}
			data = append(data, byte(v))
		}
		if len(data) == 0 {
			return false, errors.New("mem write requires at least one byte")
		}
		return false, eng.WriteMemory(addr, data)
	}

	length := uint32(memDumpWidth)
	if sub != "" {
		v, err := parseUint(sub)
		if err != nil {
			return false, err
		}
		length = uint32(v)
	}
	if length == 0 {
		return false, errors.New("mem length must be nonzero")
	}

	data, err := eng.ReadMemory(addr, int(length))
	if err != nil {
		return false, err
	}
	tags := eng.ReadTagMemory(addr, length)

	dumpMemory(addr, data, tags)
	return false, nil
}

// dumpMemory prints data memDumpWidth bytes per row, each row annotated
// with its starting address, an ASCII gutter, and the capability tag bit
// of its first tagged granule.
func dumpMemory(base uint32, data []byte, tags []bool) {
	for off := 0; off < len(data); off += memDumpWidth {
		end := off + memDumpWidth
		if end > len(data) {
			end = len(data)
		}
		row := data[off:end]

		var hexCol strings.Builder
		hex.FormatBytes(&hexCol, true, row)

		tag := "-"
		// tags holds one entry per granule, starting at base's granule.
		for g := (int(base%8) + off) / 8; g <= (int(base%8)+end-1)/8 && g < len(tags); g++ {
			if tags[g] {
				tag = "T"
				break
			}
		}
		fmt.Printf("%08x: %-48s %s %s\n", base+uint32(off), hexCol.String(), hex.ASCIIGutter(row), tag)
	}
}

// watchCmd sets or clears a data watchpoint: "watch <addr> <len> <kind>" or
// "watch clear <addr>" (spec 6 set/clear data watchpoint).
func watchCmd(line *cmdLine, eng *engine.Engine) (bool, error) {
	first := line.getWord()
	if first == "clear" {
		addr, err := parseAddr(line.getWord())
		if err != nil {
			return false, err
		}
		eng.ClearDataWatchpoint(addr)
		return false, nil
	}
	addr, err := parseAddr(first)
	if err != nil {
		return false, err
	}
	length, err := line.getNumber()
	if err != nil {
		return false, errors.New("watch requires a length")
	}
	load, store, err := cmdpkg.ParseWatchKind(line.getWord())
	if err != nil {
		return false, err
	}
	var kind engine.WatchKind
	switch {
	case load && store:
		kind = engine.WatchLoadStore
	case load:
		kind = engine.WatchLoad
	case store:
		kind = engine.WatchStore
	}
	eng.SetDataWatchpoint(addr, uint32(length), kind)
	return false, nil
}

func watchComplete(line *cmdLine) []string {
	return matchPrefix(cmdpkg.WatchKindNames, line.getWord())
}
