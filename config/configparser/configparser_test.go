/*
 * CHERIoT simulator - Configuration file parser test set.
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

package configparser

import "testing"

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.MemoryBase != 0x8000_0000 {
		t.Errorf("default memory base = %#x", cfg.MemoryBase)
	}
	if cfg.ClintPeriod != 100 {
		t.Errorf("default clint period = %d", cfg.ClintPeriod)
	}
	if cfg.WaitForCLI {
		t.Errorf("default waitForCLI should be false")
	}
}

func TestApplyNumericDirectives(t *testing.T) {
	cfg := Default()
	lines := []string{
		"memoryBase 0x4000_0000\n",
		"memorySize 0x200000\n",
		"revocationMemoryBase 0x42000000\n",
		"clintMMRBase 0x90000000\n",
		"clintPeriod 250\n",
	}
	for _, l := range lines {
		line := directiveLine{line: l}
		if err := line.apply(&cfg); err != nil {
			t.Fatalf("apply(%q): %v", l, err)
		}
	}
	if cfg.MemoryBase != 0x4000_0000 {
		t.Errorf("memoryBase = %#x", cfg.MemoryBase)
	}
	if cfg.MemorySize != 0x200000 {
		t.Errorf("memorySize = %#x", cfg.MemorySize)
	}
	if cfg.RevocationMemoryBase != 0x42000000 {
		t.Errorf("revocationMemoryBase = %#x", cfg.RevocationMemoryBase)
	}
	if cfg.ClintMMRBase != 0x90000000 {
		t.Errorf("clintMMRBase = %#x", cfg.ClintMMRBase)
	}
	if cfg.ClintPeriod != 250 {
		t.Errorf("clintPeriod = %d", cfg.ClintPeriod)
	}
}

func TestApplyBoolDirectives(t *testing.T) {
	cfg := Default()
	for _, l := range []string{"waitForCLI true\n", "instProfile on\n", "memProfile yes\n"} {
		line := directiveLine{line: l}
		if err := line.apply(&cfg); err != nil {
			t.Fatalf("apply(%q): %v", l, err)
		}
	}
	if !cfg.WaitForCLI || !cfg.InstProfile || !cfg.MemProfile {
		t.Errorf("bool directives not applied: %+v", cfg)
	}
}

func TestApplyCommentAndBlank(t *testing.T) {
	cfg := Default()
	for _, l := range []string{"# a full comment line\n", "\n", "   \n"} {
		line := directiveLine{line: l}
		if err := line.apply(&cfg); err != nil {
			t.Fatalf("apply(%q): %v", l, err)
		}
	}
	if cfg != Default() {
		t.Errorf("comment/blank lines should not mutate config")
	}
}

func TestApplyTrailingComment(t *testing.T) {
	cfg := Default()
	line := directiveLine{line: "clintPeriod 64 # ticks per sweep step\n"}
	if err := line.apply(&cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.ClintPeriod != 64 {
		t.Errorf("clintPeriod = %d, trailing comment not stripped", cfg.ClintPeriod)
	}
}

func TestApplyUnknownDirective(t *testing.T) {
	cfg := Default()
	line := directiveLine{line: "bogusDirective 1\n"}
	if err := line.apply(&cfg); err == nil {
		t.Errorf("expected error for unknown directive")
	}
}

func TestApplyInvalidNumber(t *testing.T) {
	cfg := Default()
	line := directiveLine{line: "memoryBase not-a-number\n"}
	if err := line.apply(&cfg); err == nil {
		t.Errorf("expected error for invalid numeric literal")
	}
}

func TestRegisterFileDirective(t *testing.T) {
	var got string
	RegisterFile("TESTFILE", func(name string) error {
		got = name
		return nil
	})
	cfg := Default()
	line := directiveLine{line: "testfile /tmp/trace.log\n"}
	if err := line.apply(&cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got != "/tmp/trace.log" {
		t.Errorf("file handler got %q", got)
	}
}

func TestParseNumberBases(t *testing.T) {
	cases := map[string]uint64{
		"100":    100,
		"0x100":  0x100,
		"0144":   0144,
		"0x8000": 0x8000,
	}
	for in, want := range cases {
		got, err := parseNumber(in)
		if err != nil {
			t.Fatalf("parseNumber(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("parseNumber(%q) = %d, want %d", in, got, want)
		}
	}
}
