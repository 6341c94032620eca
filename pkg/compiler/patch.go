package compiler

import (
	"fmt"
	"strconv"

	"zawa/pkg/tape"
)

// patch resolves jump placeholders in three sequential passes. The break
// pass relies on endloop targets already being concrete, so the order is
// fixed. Each pass walks opcodes forward; on an anchor it scans for the
// partner with a depth counter, fills exactly one placeholder and carries on
// from just past the anchor.
func (c *Compiler) patch() error {
	if err := c.patchIfs(); err != nil {
		return err
	}
	if err := c.patchLoops(); err != nil {
		return err
	}
	if err := c.patchBreaks(); err != nil {
		return err
	}
	return c.checkResolved()
}

func (c *Compiler) opAt(k int) tape.Opcode {
	op, _ := tape.Lookup(c.tape[c.starts[k]])
	return op
}

func (c *Compiler) resolve(pos int, placeholder string, target int) error {
	if c.tape[pos] != placeholder {
		return fmt.Errorf("%w: record %d holds %q, want %s", ErrUnresolvedPlaceholder, pos, c.tape[pos], placeholder)
	}
	c.tape[pos] = strconv.Itoa(target)
	return nil
}

// patchIfs points every if at the record after its endif. The opener is
// found by scanning backward; endifs passed on the way belong to nested
// blocks and raise the depth.
func (c *Compiler) patchIfs() error {
	for k := range c.starts {
		if c.opAt(k) != tape.OpJumpIfEnd {
			continue
		}
		end := c.starts[k]
		depth := 0
		matched := false
	scan:
		for j := k - 1; j >= 0; j-- {
			switch c.opAt(j) {
			case tape.OpJumpIfEnd:
				depth++
			case tape.OpJumpIf:
				if depth == 0 {
					if err := c.resolve(c.starts[j]+1, tape.PlaceholderIf, end+1); err != nil {
						return err
					}
					matched = true
					break scan
				}
				depth--
			}
		}
		if !matched {
			return fmt.Errorf("%w: endif at record %d has no matching if", ErrUnresolvedPlaceholder, end)
		}
	}
	return nil
}

// patchLoops points every endloop back at the record after its own
// forever_loop_start header.
func (c *Compiler) patchLoops() error {
	for k := range c.starts {
		if c.opAt(k) != tape.OpLoopStart {
			continue
		}
		start := c.starts[k]
		j, err := c.loopEnd(k)
		if err != nil {
			return fmt.Errorf("loop at record %d: %w", start, err)
		}
		if err := c.resolve(c.starts[j]+1, tape.PlaceholderLoop, start+1); err != nil {
			return err
		}
	}
	return nil
}

// patchBreaks turns each breakloop into a jump past the endloop of the
// innermost loop enclosing it.
func (c *Compiler) patchBreaks() error {
	for k := range c.starts {
		if c.opAt(k) != tape.OpBreakLoop {
			continue
		}
		brk := c.starts[k]
		c.tape[brk] = tape.OpJump.String()
		j, err := c.loopEnd(k)
		if err != nil {
			return fmt.Errorf("breakloop at record %d: %w", brk, err)
		}
		if err := c.resolve(brk+1, tape.PlaceholderBreak, c.starts[j]+1); err != nil {
			return err
		}
	}
	return nil
}

// loopEnd scans forward from opcode k for the endloop jump closing the loop
// k sits in. Nested loop headers raise the depth, each jump lowers it.
// Breaks not yet rewritten are still breakloop opcodes and do not count.
func (c *Compiler) loopEnd(k int) (int, error) {
	depth := 0
	for j := k + 1; j < len(c.starts); j++ {
		switch c.opAt(j) {
		case tape.OpLoopStart:
			depth++
		case tape.OpJump:
			if depth == 0 {
				return j, nil
			}
			depth--
		}
	}
	return 0, fmt.Errorf("%w: no matching endloop", ErrUnresolvedPlaceholder)
}

func (c *Compiler) checkResolved() error {
	for _, pos := range c.starts {
		switch op, _ := tape.Lookup(c.tape[pos]); op {
		case tape.OpJump, tape.OpJumpIf:
			if tape.IsPlaceholder(c.tape[pos+1]) {
				return fmt.Errorf("%w: %s at record %d", ErrUnresolvedPlaceholder, op, pos)
			}
		}
	}
	return nil
}
