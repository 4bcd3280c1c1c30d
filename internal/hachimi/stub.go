package hachimi

import (
	"context"
	"errors"
	"sync"

	"github.com/d2verb/zokuzoku/internal/protocol"
)

// ErrBlockNotFound is returned by Stub for block ids past its story length.
var ErrBlockNotFound = errors.New("block not found")

// Stub is a Handler that records what it receives.
// With BlockCount set, StoryGotoBlock rejects ids at or past it.
type Stub struct {
	BlockCount uint32

	mu       sync.Mutex
	commands []protocol.Command
}

func (s *Stub) StoryGotoBlock(_ context.Context, cmd protocol.StoryGotoBlock) error {
	s.record(cmd)
	if s.BlockCount > 0 && cmd.BlockID >= s.BlockCount {
		return ErrBlockNotFound
	}
	return nil
}

func (s *Stub) ReloadLocalizedData(context.Context) error {
	s.record(protocol.ReloadLocalizedData{})
	return nil
}

func (s *Stub) record(cmd protocol.Command) {
	s.mu.Lock()
	s.commands = append(s.commands, cmd)
	s.mu.Unlock()
}

// Commands returns a copy of the commands received so far.
func (s *Stub) Commands() []protocol.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]protocol.Command, len(s.commands))
	copy(out, s.commands)
	return out
}
