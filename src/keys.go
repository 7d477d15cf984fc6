package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/term"
)

// Terminals report key presses only, so every note lasts keyNoteLength.
const keyNoteLength = 400 * time.Millisecond

// white and black keys of one octave, lowest first
const keyboardRow = "awsedftgyhujk"

type keyboard struct {
	octave  int
	program int
	held    map[int]time.Time
}

func newKeyboard() *keyboard {
	return &keyboard{
		octave: 4,
		held:   make(map[int]time.Time),
	}
}

// press maps one byte from the terminal to commands. quit is set for q and
// Ctrl-C.
func (k *keyboard) press(b byte, now time.Time) (commands [][]string, quit bool) {
	switch {
	case b == 'q' || b == 3:
		return nil, true
	case b == 'z':
		k.octave = max(k.octave-1, 0)
	case b == 'x':
		k.octave = min(k.octave+1, 9)
	case b >= '0' && b <= '9':
		// program family: 0..9 selects GM family * 8
		k.program = int(b-'0') * 8
	default:
		for i := 0; i < len(keyboardRow); i++ {
			if keyboardRow[i] != b {
				continue
			}
			key := (k.octave+1)*12 + i
			if key > 127 {
				return nil, false
			}
			if _, ok := k.held[key]; ok {
				commands = append(commands, []string{"note_off", "0", strconv.Itoa(key)})
			}
			k.held[key] = now.Add(keyNoteLength)
			commands = append(commands, []string{"note_on", "0", strconv.Itoa(key), "100", strconv.Itoa(k.program), "120"})
		}
	}
	return commands, false
}

// expire releases every note whose time is up.
func (k *keyboard) expire(now time.Time) (commands [][]string) {
	for key, until := range k.held {
		if now.After(until) {
			delete(k.held, key)
			commands = append(commands, []string{"note_off", "0", strconv.Itoa(key)})
		}
	}
	return commands
}

func playKeys(ctx context.Context, commandCh chan<- []string) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("keys: stdin is not a terminal")
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("keys: %w", err)
	}
	defer term.Restore(fd, oldState)
	if err := syscall.SetNonblock(fd, true); err != nil {
		return fmt.Errorf("keys: %w", err)
	}
	defer syscall.SetNonblock(fd, false)

	fmt.Print("keys: a-k play, z/x octave, 0-9 program, q quit\r\n")
	k := newKeyboard()
	send := func(commands [][]string) {
		for _, c := range commands {
			commandCh <- c
		}
	}
	buf := make([]byte, 1)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		now := time.Now()
		send(k.expire(now))
		n, err := syscall.Read(fd, buf)
		if n > 0 {
			commands, quit := k.press(buf[0], now)
			if quit {
				send(k.expire(now.Add(keyNoteLength * 2)))
				return nil
			}
			send(commands)
			continue
		}
		if err != nil && err != syscall.EAGAIN && err != syscall.EWOULDBLOCK {
			return err
		}
		time.Sleep(5 * time.Millisecond)
	}
}
