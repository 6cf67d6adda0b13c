package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/osse101/TokenArcade_Go/internal/domain"
)

// console serializes writes from the input loop and the reveal callbacks
type console struct {
	mu  sync.Mutex
	out io.Writer
}

func (c *console) Println(a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, a...)
}

func (c *console) Printf(format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, a...)
}

// Toast prints a reward notification
func (c *console) Toast(game domain.GameType, _ domain.Reward, text string) {
	c.Printf("  [%s] 🎉 %s\n", game, text)
}

// LedgerAccrued prints the vault accrual notice
func (c *console) LedgerAccrued(game domain.GameType, _ int64, text string) {
	c.Printf("  [%s] 💰 %s\n", game, text)
}

// tickVibrator stands in for the device motor by printing one mark per pulse
type tickVibrator struct {
	console *console
}

func (v tickVibrator) Supported() bool { return true }

func (v tickVibrator) Vibrate(pattern ...time.Duration) error {
	mark := "·"
	if len(pattern) > 1 {
		mark = "✦"
	}
	v.console.Printf("%s", mark)
	return nil
}
