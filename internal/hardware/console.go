package hardware

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"smartcomfort/internal/models"
)

// ButtonHold is how long a "button" console command keeps the button pressed.
const ButtonHold = 200 * time.Millisecond

// validKeys are the keys of a 4x4 matrix keypad.
const validKeys = "0123456789ABCD*#"

// Console emulates keypad, token reader, push button and presence sensor from a
// line-oriented text stream:
//
//	1234            four keypad presses
//	card 43894F2E   present a token
//	button          press and release the button
//	presence on|off presence sensor state
//
// Unrecognised commands are passed to OnCommand when set.
type Console struct {
	mu sync.Mutex

	now       func() time.Time
	keys      []rune
	cards     []models.CredentialID
	buttonEnd time.Time
	presence  bool

	// OnCommand receives commands the console does not handle itself.
	OnCommand func(name, arg string) bool
}

// NewConsole returns a console using now as its time source.
func NewConsole(now func() time.Time) *Console {
	if now == nil {
		now = time.Now
	}
	return &Console{now: now}
}

// Run reads r line by line until EOF or ctx is cancelled.
func (c *Console) Run(ctx context.Context, r io.Reader) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errc:
			return err
		case line := <-lines:
			c.Feed(line)
		}
	}
}

// Feed applies one input line. It reports whether the line was understood.
func (c *Console) Feed(line string) bool {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return false
	}
	name := strings.ToLower(fields[0])
	arg := ""
	if len(fields) > 1 {
		arg = strings.ToLower(fields[1])
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch name {
	case "card":
		id, err := models.ParseCredentialID(arg)
		if err != nil {
			return false
		}
		c.cards = append(c.cards, id)
		return true
	case "button":
		c.buttonEnd = c.now().Add(ButtonHold)
		return true
	case "presence":
		c.presence = arg == "on"
		return true
	}

	if keys, ok := parseKeys(fields[0]); ok && len(fields) == 1 {
		c.keys = append(c.keys, keys...)
		return true
	}
	if c.OnCommand != nil {
		return c.OnCommand(name, arg)
	}
	return false
}

// PollKey pops the next pending keypad press.
func (c *Console) PollKey() (rune, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.keys) == 0 {
		return 0, false
	}
	k := c.keys[0]
	c.keys = c.keys[1:]
	return k, true
}

// PollCredentialReader pops the next presented token.
func (c *Console) PollCredentialReader() (models.CredentialID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.cards) == 0 {
		return models.CredentialID{}, false
	}
	id := c.cards[0]
	c.cards = c.cards[1:]
	return id, true
}

// ReadButton reports whether a button press is still being held.
func (c *Console) ReadButton() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now().Before(c.buttonEnd)
}

// ReadPresence reports the presence sensor state.
func (c *Console) ReadPresence() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.presence
}

func parseKeys(s string) ([]rune, bool) {
	keys := []rune(strings.ToUpper(s))
	for _, k := range keys {
		if !strings.ContainsRune(validKeys, k) {
			return nil, false
		}
	}
	return keys, true
}
