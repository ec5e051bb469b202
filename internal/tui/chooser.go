package tui

// Chooser cycles through a list of options, used for report targets
type Chooser struct {
	Options []string
	Index   int
}

func NewChooser(options []string) *Chooser {
	return &Chooser{Options: options}
}

func (c *Chooser) Next() {
	if len(c.Options) == 0 {
		return
	}
	c.Index = (c.Index + 1) % len(c.Options)
}

func (c *Chooser) Prev() {
	if len(c.Options) == 0 {
		return
	}
	c.Index = (c.Index - 1 + len(c.Options)) % len(c.Options)
}

// Selected returns the current option, or "" when there is none
func (c *Chooser) Selected() string {
	if c == nil || len(c.Options) == 0 {
		return ""
	}
	return c.Options[c.Index]
}

// Keep moves the cursor to option if it is still present
func (c *Chooser) Keep(option string) {
	for i, o := range c.Options {
		if o == option {
			c.Index = i
			return
		}
	}
	c.Index = 0
}
