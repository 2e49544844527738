package l10n

import (
	"sync"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

func init() {
	message.SetString(language.Swedish, "just now", "just nu")
	message.SetString(language.Swedish, "%d minutes ago", "%d minuter sedan")
	message.SetString(language.Swedish, "%d hours ago", "%d timmar sedan")
	message.SetString(language.Swedish, "%d days ago", "%d dagar sedan")
}

// Formatter renders user-facing numbers and timestamps for one locale.
type Formatter struct {
	printer *message.Printer
}

func (f *Formatter) Number(n int) string {
	return f.printer.Sprint(number.Decimal(n))
}

// RelativeTime phrases how long ago t was, relative to now. Anything
// older than a week falls back to the plain date.
func (f *Formatter) RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return f.printer.Sprintf("just now")
	case d < time.Hour:
		return f.printer.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return f.printer.Sprintf("%d hours ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return f.printer.Sprintf("%d days ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}

// Cache is a read-through formatter cache keyed by locale. Formatters
// are immutable once built, so lookups only take the read lock.
type Cache struct {
	mu         sync.RWMutex
	formatters map[string]*Formatter
}

func NewCache() *Cache {
	return &Cache{
		formatters: make(map[string]*Formatter),
	}
}

func (c *Cache) Get(locale string) *Formatter {
	c.mu.RLock()
	formatter, ok := c.formatters[locale]
	c.mu.RUnlock()
	if ok {
		return formatter
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if formatter, ok := c.formatters[locale]; ok {
		return formatter
	}

	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}

	formatter = &Formatter{printer: message.NewPrinter(tag)}
	c.formatters[locale] = formatter

	return formatter
}
