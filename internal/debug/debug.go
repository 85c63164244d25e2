// Package debug provides categorized debug logging on top of logrus.
// Categories are switched on with --debug or GLANCE_DEBUG.
package debug

import (
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Category represents a debug logging category
type Category string

const (
	APP     Category = "APP"     // Command wiring, startup
	FS      Category = "FS"      // Directory listing
	PREVIEW Category = "PREVIEW" // Preview resolution, thumbnails
	SEARCH  Category = "SEARCH"  // Wiki search requests and delivery
	OPS     Category = "OPS"     // Trash, move, open, rename
	STORE   Category = "STORE"   // History database
	UI      Category = "UI"      // Terminal and window UI events
	WATCH   Category = "WATCH"   // fsnotify events

	// Verbose, off unless named explicitly
	FS_ENTRY Category = "FS_ENTRY"
)

var (
	enabledCategories = map[Category]bool{
		APP:      true,
		FS:       true,
		PREVIEW:  true,
		SEARCH:   true,
		OPS:      true,
		STORE:    true,
		UI:       true,
		WATCH:    true,
		FS_ENTRY: false,
	}
	categoryMu sync.RWMutex

	logger = newLogger()
)

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000000",
	})
	return l
}

func init() {
	// GLANCE_DEBUG=FS,SEARCH or all or none
	if env := os.Getenv("GLANCE_DEBUG"); env != "" {
		Configure(env)
		logger.SetLevel(logrus.DebugLevel)
	}
}

// Configure parses a category list ("all", "none" or "FS,SEARCH").
func Configure(spec string) {
	categoryMu.Lock()
	defer categoryMu.Unlock()

	spec = strings.ToUpper(strings.TrimSpace(spec))
	switch spec {
	case "ALL":
		for cat := range enabledCategories {
			enabledCategories[cat] = true
		}
	case "NONE":
		for cat := range enabledCategories {
			enabledCategories[cat] = false
		}
	default:
		for cat := range enabledCategories {
			enabledCategories[cat] = false
		}
		for _, cat := range strings.Split(spec, ",") {
			cat = strings.TrimSpace(cat)
			if cat != "" {
				enabledCategories[Category(cat)] = true
			}
		}
	}
}

// Log logs a debug message for the specified category
func Log(cat Category, format string, args ...interface{}) {
	categoryMu.RLock()
	enabled := enabledCategories[cat]
	categoryMu.RUnlock()

	if !enabled {
		return
	}
	logger.WithField("category", string(cat)).Debugf(format, args...)
}

// Warn logs a warning regardless of category state.
func Warn(cat Category, format string, args ...interface{}) {
	logger.WithField("category", string(cat)).Warnf(format, args...)
}

// Error logs an error regardless of category state.
func Error(cat Category, err error, format string, args ...interface{}) {
	logger.WithField("category", string(cat)).WithError(err).Errorf(format, args...)
}

// SetVerbose switches the logger between debug and warning level.
func SetVerbose(on bool) {
	if on {
		logger.SetLevel(logrus.DebugLevel)
		return
	}
	logger.SetLevel(logrus.WarnLevel)
}

// SetLevel sets the logrus level by name ("debug", "info", "warn", "error").
func SetLevel(name string) error {
	lvl, err := logrus.ParseLevel(name)
	if err != nil {
		return err
	}
	logger.SetLevel(lvl)
	return nil
}

// SetOutput redirects log output.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// IsEnabled returns whether a category is enabled
func IsEnabled(cat Category) bool {
	categoryMu.RLock()
	defer categoryMu.RUnlock()
	return enabledCategories[cat]
}

// ListEnabled returns the enabled categories in name order.
func ListEnabled() []Category {
	categoryMu.RLock()
	defer categoryMu.RUnlock()

	var enabled []Category
	for cat, on := range enabledCategories {
		if on {
			enabled = append(enabled, cat)
		}
	}
	sort.Slice(enabled, func(i, j int) bool { return enabled[i] < enabled[j] })
	return enabled
}
