package mediafx

import "github.com/sirupsen/logrus"

// componentLogger returns entry tagged with the component name, falling back
// to the standard logrus logger when entry is nil.
func componentLogger(entry *logrus.Entry, component string) *logrus.Entry {
	if entry == nil {
		entry = logrus.NewEntry(logrus.StandardLogger())
	}
	return entry.WithField("component", component)
}
