package zhalog

import "testing"

func TestNoopDiscardsEverything(t *testing.T) {
	l := Noop()
	l.Debugf("x %d", 1)
	l.Infof("x")
	l.Warnf("x")
	l.Errorf("x")
}

func TestNewReturnsUsableLogger(t *testing.T) {
	l := New(true)
	l.Debugf("debug %s", "on")
	l.Infof("info")

	quiet := New(false)
	quiet.Debugf("debug suppressed")
	quiet.Warnf("warn %d", 1)
	quiet.Errorf("error")
}
